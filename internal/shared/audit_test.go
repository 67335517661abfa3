package shared

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestOccurredAtDefaultsToNow(t *testing.T) {
	got := occurredAt(time.Time{})
	require.WithinDuration(t, time.Now(), got, time.Second)
}

func TestOccurredAtKeepsExplicitTime(t *testing.T) {
	at := time.Date(2026, time.March, 5, 9, 15, 0, 0, time.UTC)
	require.Equal(t, at, occurredAt(at))
}
