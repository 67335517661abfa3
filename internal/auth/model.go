package auth

import "time"

// User is an application login. Users only gate API access; domain records
// reference them by username via created_by/updated_by.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}
