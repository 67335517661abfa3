package httpx

import (
	"errors"
	"net/http"

	"github.com/strata-books/strata-books/internal/shared"
)

// RespondError maps domain errors to HTTP responses using RFC7807.
// 402 for insufficient funds matches the contract exposed to the frontend.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, shared.ErrInsufficientFunds):
		Problem(w, http.StatusPaymentRequired, "Insufficient Funds", err.Error())
	case errors.Is(err, shared.ErrAlreadyVoid):
		Problem(w, http.StatusConflict, "Already Void", err.Error())
	case errors.Is(err, shared.ErrUsernameTaken):
		Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, shared.ErrInvalidCredentials):
		Problem(w, http.StatusUnauthorized, "Unauthorized", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
