// Package handlers exposes the account service over HTTP.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hongminglow/userhub/internal/account"
	"github.com/hongminglow/userhub/internal/http/respond"
	"github.com/hongminglow/userhub/internal/logging"
	"github.com/hongminglow/userhub/internal/middleware"
)

const (
	detailUsernameTaken      = "Username already registered"
	detailEmailTaken         = "Email already registered"
	detailAlreadyRegistered  = "User already registered"
	detailIncorrectLogin     = "Incorrect email or password"
	detailUserNotFound       = "User not found"
	detailInvalidPayload     = "invalid JSON payload"
	detailPayloadTooLarge    = "request body too large"
	detailInternalError      = "internal server error"
	detailInvalidPagination  = "skip and limit must be non-negative integers"
	detailInvalidUserID      = "user id must be an integer"
	detailMissingCurrentUser = "Could not validate credentials"
)

// maxBodyBytes caps request bodies read by decodeJSON.
const maxBodyBytes = 1 << 20

// decodeJSON reads at most maxBodyBytes of the request body into dst. On
// failure it writes the error response and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer body.Close()

	if err := json.NewDecoder(body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(w, http.StatusRequestEntityTooLarge, detailPayloadTooLarge)
			return false
		}
		respond.Error(w, http.StatusUnprocessableEntity, detailInvalidPayload)
		return false
	}
	return true
}

// writeAccountError maps account errors onto status codes. Unknown errors are
// logged and reported as a generic 500.
func writeAccountError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, account.ErrUsernameTaken):
		respond.Error(w, http.StatusBadRequest, detailUsernameTaken)
	case errors.Is(err, account.ErrEmailTaken):
		respond.Error(w, http.StatusBadRequest, detailEmailTaken)
	case errors.Is(err, account.ErrConflict):
		respond.Error(w, http.StatusBadRequest, detailAlreadyRegistered)
	case errors.Is(err, account.ErrInvalidCredentials):
		respond.Unauthorized(w, detailIncorrectLogin)
	case errors.Is(err, account.ErrUserNotFound):
		respond.Error(w, http.StatusNotFound, detailUserNotFound)
	case errors.Is(err, account.ErrInvalidPage):
		respond.Error(w, http.StatusUnprocessableEntity, detailInvalidPagination)
	default:
		logging.LogError(logger, "request failed", err,
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.RequestID(r.Context()),
		)
		respond.Error(w, http.StatusInternalServerError, detailInternalError)
	}
}

// validationFailed writes a 422 carrying the validation message.
func validationFailed(w http.ResponseWriter, err error) {
	respond.Error(w, http.StatusUnprocessableEntity, err.Error())
}
