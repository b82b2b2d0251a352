package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Tyrowin/oxidechat/internal/auth"
	"github.com/Tyrowin/oxidechat/internal/captcha"
)

var (
	errBadRequest         = errors.New("malformed request")
	errMissingBearer      = errors.New("missing bearer token")
	errMembershipDisabled = errors.New("conversation membership is not enabled")
)

// apiError is the body of every failed API response.
type apiError struct {
	Status  int    `json:"-"`
	Message string `json:"error"`
}

// toAPIError maps a backend error to the status and message a client sees.
// Anything unrecognised is logged and reported as an internal error.
func toAPIError(err error, log *slog.Logger) apiError {
	switch {
	case errors.Is(err, captcha.ErrMismatch), errors.Is(err, captcha.ErrNotFound):
		return apiError{http.StatusBadRequest, "Invalid captcha ID or answer"}
	case errors.Is(err, auth.ErrInvalidCredentials):
		return apiError{http.StatusUnauthorized, "Invalid username or password"}
	case errors.Is(err, auth.ErrUsernameTaken):
		return apiError{http.StatusConflict, "Username already taken"}
	case errors.Is(err, auth.ErrTokenExpired), errors.Is(err, auth.ErrRefreshTokenExpired):
		return apiError{http.StatusUnauthorized, "Token expired"}
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, errMissingBearer):
		return apiError{http.StatusUnauthorized, "Token is not valid"}
	case errors.Is(err, auth.ErrInvalidInput), errors.Is(err, errBadRequest):
		return apiError{http.StatusBadRequest, err.Error()}
	case errors.Is(err, errMembershipDisabled):
		return apiError{http.StatusNotFound, err.Error()}
	default:
		log.Warn("Internal error", "error", err)
		return apiError{http.StatusInternalServerError, "Internal error"}
	}
}

func writeJSON(w http.ResponseWriter, status int, body any, log *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Debug("Writing response failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	apiErr := toAPIError(err, s.log)
	writeJSON(w, apiErr.Status, apiErr, s.log)
}
