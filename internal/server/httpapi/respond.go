package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/meshmart/internal/common"
	"github.com/dmitrijs2005/meshmart/internal/logging"
	"github.com/dmitrijs2005/meshmart/internal/wire"
)

func writeJSON(w http.ResponseWriter, log logging.Logger, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error(r.Context(), "error encoding response", "error", err)
	}
}

func writeError(w http.ResponseWriter, log logging.Logger, r *http.Request, status int, msg string) {
	writeJSON(w, log, r, status, wire.ErrorResponse{Error: msg})
}

// statusFor maps service errors to HTTP statuses. The error text goes back
// to the client unless the error is unexpected.
func statusFor(err error) (int, bool) {
	switch {
	case errors.Is(err, common.ErrValidation):
		return http.StatusBadRequest, true
	case errors.Is(err, common.ErrInvalidLoginPassword),
		errors.Is(err, common.ErrUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		return http.StatusUnauthorized, true
	case errors.Is(err, common.ErrForbidden), errors.Is(err, common.ErrNotOrderOwner):
		return http.StatusForbidden, true
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound, true
	case errors.Is(err, common.ErrAlreadyExists),
		errors.Is(err, common.ErrConflict),
		errors.Is(err, common.ErrOrderNotCompleted):
		return http.StatusConflict, true
	}
	return http.StatusInternalServerError, false
}

func writeServiceError(w http.ResponseWriter, log logging.Logger, r *http.Request, err error) {
	status, known := statusFor(err)
	if !known {
		log.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		writeError(w, log, r, status, common.ErrInternal.Error())
		return
	}
	writeError(w, log, r, status, err.Error())
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", common.ErrValidation, err)
	}
	return nil
}
