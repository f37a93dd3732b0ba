package interfaces

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/purple-water/accounting/internal/auth"
	financeErrors "github.com/purple-water/accounting/internal/finance/errors"
	"github.com/sirupsen/logrus"
)

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string, errors ...[]string) {
	payload := map[string]interface{}{
		"status":  "error",
		"message": message,
		"code":    status,
	}

	if len(errors) > 0 && len(errors[0]) > 0 {
		payload["errors"] = errors[0]
	}

	respondJSON(w, status, payload)
}

type responder struct {
	respondJSON  func(w http.ResponseWriter, status int, payload interface{})
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string)
	logger       logrus.FieldLogger
}

func newResponder(
	respondJSON func(w http.ResponseWriter, status int, payload interface{}),
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string),
	logger logrus.FieldLogger,
) responder {
	if respondJSON == nil || respondError == nil || logger == nil {
		panic("response functions and logger must not be nil")
	}
	return responder{respondJSON: respondJSON, respondError: respondError, logger: logger}
}

// userID resolves the acting user. A legacy user_id sent by the client is
// accepted only when it names the authenticated user.
func (h responder) userID(w http.ResponseWriter, r *http.Request, requested string) (string, bool) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return "", false
	}
	if requested != "" && requested != userID {
		h.respondError(w, http.StatusForbidden, "user_id does not match authenticated user")
		return "", false
	}
	return userID, true
}

// pathID parses the {id} path value. Ids that cannot exist are reported as
// not found.
func (h responder) pathID(w http.ResponseWriter, r *http.Request, entity string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		h.respondError(w, http.StatusNotFound, entity+" not found")
		return 0, false
	}
	return id, true
}

// serviceError maps service errors onto HTTP responses. Anything not
// recognised is logged and reported with the fallback message.
func (h responder) serviceError(w http.ResponseWriter, err error, fallback string, fields logrus.Fields) {
	var validationErrors *financeErrors.ValidationErrors
	switch {
	case errors.As(err, &validationErrors):
		message := validationErrors.Msg
		if message == "" {
			message = "Validation errors occurred"
		}
		h.respondError(w, http.StatusBadRequest, message, validationErrors.Messages())
	case financeErrors.IsValidationError(err):
		h.respondError(w, http.StatusBadRequest, err.Error())
	case financeErrors.IsNotFound(err):
		h.respondError(w, http.StatusNotFound, err.Error())
	case financeErrors.IsConflict(err):
		h.respondError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.WithFields(fields).WithError(err).Error(fallback)
		h.respondError(w, http.StatusInternalServerError, fallback)
	}
}
