package user

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

type Handler struct {
	userService Service
	userIDFrom  func(ctx context.Context) (string, bool)
	logger      logrus.FieldLogger
}

// NewHandler takes the lookup for the authenticated user id so that this
// package does not depend on the auth middleware.
func NewHandler(userService Service, userIDFrom func(ctx context.Context) (string, bool), logger logrus.FieldLogger) *Handler {
	return &Handler{
		userService: userService,
		userIDFrom:  userIDFrom,
		logger:      logger,
	}
}

type registerRequest struct {
	Email    string `json:"email"`
	Login    string `json:"login"`
	Password string `json:"password"`
}

type registered struct {
	UserID string `json:"user_id"`
}

type profile struct {
	UserID           string    `json:"user_id"`
	Email            string    `json:"email"`
	Login            string    `json:"login"`
	TwoFactorEnabled bool      `json:"2fa_enabled"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type success struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data"`
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]interface{}{
		"status":  "error",
		"message": message,
		"code":    status,
	})
}

// registrationStatus returns the status for an error the client caused, or
// zero for anything else.
func registrationStatus(err error) int {
	switch {
	case errors.Is(err, ErrEmailAlreadyExists), errors.Is(err, ErrLoginAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidEmail), errors.Is(err, ErrEmailLength),
		errors.Is(err, ErrLoginLength), errors.Is(err, ErrPasswordTooShort):
		return http.StatusBadRequest
	}
	return 0
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.userService.Register(r.Context(), req.Email, req.Login, req.Password)
	if err != nil {
		if status := registrationStatus(err); status != 0 {
			respondError(w, status, err.Error())
			return
		}
		h.logger.WithError(err).Error("could not register user")
		respondError(w, http.StatusInternalServerError, "Could not register user")
		return
	}

	respondJSON(w, http.StatusCreated, success{Status: "success", Data: registered{UserID: created.ID}})
}

func (h *Handler) HandleGetUserProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userIDFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	u, err := h.userService.GetUserByID(r.Context(), userID)
	switch {
	case errors.Is(err, ErrUserNotFound):
		respondError(w, http.StatusNotFound, "User not found")
		return
	case err != nil:
		h.logger.WithError(err).WithField("user_id", userID).Error("could not fetch user profile")
		respondError(w, http.StatusInternalServerError, "Could not fetch user data")
		return
	}

	respondJSON(w, http.StatusOK, success{Status: "success", Data: profile{
		UserID:           u.ID,
		Email:            u.Email,
		Login:            u.Login,
		TwoFactorEnabled: u.TwoFactorEnabled,
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	}})
}
