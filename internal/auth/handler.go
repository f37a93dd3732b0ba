package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/purple-water/accounting/internal/user"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	authService Service
	logger      logrus.FieldLogger
}

func NewHandler(authService Service, logger logrus.FieldLogger) *Handler {
	return &Handler{
		authService: authService,
		logger:      logger,
	}
}

type loginRequest struct {
	EmailOrLogin string `json:"email_or_login"`
	Password     string `json:"password"`
}

type verifyTwoFactorRequest struct {
	SessionToken string `json:"session_token"`
	Code         string `json:"code"`
}

type codeRequest struct {
	Code string `json:"code"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

type twoFactorChallenge struct {
	Message      string `json:"message"`
	Method       string `json:"2fa_auth_method"`
	SessionToken string `json:"session_token"`
}

type twoFactorRegistration struct {
	OTPURI string `json:"otp_uri"`
	Secret string `json:"secret"`
}

// errorResponses maps known service errors to what the client sees.
var errorResponses = []struct {
	err     error
	status  int
	message string
}{
	{ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},
	{ErrInvalidSessionToken, http.StatusUnauthorized, "Session token is invalid"},
	{ErrExpiredSessionToken, http.StatusUnauthorized, "Session token has expired"},
	{ErrInvalid2FACode, http.StatusUnauthorized, "Invalid 2FA code"},
	{ErrUser2FANotEnabled, http.StatusBadRequest, "Two-factor authentication is not enabled"},
	{ErrUser2FAAlreadyEnabled, http.StatusConflict, "Two-factor authentication is already enabled"},
	{ErrTwoFactorNotRegistered, http.StatusBadRequest, "Two-factor registration has not been started"},
	{user.ErrUserNotFound, http.StatusNotFound, "User not found"},
}

func (h *Handler) fail(w http.ResponseWriter, err error, fallback string, userID string) {
	for _, known := range errorResponses {
		if errors.Is(err, known.err) {
			respondError(w, known.status, known.message)
			return
		}
	}
	entry := h.logger.WithError(err)
	if userID != "" {
		entry = entry.WithField("user_id", userID)
	}
	entry.Error(fallback)
	respondError(w, http.StatusInternalServerError, fallback)
}

// decode reads the body into dst and reports a 400 when it is malformed or
// any of the required values is empty.
func decode(w http.ResponseWriter, r *http.Request, dst interface{}, required ...*string) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	for _, value := range required {
		if *value == "" {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return false
		}
	}
	return true
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decode(w, r, &req, &req.EmailOrLogin, &req.Password) {
		return
	}

	result, err := h.authService.Login(r.Context(), req.EmailOrLogin, req.Password)
	if err != nil {
		h.fail(w, err, "Could not log in", "")
		return
	}

	if result.SessionToken != "" {
		respondSuccess(w, http.StatusOK, "", twoFactorChallenge{
			Message:      "Two-factor authentication required",
			Method:       result.TwoFactorMethod,
			SessionToken: result.SessionToken,
		})
		return
	}
	respondSuccess(w, http.StatusOK, "", tokenResponse{AccessToken: result.AccessToken})
}

func (h *Handler) HandleVerifyTwoFactor(w http.ResponseWriter, r *http.Request) {
	var req verifyTwoFactorRequest
	if !decode(w, r, &req, &req.SessionToken, &req.Code) {
		return
	}

	accessToken, err := h.authService.VerifyTwoFactor(r.Context(), req.SessionToken, req.Code)
	if err != nil {
		h.fail(w, err, "Could not verify two-factor authentication", "")
		return
	}
	respondSuccess(w, http.StatusOK, "", tokenResponse{AccessToken: accessToken})
}

func (h *Handler) HandleRegisterTwoFactor(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	otpURI, secret, err := h.authService.RegisterTwoFactor(r.Context(), userID)
	if err != nil {
		h.fail(w, err, "Could not register two-factor authentication", userID)
		return
	}
	respondSuccess(w, http.StatusOK, "Scan the secret and confirm it with a code to enable two-factor authentication",
		twoFactorRegistration{OTPURI: otpURI, Secret: secret})
}

func (h *Handler) HandleVerifyTwoFactorRegistration(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var req codeRequest
	if !decode(w, r, &req, &req.Code) {
		return
	}

	if err := h.authService.VerifyTwoFactorRegistration(r.Context(), userID, req.Code); err != nil {
		h.fail(w, err, "Could not enable two-factor authentication", userID)
		return
	}
	respondSuccess(w, http.StatusOK, "Two-factor authentication enabled", nil)
}

func (h *Handler) HandleDisableTwoFactor(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var req codeRequest
	if !decode(w, r, &req, &req.Code) {
		return
	}

	if err := h.authService.DisableTwoFactor(r.Context(), userID, req.Code); err != nil {
		h.fail(w, err, "Could not disable two-factor authentication", userID)
		return
	}
	respondSuccess(w, http.StatusOK, "Two-factor authentication disabled", nil)
}
