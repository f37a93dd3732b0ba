package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/purple-water/accounting/internal/user"
	"github.com/sirupsen/logrus"
)

var (
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrInternalError          = errors.New("internal Server Error")
	ErrUser2FANotEnabled      = errors.New("two factor auth is not enabled")
	ErrInvalid2FACode         = errors.New("2fa code is invalid")
	ErrUser2FAAlreadyEnabled  = errors.New("2fa auth already enabled")
	ErrTwoFactorNotRegistered = errors.New("two factor registration has not been started")
)

// LoginResult carries either an access token or, when the user has a second
// factor enabled, a session token to exchange at the 2FA verify endpoint.
type LoginResult struct {
	AccessToken     string
	SessionToken    string
	TwoFactorMethod string
}

type Service interface {
	Login(ctx context.Context, emailOrLogin, password string) (*LoginResult, error)
	VerifyTwoFactor(ctx context.Context, sessionToken, code string) (string, error)
	RegisterTwoFactor(ctx context.Context, userID string) (otpURI string, secret string, err error)
	VerifyTwoFactorRegistration(ctx context.Context, userID, code string) error
	DisableTwoFactor(ctx context.Context, userID, code string) error
	JWTAccessTokenMiddleware() func(http.Handler) http.Handler
	PurgeExpiredSessions() int
}

type service struct {
	repo           TwoFactorRepository
	userService    user.Service
	sessionManager SessionManagerInterface
	jwtManager     JWTManagerInterface
	authenticator  TwoFactorAuthenticator
	logger         logrus.FieldLogger
}

func NewAuthService(
	repo TwoFactorRepository,
	userService user.Service,
	sessionManager SessionManagerInterface,
	jwtManager JWTManagerInterface,
	authenticator TwoFactorAuthenticator,
	logger logrus.FieldLogger,
) Service {
	return &service{
		repo:           repo,
		userService:    userService,
		sessionManager: sessionManager,
		jwtManager:     jwtManager,
		authenticator:  authenticator,
		logger:         logger,
	}
}

func (s *service) Login(ctx context.Context, emailOrLogin, password string) (*LoginResult, error) {
	existingUser, err := s.userService.GetUserByLoginOrEmail(ctx, emailOrLogin)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.WithError(err).Error("could not load user for login")
		return nil, ErrInternalError
	}

	if !user.DoPasswordsMatch(existingUser.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	if existingUser.TwoFactorEnabled {
		sessionToken, err := s.sessionManager.GenerateSessionToken(existingUser.ID, defaultSessionTokenDuration)
		if err != nil {
			return nil, ErrInternalError
		}
		return &LoginResult{SessionToken: sessionToken, TwoFactorMethod: google2FAAuthMethod}, nil
	}

	accessToken, err := s.jwtManager.GenerateAccessJWT(existingUser.ID)
	if err != nil {
		s.logger.WithError(err).Error("could not sign access token")
		return nil, ErrInternalError
	}

	s.logger.WithField("user_id", existingUser.ID).Info("user logged in")
	return &LoginResult{AccessToken: accessToken}, nil
}

func (s *service) VerifyTwoFactor(ctx context.Context, sessionToken, code string) (string, error) {
	userID, err := s.sessionManager.VerifySessionToken(sessionToken)
	if err != nil {
		return "", err
	}

	existingUser, err := s.userService.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return "", ErrInvalidSessionToken
		}
		return "", ErrInternalError
	}
	if !existingUser.TwoFactorEnabled {
		return "", ErrUser2FANotEnabled
	}

	secret, err := s.repo.GetTwoFactorSecret(ctx, userID)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Error("could not read two-factor secret")
		return "", ErrInternalError
	}
	if !s.authenticator.VerifyCode(secret, code) {
		return "", ErrInvalid2FACode
	}

	s.sessionManager.DeleteSessionToken(sessionToken)

	accessToken, err := s.jwtManager.GenerateAccessJWT(userID)
	if err != nil {
		return "", ErrInternalError
	}

	s.logger.WithField("user_id", userID).Info("user logged in with second factor")
	return accessToken, nil
}

func (s *service) RegisterTwoFactor(ctx context.Context, userID string) (string, string, error) {
	existingUser, err := s.userService.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return "", "", user.ErrUserNotFound
		}
		return "", "", ErrInternalError
	}
	if existingUser.TwoFactorEnabled {
		return "", "", ErrUser2FAAlreadyEnabled
	}

	otpURI, secret, err := s.authenticator.GenerateSecret(existingUser.Email)
	if err != nil {
		s.logger.WithError(err).Error("could not generate TOTP secret")
		return "", "", ErrInternalError
	}
	if err := s.repo.SaveTwoFactorSecret(ctx, userID, secret); err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Error("could not save two-factor secret")
		return "", "", ErrInternalError
	}
	return otpURI, secret, nil
}

func (s *service) VerifyTwoFactorRegistration(ctx context.Context, userID, code string) error {
	existingUser, err := s.userService.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return user.ErrUserNotFound
		}
		return ErrInternalError
	}
	if existingUser.TwoFactorEnabled {
		return ErrUser2FAAlreadyEnabled
	}

	secret, err := s.repo.GetTwoFactorSecret(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNoTwoFactorSecret) {
			return ErrTwoFactorNotRegistered
		}
		return ErrInternalError
	}
	if !s.authenticator.VerifyCode(secret, code) {
		return ErrInvalid2FACode
	}

	if err := s.repo.EnableTwoFactor(ctx, userID); err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Error("could not enable two-factor authentication")
		return ErrInternalError
	}

	s.logger.WithField("user_id", userID).Info("two-factor authentication enabled")
	return nil
}

func (s *service) DisableTwoFactor(ctx context.Context, userID, code string) error {
	existingUser, err := s.userService.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return user.ErrUserNotFound
		}
		return ErrInternalError
	}
	if !existingUser.TwoFactorEnabled {
		return ErrUser2FANotEnabled
	}

	secret, err := s.repo.GetTwoFactorSecret(ctx, userID)
	if err != nil {
		return ErrInternalError
	}
	if !s.authenticator.VerifyCode(secret, code) {
		return ErrInvalid2FACode
	}

	if err := s.repo.DisableTwoFactor(ctx, userID); err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Error("could not disable two-factor authentication")
		return ErrInternalError
	}

	s.logger.WithField("user_id", userID).Info("two-factor authentication disabled")
	return nil
}

func (s *service) PurgeExpiredSessions() int {
	return s.sessionManager.PurgeExpired()
}
