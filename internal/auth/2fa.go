package auth

import (
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const google2FAAuthMethod = "google_authenticator"

// TwoFactorAuthenticator generates and checks TOTP secrets.
type TwoFactorAuthenticator interface {
	GenerateSecret(accountName string) (otpURI string, secret string, err error)
	VerifyCode(secret, code string) bool
}

type Authenticator struct {
	Issuer string
}

// GenerateSecret uses SHA1 for Google Authenticator compatibility.
func (g Authenticator) GenerateSecret(accountName string) (string, string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      g.Issuer,
		AccountName: accountName,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", "", err
	}
	return key.URL(), key.Secret(), nil
}

func (g Authenticator) VerifyCode(secret, code string) bool {
	return totp.Validate(code, secret)
}
