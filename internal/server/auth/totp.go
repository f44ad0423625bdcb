// Package auth holds the credential primitives: TOTP codes, backup codes
// and the signed tokens used for sessions and MFA challenges.
package auth

import (
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// totpOpts fixes the verification parameters: 30 second steps, six digits,
// SHA-1, and one step of allowed clock drift in each direction.
var totpOpts = totp.ValidateOpts{
	Period:    30,
	Skew:      1,
	Digits:    otp.DigitsSix,
	Algorithm: otp.AlgorithmSHA1,
}

// GenerateTOTPSecret creates a fresh shared secret for an account and
// returns the secret together with its otpauth:// provisioning URI.
func GenerateTOTPSecret(issuer, accountName string) (secret string, uri string, err error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: accountName,
	})
	if err != nil {
		return "", "", err
	}
	return key.Secret(), key.URL(), nil
}

// VerifyTOTP checks a six digit code against the secret, accepting the
// current time step and one step either side.
func VerifyTOTP(code string, secret string, at time.Time) bool {
	valid, err := totp.ValidateCustom(code, secret, at, totpOpts)
	if err != nil {
		return false
	}
	return valid
}

// GenerateTOTPCode produces the code for the given instant. Used by setup
// flows and tests, never sent to clients.
func GenerateTOTPCode(secret string, at time.Time) (string, error) {
	return totp.GenerateCodeCustom(secret, at, totpOpts)
}
