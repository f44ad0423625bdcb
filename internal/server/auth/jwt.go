package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/saireecmpo/portal/internal/common"
)

const challengePurpose = "mfa_challenge"

// ChallengeClaims is issued after a correct password when the account has
// MFA enabled. It proves the first factor without granting a session.
type ChallengeClaims struct {
	jwt.RegisteredClaims
	AccountID string `json:"account_id"`
	Remember  bool   `json:"remember"`
	Purpose   string `json:"purpose"`
}

// GenerateChallengeToken signs a short-lived token binding the pending
// login to the account that passed the password check.
func GenerateChallengeToken(accountID string, remember bool, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, ChallengeClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		AccountID: accountID,
		Remember:  remember,
		Purpose:   challengePurpose,
	})
	return token.SignedString(secretKey)
}

// ParseChallengeToken validates the signature, expiry and purpose, and
// returns the pending account ID with the remember flag. An expired or
// repurposed token yields common.ErrInvalidToken.
func ParseChallengeToken(tokenString string, secretKey []byte) (accountID string, remember bool, err error) {
	claims := &ChallengeClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		return "", false, common.ErrInvalidToken
	}
	if !token.Valid || claims.Purpose != challengePurpose {
		return "", false, common.ErrInvalidToken
	}
	return claims.AccountID, claims.Remember, nil
}
