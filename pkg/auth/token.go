package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// identityClaims are the claims this client needs from the OAuth identity
// token. The account id lives in a vendor-namespaced claim.
type identityClaims struct {
	jwt.RegisteredClaims
	Auth struct {
		ChatGPTAccountID string `json:"chatgpt_account_id"`
	} `json:"https://api.openai.com/auth"`
}

// decodeIdentityToken extracts the account id and expiry from an identity
// token without verifying its signature; the token was just received over
// TLS from the issuer. A missing account id is fatal for the exchange.
func decodeIdentityToken(raw string) (accountID string, expiresAt time.Time, err error) {
	if raw == "" {
		return "", time.Time{}, fmt.Errorf("auth: token exchange response carried no identity token")
	}

	var claims identityClaims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(raw, &claims); err != nil {
		return "", time.Time{}, fmt.Errorf("auth: malformed identity token: %w", err)
	}

	if claims.Auth.ChatGPTAccountID == "" {
		return "", time.Time{}, fmt.Errorf("auth: identity token carries no account id; re-authenticate with an account-scoped login")
	}

	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	return claims.Auth.ChatGPTAccountID, expiresAt, nil
}
