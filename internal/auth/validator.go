package auth

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v4"

	"github.com/reelkit/reelkit/internal/config"
	ierr "github.com/reelkit/reelkit/internal/errors"
)

// Claims is the subset of the identity provider's token we rely on. The
// subject is the account id; identity provisioning itself happens upstream.
type Claims struct {
	AccountID string
	Email     string
}

// Validator verifies access tokens issued by the identity provider.
type Validator interface {
	ValidateToken(ctx context.Context, token string) (*Claims, error)
}

type hmacValidator struct {
	authConfig config.AuthConfig
}

// NewValidator builds a validator for HMAC-signed provider tokens.
func NewValidator(cfg *config.Configuration) Validator {
	return &hmacValidator{authConfig: cfg.Auth}
}

func (v *hmacValidator) ValidateToken(ctx context.Context, token string) (*Claims, error) {
	parsedToken, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ierr.NewError("unexpected signing method").
				WithHint(fmt.Sprintf("unexpected signing method: %v", token.Header["alg"])).
				Mark(ierr.ErrPermissionDenied)
		}
		return []byte(v.authConfig.Secret), nil
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Token parse error").
			Mark(ierr.ErrPermissionDenied)
	}

	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	if !ok || !parsedToken.Valid {
		return nil, ierr.NewError("invalid token claims").
			WithHint("Invalid token claims").
			Mark(ierr.ErrPermissionDenied)
	}

	accountID, ok := claims["sub"].(string)
	if !ok || accountID == "" {
		return nil, ierr.NewError("token missing subject").
			WithHint("Token is missing the account subject").
			Mark(ierr.ErrPermissionDenied)
	}

	email, _ := claims["email"].(string)

	return &Claims{AccountID: accountID, Email: email}, nil
}
