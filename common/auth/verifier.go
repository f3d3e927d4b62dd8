package auth

import (
	"context"
	"fmt"

	apperrors "github.com/burakmert236/clubscore/common/errors"
	"github.com/form3tech-oss/jwt-go"
)

// User is the caller identity taken from a verified token.
type User struct {
	Sub      string
	Email    string
	Username string
	TokenUse string
}

type Verifier struct {
	issuer   string
	clientID string
	keys     KeyProvider
}

func NewVerifier(issuer, clientID string, keys KeyProvider) *Verifier {
	return &Verifier{issuer: issuer, clientID: clientID, keys: keys}
}

// Verify checks signature, expiry and issuer, then pins the client id:
// id tokens through aud, access tokens through client_id.
func (v *Verifier) Verify(ctx context.Context, raw string) (*User, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		kid, _ := t.Header["kid"].(string)
		return v.keys.Key(ctx, kid)
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeUnauthorized, "Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, apperrors.New(apperrors.CodeUnauthorized, "Invalid or expired token")
	}

	if v.issuer != "" && !claims.VerifyIssuer(v.issuer, true) {
		return nil, apperrors.New(apperrors.CodeUnauthorized, "Invalid issuer")
	}

	tokenUse := stringClaim(claims, "token_use")
	switch tokenUse {
	case "id":
		if v.clientID != "" && claims["aud"] != nil && !claims.VerifyAudience(v.clientID, false) {
			return nil, apperrors.New(apperrors.CodeUnauthorized, "Invalid audience")
		}
	case "access":
		if cid := stringClaim(claims, "client_id"); v.clientID != "" && cid != "" && cid != v.clientID {
			return nil, apperrors.New(apperrors.CodeUnauthorized, "Invalid client")
		}
	default:
		return nil, apperrors.New(apperrors.CodeUnauthorized, "Invalid token")
	}

	sub := stringClaim(claims, "sub")
	if sub == "" {
		return nil, apperrors.New(apperrors.CodeUnauthorized, "Token has no subject")
	}

	email := stringClaim(claims, "email")
	username := stringClaim(claims, "cognito:username")
	if username == "" {
		username = email
	}
	if username == "" {
		username = sub
	}

	return &User{Sub: sub, Email: email, Username: username, TokenUse: tokenUse}, nil
}

func stringClaim(claims jwt.MapClaims, key string) string {
	s, _ := claims[key].(string)
	return s
}
