// Package token verifies the access tokens presented under the OAUTH SCA
// approach. The gateway trusts an authorisation server it shares a signing
// key with; it never issues tokens itself.
package token

import (
	"context"
	"errors"

	"github.com/golang-jwt/jwt/v5"

	dErrors "xs2gate/pkg/domain-errors"
)

// ErrExpired marks a token that was well-formed and correctly signed but is
// past its expiry. Callers map it to a dedicated error code.
var ErrExpired = errors.New("access token expired")

// ErrInvalid marks any other verification failure.
var ErrInvalid = errors.New("access token invalid")

// Verifier checks HMAC-signed bearer tokens.
type Verifier struct {
	key    []byte
	issuer string
}

// NewVerifier builds a verifier for tokens signed with the given key. An
// empty issuer disables the issuer check.
func NewVerifier(key []byte, issuer string) (*Verifier, error) {
	if len(key) == 0 {
		return nil, dErrors.New(dErrors.CodeConfiguration, "token signing key is required")
	}
	return &Verifier{key: key, issuer: issuer}, nil
}

// Verify parses and validates the token. It returns ErrExpired for expired
// tokens and ErrInvalid for every other failure.
func (v *Verifier) Verify(_ context.Context, raw string) error {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	_, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		return v.key, nil
	}, opts...)
	if err == nil {
		return nil
	}
	if errors.Is(err, jwt.ErrTokenExpired) {
		return ErrExpired
	}
	return errors.Join(ErrInvalid, err)
}
