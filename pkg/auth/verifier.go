package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// AnonymousPrincipal is the principal id carried by every deny decision.
const AnonymousPrincipal = "anonymous"

var ErrMalformedHeader = errors.New("auth: malformed authorization header")

// ParseBearer extracts the raw token from an Authorization header value.
// Anything that is not exactly `Bearer <token>` is rejected; the scheme
// comparison is case-insensitive.
func ParseBearer(header string) (string, error) {
	if header == "" {
		return "", ErrMalformedHeader
	}

	scheme, token, found := strings.Cut(header, " ")
	if !found || token == "" || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrMalformedHeader
	}
	return token, nil
}

// Verifier validates bearer tokens against the provider's key set and the
// configured audience and issuer.
type Verifier struct {
	keys     *JWKSCache
	audience string
	issuer   string
}

// NewVerifier wires a verifier over a shared JWKS cache.
func NewVerifier(keys *JWKSCache, audience, issuer string) *Verifier {
	return &Verifier{
		keys:     keys,
		audience: audience,
		issuer:   issuer,
	}
}

// Verify checks the token's signature, audience, issuer and expiry, and
// returns the subject claim as the principal id. Only RS256 is accepted.
func (v *Verifier) Verify(ctx context.Context, rawToken string) (string, error) {
	token, err := jwt.Parse(rawToken, v.keyFunc(ctx),
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithAudience(v.audience),
		jwt.WithIssuer(v.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", fmt.Errorf("auth: token rejected: %w", err)
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", errors.New("auth: token has no subject")
	}
	return sub, nil
}

// VerifyHeader is Verify over a raw Authorization header value.
func (v *Verifier) VerifyHeader(ctx context.Context, header string) (string, error) {
	rawToken, err := ParseBearer(header)
	if err != nil {
		return "", err
	}
	return v.Verify(ctx, rawToken)
}

func (v *Verifier) keyFunc(ctx context.Context) jwt.Keyfunc {
	return func(token *jwt.Token) (any, error) {
		kid, ok := token.Header["kid"].(string)
		if !ok || kid == "" {
			return nil, errors.New("auth: token has no key id")
		}
		return v.keys.Key(ctx, kid)
	}
}
