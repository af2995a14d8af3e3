package auth_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raywall/serverless-todo-api/pkg/auth"
)

const (
	testAudience = "https://todo-api.example.com"
	testIssuer   = "https://tenant.auth0.example.com/"
	testKid      = "test-key-1"
)

// jwksKey pairs a key id with the public key the server advertises for it.
type jwksKey struct {
	kid string
	pub *rsa.PublicKey
}

// jwksServer serves a JWKS document for the given keys, in order, and
// counts fetches.
func jwksServer(t *testing.T, fetches *atomic.Int32, keys []jwksKey) *httptest.Server {
	t.Helper()

	type jwk struct {
		Kty string `json:"kty"`
		Kid string `json:"kid"`
		Use string `json:"use"`
		N   string `json:"n"`
		E   string `json:"e"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fetches != nil {
			fetches.Add(1)
		}

		var doc struct {
			Keys []jwk `json:"keys"`
		}
		for _, k := range keys {
			doc.Keys = append(doc.Keys, jwk{
				Kty: "RSA",
				Kid: k.kid,
				Use: "sig",
				N:   base64.RawURLEncoding.EncodeToString(k.pub.N.Bytes()),
				E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(k.pub.E)).Bytes()),
			})
		}
		require.NoError(t, json.NewEncoder(w).Encode(doc))
	}))
	t.Cleanup(server.Close)

	return server
}

func signToken(t *testing.T, key *rsa.PrivateKey, kid string, claims jwt.MapClaims) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = kid

	signed, err := token.SignedString(key)
	require.NoError(t, err)
	return signed
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub": "auth0|u1",
		"aud": testAudience,
		"iss": testIssuer,
		"iat": time.Now().Add(-time.Minute).Unix(),
		"exp": time.Now().Add(time.Hour).Unix(),
	}
}

func newTestVerifier(t *testing.T, pub *rsa.PublicKey) *auth.Verifier {
	t.Helper()

	server := jwksServer(t, nil, []jwksKey{{kid: testKid, pub: pub}})
	return auth.NewVerifier(auth.NewJWKSCache(server.URL), testAudience, testIssuer)
}

func TestParseBearer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header string
		token  string
		ok     bool
	}{
		{"standard", "Bearer abc.def.ghi", "abc.def.ghi", true},
		{"lowercase scheme", "bearer abc", "abc", true},
		{"empty header", "", "", false},
		{"wrong scheme", "Basic abc", "", false},
		{"scheme only", "Bearer", "", false},
		{"scheme with trailing space", "Bearer ", "", false},
		{"bare token", "abc.def.ghi", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			token, err := auth.ParseBearer(tt.header)
			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, tt.token, token)
			} else {
				assert.ErrorIs(t, err, auth.ErrMalformedHeader)
			}
		})
	}
}

func TestVerify_Success(t *testing.T) {
	t.Parallel()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	verifier := newTestVerifier(t, &key.PublicKey)
	token := signToken(t, key, testKid, validClaims())

	principal, err := verifier.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "auth0|u1", principal)
}

func TestVerify_Rejections(t *testing.T) {
	t.Parallel()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	wrongIssuer := validClaims()
	wrongIssuer["iss"] = "https://evil.example.com/"

	wrongAudience := validClaims()
	wrongAudience["aud"] = "https://other-api.example.com"

	expired := validClaims()
	expired["exp"] = time.Now().Add(-time.Hour).Unix()

	noExpiry := validClaims()
	delete(noExpiry, "exp")

	tests := []struct {
		name  string
		token func(t *testing.T) string
	}{
		{"wrong issuer", func(t *testing.T) string { return signToken(t, key, testKid, wrongIssuer) }},
		{"wrong audience", func(t *testing.T) string { return signToken(t, key, testKid, wrongAudience) }},
		{"expired", func(t *testing.T) string { return signToken(t, key, testKid, expired) }},
		{"no expiry", func(t *testing.T) string { return signToken(t, key, testKid, noExpiry) }},
		{"signed by another key", func(t *testing.T) string { return signToken(t, otherKey, testKid, validClaims()) }},
		{"unknown kid", func(t *testing.T) string { return signToken(t, key, "unknown-kid", validClaims()) }},
		{"not a token", func(t *testing.T) string { return "garbage" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			verifier := newTestVerifier(t, &key.PublicKey)

			_, err := verifier.Verify(context.Background(), tt.token(t))
			assert.Error(t, err)
		})
	}
}

func TestVerify_WrongIssuerValidClaimsStillDenied(t *testing.T) {
	t.Parallel()

	// A token with a perfectly valid subject and audience is still rejected
	// when the issuer does not match, regardless of its content.
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	claims := validClaims()
	claims["iss"] = "https://impostor.example.com/"
	claims["sub"] = "auth0|admin"

	verifier := newTestVerifier(t, &key.PublicKey)

	_, err = verifier.Verify(context.Background(), signToken(t, key, testKid, claims))
	assert.Error(t, err)
}

func TestAuthorize_Allow(t *testing.T) {
	t.Parallel()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	verifier := newTestVerifier(t, &key.PublicKey)
	token := signToken(t, key, testKid, validClaims())

	response := verifier.Authorize(context.Background(), events.APIGatewayCustomAuthorizerRequest{
		AuthorizationToken: "Bearer " + token,
		MethodArn:          "arn:aws:execute-api:us-east-1:123:api/dev/GET/todos",
	})

	assert.Equal(t, "auth0|u1", response.PrincipalID)
	require.Len(t, response.PolicyDocument.Statement, 1)
	assert.Equal(t, "Allow", response.PolicyDocument.Statement[0].Effect)
	assert.Equal(t, []string{"arn:aws:execute-api:us-east-1:123:api/dev/GET/todos"}, response.PolicyDocument.Statement[0].Resource)
	assert.Equal(t, "auth0|u1", response.Context["sub"])
}

func TestAuthorize_DenyIsAnonymous(t *testing.T) {
	t.Parallel()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	verifier := newTestVerifier(t, &key.PublicKey)

	expired := validClaims()
	expired["exp"] = time.Now().Add(-time.Hour).Unix()

	// Whatever the failure, the decision looks the same from outside.
	headers := []string{
		"",
		"Basic abc",
		"Bearer not-a-jwt",
		"Bearer " + signToken(t, key, testKid, expired),
	}

	for _, header := range headers {
		response := verifier.Authorize(context.Background(), events.APIGatewayCustomAuthorizerRequest{
			AuthorizationToken: header,
			MethodArn:          "arn:aws:execute-api:us-east-1:123:api/dev/GET/todos",
		})

		assert.Equal(t, auth.AnonymousPrincipal, response.PrincipalID)
		require.Len(t, response.PolicyDocument.Statement, 1)
		assert.Equal(t, "Deny", response.PolicyDocument.Statement[0].Effect)
		assert.Nil(t, response.Context)
	}
}
