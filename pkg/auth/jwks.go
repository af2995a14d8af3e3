package auth

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"
)

const (
	// jwksMaxEntries bounds the key cache; Auth0 tenants rotate through a
	// handful of keys, so anything beyond this is a misbehaving provider.
	jwksMaxEntries = 10

	// jwksFreshness is how long a fetched key is trusted before the set is
	// fetched again.
	jwksFreshness = 10 * time.Minute
)

var ErrKeyNotFound = errors.New("auth: signing key not found")

type jwk struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Use string `json:"use"`
	N   string `json:"n"`
	E   string `json:"e"`
}

type jwksDocument struct {
	Keys []jwk `json:"keys"`
}

type cachedKey struct {
	key       *rsa.PublicKey
	fetchedAt time.Time
}

// JWKSCache fetches the identity provider's public key set on demand and
// keeps up to jwksMaxEntries keys for jwksFreshness. It is safe for
// concurrent use from a shared, process-wide instance.
type JWKSCache struct {
	url    string
	client *http.Client

	mu   sync.RWMutex
	keys map[string]cachedKey
}

// NewJWKSCache builds a cache over the given JWKS endpoint.
func NewJWKSCache(url string) *JWKSCache {
	return &JWKSCache{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
		keys:   make(map[string]cachedKey),
	}
}

// Key returns the RSA public key for the given key id, fetching the key
// set when the id is unknown or the cached entry has gone stale.
func (c *JWKSCache) Key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	c.mu.RLock()
	entry, ok := c.keys[kid]
	c.mu.RUnlock()

	if ok && time.Since(entry.fetchedAt) < jwksFreshness {
		return entry.key, nil
	}

	if err := c.refresh(ctx); err != nil {
		return nil, err
	}

	c.mu.RLock()
	entry, ok = c.keys[kid]
	c.mu.RUnlock()

	if !ok {
		return nil, ErrKeyNotFound
	}
	return entry.key, nil
}

// refresh replaces the cached set with the provider's current one.
func (c *JWKSCache) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return fmt.Errorf("auth: jwks request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("auth: jwks fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("auth: jwks fetch: unexpected status %d", resp.StatusCode)
	}

	var doc jwksDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return fmt.Errorf("auth: jwks decode: %w", err)
	}

	now := time.Now()
	fresh := make(map[string]cachedKey, len(doc.Keys))
	for _, k := range doc.Keys {
		if k.Kty != "RSA" || k.Kid == "" {
			continue
		}
		if len(fresh) >= jwksMaxEntries {
			break
		}
		pub, err := k.publicKey()
		if err != nil {
			continue
		}
		fresh[k.Kid] = cachedKey{key: pub, fetchedAt: now}
	}

	c.mu.Lock()
	c.keys = fresh
	c.mu.Unlock()

	return nil
}

// publicKey assembles an rsa.PublicKey from the JWK's modulus and
// exponent, both base64url without padding per RFC 7518.
func (k jwk) publicKey() (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, fmt.Errorf("auth: jwk modulus: %w", err)
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, fmt.Errorf("auth: jwk exponent: %w", err)
	}

	e := 0
	for _, b := range eBytes {
		e = e<<8 | int(b)
	}
	if e <= 0 {
		return nil, errors.New("auth: jwk exponent out of range")
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: e,
	}, nil
}
