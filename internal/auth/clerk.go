// ABOUTME: Clerk auth provider that verifies session JWTs against Clerk's JWKS
// ABOUTME: Keys are fetched once and cached; user profiles come from the Clerk backend API
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

	"github.com/golang-jwt/jwt/v4"
	"github.com/tripcortex/trip-cortex/internal/cortexerr"
)

// DefaultClerkAPIBase is the Clerk backend API root
const DefaultClerkAPIBase = "https://api.clerk.com"

// ClerkProvider verifies Clerk session tokens
type ClerkProvider struct {
	secretKey  string
	apiBase    string
	httpClient *http.Client

	mu   sync.RWMutex
	keys map[string]*rsa.PublicKey
}

// NewClerkProvider creates a provider backed by the public Clerk API
func NewClerkProvider(secretKey string) *ClerkProvider {
	return NewClerkProviderWithBase(secretKey, DefaultClerkAPIBase)
}

// NewClerkProviderWithBase creates a provider against a custom API base,
// used by tests to point at a local server.
func NewClerkProviderWithBase(secretKey, apiBase string) *ClerkProvider {
	return &ClerkProvider{
		secretKey:  secretKey,
		apiBase:    apiBase,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		keys:       make(map[string]*rsa.PublicKey),
	}
}

type sessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// VerifyToken parses and verifies a Clerk session JWT. Signature and expiry
// failures map to INVALID_TOKEN; key fetch failures map to AUTH_FAILED.
func (p *ClerkProvider) VerifyToken(ctx context.Context, token string) (*Claims, error) {
	claims := &sessionClaims{}

	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method %s", t.Method.Alg())
		}
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("token has no key ID")
		}
		return p.publicKey(ctx, kid)
	})
	if err != nil {
		var fetchErr *jwksFetchError
		if errors.As(err, &fetchErr) {
			return nil, cortexerr.Wrap(cortexerr.CodeAuthFailed, "could not fetch signing keys", err)
		}
		return nil, cortexerr.Wrap(cortexerr.CodeInvalidToken, "token verification failed", err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, cortexerr.New(cortexerr.CodeInvalidToken, "token has no subject")
	}

	out := &Claims{
		UserID:    claims.Subject,
		SessionID: claims.SessionID,
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}

// GetUser fetches a user profile from the Clerk backend API
func (p *ClerkProvider) GetUser(ctx context.Context, userID string) (*User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.apiBase+"/v1/users/"+userID, nil)
	if err != nil {
		return nil, cortexerr.Wrap(cortexerr.CodeAuthFailed, "could not build user request", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.secretKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, cortexerr.Wrap(cortexerr.CodeAuthFailed, "user lookup failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, cortexerr.New(cortexerr.CodeAuthFailed, fmt.Sprintf("user lookup returned status %d", resp.StatusCode))
	}

	var body struct {
		ID             string `json:"id"`
		FirstName      string `json:"first_name"`
		LastName       string `json:"last_name"`
		EmailAddresses []struct {
			EmailAddress string `json:"email_address"`
		} `json:"email_addresses"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, cortexerr.Wrap(cortexerr.CodeAuthFailed, "could not decode user response", err)
	}

	user := &User{
		ID:        body.ID,
		FirstName: body.FirstName,
		LastName:  body.LastName,
	}
	if len(body.EmailAddresses) > 0 {
		user.Email = body.EmailAddresses[0].EmailAddress
	}
	return user, nil
}

// jwksFetchError marks key fetch failures so they map to AUTH_FAILED rather
// than INVALID_TOKEN.
type jwksFetchError struct {
	err error
}

func (e *jwksFetchError) Error() string { return "jwks fetch: " + e.err.Error() }
func (e *jwksFetchError) Unwrap() error { return e.err }

// publicKey returns the RSA key for a key ID, refreshing the JWKS cache on a
// miss so key rotation does not require a restart.
func (p *ClerkProvider) publicKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	p.mu.RLock()
	key, ok := p.keys[kid]
	p.mu.RUnlock()
	if ok {
		return key, nil
	}

	if err := p.refreshKeys(ctx); err != nil {
		return nil, &jwksFetchError{err: err}
	}

	p.mu.RLock()
	key, ok = p.keys[kid]
	p.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no signing key with ID %q", kid)
	}
	return key, nil
}

func (p *ClerkProvider) refreshKeys(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.apiBase+"/v1/jwks", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+p.secretKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("jwks endpoint returned status %d", resp.StatusCode)
	}

	var jwks struct {
		Keys []struct {
			Kid string `json:"kid"`
			Kty string `json:"kty"`
			N   string `json:"n"`
			E   string `json:"e"`
		} `json:"keys"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&jwks); err != nil {
		return err
	}

	keys := make(map[string]*rsa.PublicKey, len(jwks.Keys))
	for _, k := range jwks.Keys {
		if k.Kty != "RSA" {
			continue
		}
		pub, err := parseRSAKey(k.N, k.E)
		if err != nil {
			return fmt.Errorf("key %s: %w", k.Kid, err)
		}
		keys[k.Kid] = pub
	}

	p.mu.Lock()
	p.keys = keys
	p.mu.Unlock()
	return nil
}

// parseRSAKey builds an RSA public key from base64url modulus and exponent
func parseRSAKey(n, e string) (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(n)
	if err != nil {
		return nil, fmt.Errorf("bad modulus: %w", err)
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(e)
	if err != nil {
		return nil, fmt.Errorf("bad exponent: %w", err)
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: int(new(big.Int).SetBytes(eBytes).Int64()),
	}, nil
}
