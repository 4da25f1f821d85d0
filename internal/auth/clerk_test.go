// ABOUTME: Tests for Clerk token verification against a local JWKS server
package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/tripcortex/trip-cortex/internal/config"
	"github.com/tripcortex/trip-cortex/internal/cortexerr"
)

type clerkFixture struct {
	provider *ClerkProvider
	key      *rsa.PrivateKey
	server   *httptest.Server
}

func newClerkFixture(t *testing.T) *clerkFixture {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/jwks", func(w http.ResponseWriter, r *http.Request) {
		jwks := map[string]any{
			"keys": []map[string]string{
				{
					"kid": "test-key",
					"kty": "RSA",
					"n":   base64.RawURLEncoding.EncodeToString(key.PublicKey.N.Bytes()),
					"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.PublicKey.E)).Bytes()),
				},
			},
		}
		json.NewEncoder(w).Encode(jwks)
	})
	mux.HandleFunc("/v1/users/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"user_123","first_name":"Ada","last_name":"Lovelace","email_addresses":[{"email_address":"ada@example.com"}]}`)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return &clerkFixture{
		provider: NewClerkProviderWithBase("sk_test_secret", server.URL),
		key:      key,
		server:   server,
	}
}

func (f *clerkFixture) signToken(t *testing.T, kid string, claims jwt.RegisteredClaims) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, sessionClaims{
		SessionID:        "sess_abc",
		RegisteredClaims: claims,
	})
	token.Header["kid"] = kid

	signed, err := token.SignedString(f.key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestVerifyTokenValid(t *testing.T) {
	f := newClerkFixture(t)

	token := f.signToken(t, "test-key", jwt.RegisteredClaims{
		Subject:   "user_123",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})

	claims, err := f.provider.VerifyToken(context.Background(), token)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if claims.UserID != "user_123" {
		t.Errorf("got user ID %q, want user_123", claims.UserID)
	}
	if claims.SessionID != "sess_abc" {
		t.Errorf("got session ID %q, want sess_abc", claims.SessionID)
	}
}

func TestVerifyTokenExpired(t *testing.T) {
	f := newClerkFixture(t)

	token := f.signToken(t, "test-key", jwt.RegisteredClaims{
		Subject:   "user_123",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	})

	_, err := f.provider.VerifyToken(context.Background(), token)
	if err == nil {
		t.Fatal("expired token accepted")
	}
	if code := cortexerr.CodeOf(err); code != cortexerr.CodeInvalidToken {
		t.Errorf("got code %s, want %s", code, cortexerr.CodeInvalidToken)
	}
}

func TestVerifyTokenUnknownKey(t *testing.T) {
	f := newClerkFixture(t)

	token := f.signToken(t, "other-key", jwt.RegisteredClaims{
		Subject:   "user_123",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})

	if _, err := f.provider.VerifyToken(context.Background(), token); err == nil {
		t.Error("token signed with unknown key accepted")
	}
}

func TestVerifyTokenGarbage(t *testing.T) {
	f := newClerkFixture(t)

	_, err := f.provider.VerifyToken(context.Background(), "not-a-jwt")
	if err == nil {
		t.Fatal("garbage token accepted")
	}
	if code := cortexerr.CodeOf(err); code != cortexerr.CodeInvalidToken {
		t.Errorf("got code %s, want %s", code, cortexerr.CodeInvalidToken)
	}
}

func TestGetUser(t *testing.T) {
	f := newClerkFixture(t)

	user, err := f.provider.GetUser(context.Background(), "user_123")
	if err != nil {
		t.Fatalf("get user failed: %v", err)
	}
	if user.Email != "ada@example.com" {
		t.Errorf("got email %q, want ada@example.com", user.Email)
	}
	if user.FirstName != "Ada" {
		t.Errorf("got first name %q, want Ada", user.FirstName)
	}
}

func TestNewProviderSelection(t *testing.T) {
	cfg := &config.Config{ClerkSecretKey: "sk_live_x", Environment: "production"}
	p, err := NewProvider(cfg)
	if err != nil {
		t.Fatalf("provider selection failed: %v", err)
	}
	if _, ok := p.(*ClerkProvider); !ok {
		t.Errorf("got %T, want *ClerkProvider", p)
	}

	cfg = &config.Config{Environment: "local"}
	p, err = NewProvider(cfg)
	if err != nil {
		t.Fatalf("local fallback failed: %v", err)
	}
	if _, ok := p.(*InsecureProvider); !ok {
		t.Errorf("got %T, want *InsecureProvider", p)
	}

	cfg = &config.Config{Environment: "production"}
	if _, err := NewProvider(cfg); err == nil {
		t.Error("production without secret key should fail")
	}
}
