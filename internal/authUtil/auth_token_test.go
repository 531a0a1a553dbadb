package authUtil

import (
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/open-ingest/eventgate/internal/model"
	"github.com/open-ingest/eventgate/internal/providers/secretProviders"
	"github.com/stretchr/testify/assert"
)

const testSecretName = "/eventgate/jwt-secret"
const testSecretValue = "unit-test-shared-secret-0123456789"

// countingProvider wraps a source and counts fetches so cache behavior is
// observable.
type countingProvider struct {
	mu      sync.Mutex
	value   string
	fetches int
}

func (p *countingProvider) GetSecret(_ string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fetches++
	return p.value, nil
}

func (p *countingProvider) setValue(value string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.value = value
}

func newTestVerifier() (*TokenVerifier, *TokenIssuer, *countingProvider, *secretProviders.CachingProvider) {
	source := &countingProvider{value: testSecretValue}
	cache := secretProviders.NewCachingProvider(source, 0)
	return NewTokenVerifier(cache, testSecretName), NewTokenIssuer(cache, testSecretName), source, cache
}

func TestVerifyValidToken(t *testing.T) {
	verifier, issuer, _, _ := newTestVerifier()

	token, err := issuer.IssueToken("user-1", "user1@example.com", "ingest admin", 24*time.Hour)
	assert.NoError(t, err, "token should be issued")

	identity, err := verifier.VerifyAuthorization(CBearerPrefix + token)
	assert.NoError(t, err, "valid token should verify")
	assert.Equal(t, "user-1", identity.Subject)
	assert.Equal(t, "user1@example.com", identity.Email)
	assert.True(t, identity.HasScope("admin"), "scope list should include admin")
	assert.False(t, identity.HasScope("other"), "scope list should not include other")
}

func TestVerifyMissingBearerPrefix(t *testing.T) {
	verifier, issuer, _, _ := newTestVerifier()

	token, err := issuer.IssueToken("user-1", "", "", time.Hour)
	assert.NoError(t, err)

	for _, header := range []string{"", "Basic dXNlcjpwdw==", "bearer " + token, token} {
		identity, err := verifier.VerifyAuthorization(header)
		assert.Nil(t, identity)
		assert.ErrorIs(t, err, model.ErrMalformedCredential, "header %q should be malformed", header)
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	verifier, issuer, _, _ := newTestVerifier()

	token, err := issuer.IssueToken("user-1", "", "", -time.Hour)
	assert.NoError(t, err)

	identity, err := verifier.VerifyAuthorization(CBearerPrefix + token)
	assert.Nil(t, identity)
	assert.ErrorIs(t, err, model.ErrUnauthorized, "expired token collapses to unauthorized")
}

func TestVerifyBadSignature(t *testing.T) {
	verifier, _, _, _ := newTestVerifier()

	otherIssuer := NewTokenIssuer(secretProviders.NewStaticProvider("a-completely-different-secret-value"), testSecretName)
	token, err := otherIssuer.IssueToken("user-1", "", "", time.Hour)
	assert.NoError(t, err)

	identity, err := verifier.VerifyAuthorization(CBearerPrefix + token)
	assert.Nil(t, identity)
	assert.ErrorIs(t, err, model.ErrUnauthorized)
}

func TestVerifyGarbageToken(t *testing.T) {
	verifier, _, _, _ := newTestVerifier()

	identity, err := verifier.VerifyAuthorization(CBearerPrefix + "not.a.token")
	assert.Nil(t, identity)
	assert.ErrorIs(t, err, model.ErrUnauthorized)
}

func TestVerifyMissingExpiry(t *testing.T) {
	verifier, _, _, _ := newTestVerifier()

	// Signed with the right secret but carrying no exp claim.
	claims := IngestClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  "user-1",
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}
	raw := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token, err := raw.SignedString([]byte(testSecretValue))
	assert.NoError(t, err)

	identity, err := verifier.VerifyAuthorization(CBearerPrefix + token)
	assert.Nil(t, identity)
	assert.ErrorIs(t, err, model.ErrUnauthorized)
}

func TestVerifyMissingSubject(t *testing.T) {
	verifier, issuer, _, _ := newTestVerifier()

	token, err := issuer.IssueToken("", "", "", time.Hour)
	assert.NoError(t, err)

	identity, err := verifier.VerifyAuthorization(CBearerPrefix + token)
	assert.Nil(t, identity)
	assert.ErrorIs(t, err, model.ErrUnauthorized)
}

func TestSecretCaching(t *testing.T) {
	verifier, issuer, source, cache := newTestVerifier()

	token, err := issuer.IssueToken("user-1", "", "", time.Hour)
	assert.NoError(t, err)

	_, err = verifier.VerifyAuthorization(CBearerPrefix + token)
	assert.NoError(t, err)
	_, err = verifier.VerifyAuthorization(CBearerPrefix + token)
	assert.NoError(t, err)
	assert.Equal(t, 1, source.fetches, "secret should be fetched once and cached")

	// Rotation takes effect only after the cache is refreshed.
	source.setValue("rotated-secret-value-9876543210abc")
	_, err = verifier.VerifyAuthorization(CBearerPrefix + token)
	assert.NoError(t, err, "old secret still cached")

	cache.Invalidate()
	identity, err := verifier.VerifyAuthorization(CBearerPrefix + token)
	assert.Nil(t, identity)
	assert.ErrorIs(t, err, model.ErrUnauthorized, "token signed with old secret fails after invalidation")
	assert.Equal(t, 2, source.fetches, "invalidation forces a refetch")
}
