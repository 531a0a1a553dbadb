package authUtil

import (
	"errors"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/open-ingest/eventgate/internal/model"
	"github.com/open-ingest/eventgate/internal/providers/secretProviders"
	"github.com/segmentio/ksuid"
)

const CBearerPrefix = "Bearer "
const ScopeAdmin = "admin"

var aLog = log.New(os.Stdout, "AUTH:   ", log.Ldate|log.Ltime)

// IdentityContext is the verified identity attached to a request. Values are
// taken from the token's claims; no round trip to any other system is made.
type IdentityContext struct {
	Subject string
	Email   string
	Scope   string
}

// HasScope reports whether the identity's space-separated scope string carries
// the requested scope.
func (c *IdentityContext) HasScope(scope string) bool {
	for _, s := range strings.Fields(c.Scope) {
		if strings.EqualFold(s, scope) {
			return true
		}
	}
	return false
}

// IngestClaims is the claim set carried by an access token.
type IngestClaims struct {
	Email string `json:"email,omitempty"`
	Scope string `json:"scope,omitempty"`
	jwt.RegisteredClaims
}

// failCause records why verification failed. Causes are logged for diagnostics
// but never surfaced to callers; every failure collapses to ErrUnauthorized.
type failCause int

const (
	causeSecretUnavailable failCause = iota
	causeExpired
	causeFutureIssued
	causeBadSignature
	causeMalformedClaims
	causeMissingExpiry
	causeMissingSubject
)

func (c failCause) String() string {
	switch c {
	case causeSecretUnavailable:
		return "secret unavailable"
	case causeExpired:
		return "token expired"
	case causeFutureIssued:
		return "token used before issued"
	case causeBadSignature:
		return "signature invalid"
	case causeMissingExpiry:
		return "expiry claim missing"
	case causeMissingSubject:
		return "subject claim missing"
	default:
		return "malformed claims"
	}
}

/*
TokenVerifier validates bearer credentials against a shared HS256 secret fetched
from a SecretProvider. The provider handed in is normally a
secretProviders.CachingProvider so the secret is fetched once and re-fetched
only on invalidation or TTL expiry.
*/
type TokenVerifier struct {
	Secrets    secretProviders.SecretProvider
	SecretName string
}

func NewTokenVerifier(secrets secretProviders.SecretProvider, secretName string) *TokenVerifier {
	return &TokenVerifier{Secrets: secrets, SecretName: secretName}
}

// VerifyRequest pulls the Authorization header off r and verifies it.
func (v *TokenVerifier) VerifyRequest(r *http.Request) (*IdentityContext, error) {
	return v.VerifyAuthorization(r.Header.Get("Authorization"))
}

/*
VerifyAuthorization validates a raw Authorization header value. A header that
does not carry a "Bearer " credential fails with model.ErrMalformedCredential.
Every token validation failure (expired, bad signature, malformed claims)
collapses to model.ErrUnauthorized; the underlying cause is logged only.
*/
func (v *TokenVerifier) VerifyAuthorization(authorization string) (*IdentityContext, error) {
	if !strings.HasPrefix(authorization, CBearerPrefix) {
		return nil, model.ErrMalformedCredential
	}
	tokenString := strings.TrimSpace(authorization[len(CBearerPrefix):])

	claims, cause, err := v.parseToken(tokenString)
	if err != nil {
		aLog.Printf("Authorization invalid (%s): %s", cause.String(), err.Error())
		return nil, model.ErrUnauthorized
	}

	return &IdentityContext{
		Subject: claims.Subject,
		Email:   claims.Email,
		Scope:   claims.Scope,
	}, nil
}

func (v *TokenVerifier) parseToken(tokenString string) (*IngestClaims, failCause, error) {
	secret, err := v.Secrets.GetSecret(v.SecretName)
	if err != nil {
		return nil, causeSecretUnavailable, err
	}

	claims := &IngestClaims{}
	_, err = jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method: " + token.Method.Alg())
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, classifyParseError(err), err
	}

	// exp is mandatory; jwt only validates it when present.
	if claims.ExpiresAt == nil {
		return nil, causeMissingExpiry, errors.New("token has no expiry")
	}
	if claims.Subject == "" {
		return nil, causeMissingSubject, errors.New("token has no subject")
	}
	return claims, 0, nil
}

func classifyParseError(err error) failCause {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return causeExpired
	case errors.Is(err, jwt.ErrTokenUsedBeforeIssued), errors.Is(err, jwt.ErrTokenNotValidYet):
		return causeFutureIssued
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return causeBadSignature
	default:
		return causeMalformedClaims
	}
}

/*
TokenIssuer mints HS256 access tokens against the same shared secret the
verifier checks. Used by the admin tool and tests; production tokens normally
come from an external issuer holding the secret.
*/
type TokenIssuer struct {
	Secrets    secretProviders.SecretProvider
	SecretName string
}

func NewTokenIssuer(secrets secretProviders.SecretProvider, secretName string) *TokenIssuer {
	return &TokenIssuer{Secrets: secrets, SecretName: secretName}
}

// IssueToken returns a signed token for subject expiring after expiresIn.
// Email and scope are included only when non-empty.
func (i *TokenIssuer) IssueToken(subject string, email string, scope string, expiresIn time.Duration) (string, error) {
	secret, err := i.Secrets.GetSecret(i.SecretName)
	if err != nil {
		return "", err
	}

	now := time.Now()
	claims := IngestClaims{
		Email: email,
		Scope: scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
			ID:        ksuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token.Header["typ"] = "jwt"
	return token.SignedString([]byte(secret))
}
