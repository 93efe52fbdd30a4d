package middleware

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"time"

	jwtmiddleware "github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"

	"github.com/classcollect/classcollect-api/config"
)

// CustomClaims holds the Auth0 profile claims we care about beyond the
// registered set.
type CustomClaims struct {
	Nickname string `json:"nickname"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}

func (c *CustomClaims) Validate(ctx context.Context) error {
	return nil
}

// EnsureValidToken builds middleware that validates bearer tokens
// against the Auth0 tenant's JWKS document. The provider is the
// non-caching one, so every request fetches the key set fresh; that
// mirrors how token validation has always behaved here.
//
// Credentials are optional at this layer: public endpoints pass
// through without a token, and protected handlers check for claims
// themselves (via SyncUser or utils.GetAuth0ID).
func EnsureValidToken(env *config.Environment) func(next http.Handler) http.Handler {
	issuerURL, err := url.Parse("https://" + env.Auth0Domain + "/")
	if err != nil {
		log.Fatalf("EnsureValidToken: failed to parse issuer url: %v", err)
	}

	provider := jwks.NewProvider(issuerURL)

	jwtValidator, err := validator.New(
		provider.KeyFunc,
		validator.RS256,
		issuerURL.String(),
		[]string{env.Auth0Audience},
		validator.WithCustomClaims(func() validator.CustomClaims {
			return &CustomClaims{}
		}),
		validator.WithAllowedClockSkew(time.Minute),
	)
	if err != nil {
		log.Fatalf("EnsureValidToken: failed to set up jwt validator: %v", err)
	}

	errorHandler := func(w http.ResponseWriter, r *http.Request, err error) {
		log.Printf("EnsureValidToken: token validation failed: %v", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Failed to validate JWT."}`))
	}

	jwtMiddleware := jwtmiddleware.New(
		jwtValidator.ValidateToken,
		jwtmiddleware.WithErrorHandler(errorHandler),
		jwtmiddleware.WithCredentialsOptional(true),
	)

	return func(next http.Handler) http.Handler {
		return jwtMiddleware.CheckJWT(next)
	}
}
