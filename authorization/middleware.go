package authorization

import (
	"encoding/json"
	"github.com/sirupsen/logrus"
	"net/http"
	"roommate_service/domain"
	"roommate_service/errors"
	"strings"
)

// Authenticate resolves the bearer token into an Identity on the request
// context. Requests without a token pass through anonymously; requests with a
// malformed or invalid token are rejected.
func Authenticate(verifier domain.IdentityVerifier, logger *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			bearer := r.Header.Get("Authorization")
			if bearer == "" {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := strings.CutPrefix(bearer, "Bearer ")
			if !ok || token == "" {
				unauthorized(w, errors.InvalidTokenError)
				return
			}

			identity, err := verifier.Verify(r.Context(), token)
			if err != nil {
				logger.WithError(err).WithField("path", r.URL.Path).Warn("token rejected")
				unauthorized(w, errors.InvalidTokenError)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(errors.ValidationError{Message: message})
}
