package casbinAuthorization

import (
	"encoding/json"
	"github.com/casbin/casbin"
	"github.com/sirupsen/logrus"
	"net/http"
	"roommate_service/authorization"
	"roommate_service/errors"
)

func NewEnforcer(modelPath, policyPath string) (*casbin.Enforcer, error) {
	return casbin.NewEnforcerSafe(modelPath, policyPath)
}

// CasbinMiddleware authorizes the request path and method for the role of the
// identity that Authenticate placed on the context.
func CasbinMiddleware(e *casbin.Enforcer, logger *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			identity := authorization.IdentityFromContext(r.Context())
			role := identity.Role()

			res, err := e.EnforceSafe(role, r.URL.Path, r.Method)
			if err != nil {
				logger.WithError(err).Error("enforce error")
				writeError(w, http.StatusInternalServerError, "authorization failed")
				return
			}

			if res {
				next.ServeHTTP(w, r)
				return
			}

			logger.WithFields(logrus.Fields{"role": role, "path": r.URL.Path, "method": r.Method}).Info("request denied")
			if identity == nil {
				writeError(w, http.StatusUnauthorized, errors.UnauthenticatedError)
				return
			}
			writeError(w, http.StatusForbidden, "forbidden")
		}

		return http.HandlerFunc(fn)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errors.ValidationError{Message: message})
}
