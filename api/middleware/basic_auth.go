package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/kigurumiya/reserve-backend/api/responses"
	"github.com/kigurumiya/reserve-backend/pkg/config"
	pkgerrors "github.com/kigurumiya/reserve-backend/pkg/errors"
	"github.com/kigurumiya/reserve-backend/pkg/logger"
	"github.com/kigurumiya/reserve-backend/pkg/security"
)

// BasicAuth guards the staff endpoints with HTTP basic auth. The configured
// password is an Argon2id hash; plaintext never touches configuration.
func BasicAuth(cfg config.AdminAuthConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !cfg.Enabled {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, password, ok := r.BasicAuth()
			if !ok {
				unauthorized(w, r, logg)
				return
			}
			userMatch := subtle.ConstantTimeCompare([]byte(username), []byte(cfg.Username)) == 1
			passMatch, err := security.VerifyPassword(password, cfg.PasswordHash)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify credentials"))
				return
			}
			if !userMatch || !passMatch {
				if logg != nil {
					logg.Warn(logg.WithField(r.Context(), "username", username), "admin auth rejected")
				}
				unauthorized(w, r, logg)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter, r *http.Request, logg *logger.Logger) {
	w.Header().Set("WWW-Authenticate", `Basic realm="staff", charset="UTF-8"`)
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "credentials required"))
}
