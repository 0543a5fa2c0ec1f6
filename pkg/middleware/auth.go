package middleware

import (
	"net/http"
	"strings"

	"lodging/pkg/auth"
	httputil "lodging/pkg/http"
	"lodging/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type TokenParser interface {
	Parse(token string) (*auth.Principal, error)
}

// Authenticate attaches the principal of a valid bearer token to the request
// context. Requests without an Authorization header pass through anonymous;
// a malformed or expired token is rejected outright.
func Authenticate(tokens TokenParser, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				writeJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid authorization header")
				return
			}

			principal, err := tokens.Parse(token)
			if err != nil {
				log.Warn("Rejected bearer token",
					"request_id", RequestIDFromContext(r.Context()),
					"path", r.URL.Path,
					"error", err,
				)
				writeJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), principal)))
		})
	}
}

// RequireRole guards a route. With no roles any signed-in user passes.
func RequireRole(roles ...string) func(httprouter.Handle) httprouter.Handle {
	return func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			if _, err := auth.RequireRole(r.Context(), roles...); err != nil {
				httputil.WriteError(w, err)
				return
			}
			next(w, r, ps)
		}
	}
}

func RequireUser(next httprouter.Handle) httprouter.Handle {
	return RequireRole()(next)
}
