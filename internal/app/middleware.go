package app

import (
	"net/http"
	"strings"

	"github.com/finpal/finpal/internal/rest"
	"github.com/finpal/finpal/pkg/user"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const userApiPrefix = "/api/v1/user"

// SetupMiddleware wires all HTTP middlewares for the application.
func SetupMiddleware(r *mux.Router) {
	r.Use(userFromHeader)
}

// userFromHeader propagates the X-User-Id header into the request context.
// Requests to the user API without the header are rejected.
func userFromHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		u, ok := user.FromHeader(req.Header.Get(user.HeaderUserId))
		if !ok {
			if strings.HasPrefix(req.URL.Path, userApiPrefix) {
				log.Debugf("rejecting %s %s without user", req.Method, req.URL.Path)
				rest.WriteError(w, http.StatusForbidden, "User not found", user.HeaderUserId+" header is required")
				return
			}
			next.ServeHTTP(w, req)
			return
		}
		log.Tracef("user %s: %s %s", u.Id, req.Method, req.URL.Path)
		next.ServeHTTP(w, req.WithContext(user.WithUser(req.Context(), u)))
	})
}
