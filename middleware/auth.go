package middleware

import (
	"context"
	"net/http"

	"trameserve/internal/auth"
)

type contextKey string

// AccessNameKey carries the authenticated access name through the
// request context once RequireSession has admitted the request.
const AccessNameKey contextKey = "accessName"

// SessionCookie is the cookie carrying the signed session token.
const SessionCookie = "session_token"

// RequireSession gates the admin screens. A missing cookie, a token that
// fails verification, or a token whose subject is not the access name in
// the path all soft-fail the same way: a 303 back to that account's
// login. Tokens are never transferable between accounts, even when
// individually valid.
func RequireSession(codec *auth.Codec) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			accessName := r.PathValue("access_name")

			cookie, err := r.Cookie(SessionCookie)
			if err != nil {
				redirectToLogin(w, r, accessName)
				return
			}

			subject, ok := codec.Verify(cookie.Value)
			if !ok || subject != accessName {
				redirectToLogin(w, r, accessName)
				return
			}

			// Protected content must never be retained by any cache,
			// shared or local.
			NoStore(w)

			ctx := context.WithValue(r.Context(), AccessNameKey, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// NoStore sets cache-control directives preventing any cache from
// retaining the response.
func NoStore(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
}

func redirectToLogin(w http.ResponseWriter, r *http.Request, accessName string) {
	http.Redirect(w, r, "/admin/"+accessName, http.StatusSeeOther)
}
