package api

import (
	"net/http"
	"strings"

	"github.com/coreybb/menuorders/auth"
	"github.com/coreybb/menuorders/webutil"
)

// TokenVerifier resolves a bearer token to its subject.
type TokenVerifier interface {
	VerifyToken(token string) (string, error)
}

// RequireBearer rejects requests without a valid bearer token before they
// reach next. The verified username is stored on the request context.
func RequireBearer(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				webutil.WriteError(w, r, webutil.ErrUnauthorized("Not authenticated"))
				return
			}

			subject, err := verifier.VerifyToken(token)
			if err != nil {
				webutil.WriteError(w, r, webutil.ErrUnauthorizedWrap("Invalid auth credentials", err))
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithSubject(r.Context(), subject)))
		})
	}
}

// bearerToken extracts the credentials of an "Authorization: Bearer <token>"
// header. The scheme is matched case-insensitively.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get(webutil.HeaderAuthorization)
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, webutil.SchemeBearer) {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
