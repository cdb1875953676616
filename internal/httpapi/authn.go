package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"staffhub.org/internal/auth"
)

const (
	authHeader = "Authorization"
	bearer     = "Bearer "
)

// withAuth extracts the bearer credential and attaches it to the request
// context, along with the decoded principal when the token verifies. It
// never rejects on its own: guarded operations deny through the policy guard,
// and unguarded operations are served regardless of credential state.
func (a *API) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := extractBearerToken(r.Header.Get(authHeader))
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx := auth.ContextWithToken(r.Context(), token)
		if claims, err := a.codec.Decode(token); err == nil {
			ctx = auth.ContextWithPrincipal(ctx, auth.Principal{
				Username: claims.Subject,
				Roles:    claims.Roles,
			})
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func extractBearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", errors.New("missing bearer token")
	}
	if !strings.HasPrefix(strings.ToLower(header), strings.ToLower(bearer)) {
		return "", errors.New("invalid authorization scheme")
	}
	token := strings.TrimSpace(header[len(bearer):])
	if token == "" {
		return "", errors.New("missing bearer token")
	}
	return token, nil
}
