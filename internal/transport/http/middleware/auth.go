package middleware

import (
	"net/http"
	"strings"

	"pontosync/internal/auth"
)

const TriggerKeyActor = "trigger-key"

// Auth resolves the caller from a bearer token or, when triggerKeyHash is
// set, from the X-Api-Key header. Unauthenticated requests pass through;
// RequirePermission rejects them where needed.
func Auth(secret, triggerKeyHash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if principal, ok := fromBearer(r, secret); ok {
				next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
				return
			}
			if key := r.Header.Get("X-Api-Key"); key != "" && triggerKeyHash != "" {
				if auth.CheckKey(triggerKeyHash, key) == nil {
					principal := auth.Principal{Actor: TriggerKeyActor, Role: auth.RoleIntegration}
					next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func fromBearer(r *http.Request, secret string) (auth.Principal, bool) {
	if secret == "" {
		return auth.Principal{}, false
	}
	parts := strings.Split(r.Header.Get("Authorization"), " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return auth.Principal{}, false
	}
	claims, err := auth.ParseToken(secret, parts[1])
	if err != nil {
		return auth.Principal{}, false
	}
	return auth.Principal{Actor: claims.Subject, Role: claims.Role}, true
}
