package chi

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// publicPaths stay reachable without a key so probes and scrapers keep working.
var publicPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// BearerAuthMiddleware guards the search and refresh routes with static API keys.
// No non-empty keys means auth is off.
func BearerAuthMiddleware(apiKeys []string) func(http.Handler) http.Handler {
	keys := make([][]byte, 0, len(apiKeys))
	for _, k := range apiKeys {
		if k != "" {
			keys = append(keys, []byte(k))
		}
	}

	return func(next http.Handler) http.Handler {
		if len(keys) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := publicPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			token, msg := bearerToken(r.Header.Get("Authorization"))
			if msg == "" && !knownKey(keys, token) {
				msg = "invalid api key"
			}
			if msg != "" {
				w.Header().Set("WWW-Authenticate", `Bearer realm="catalogsearch"`)
				writeError(w, http.StatusUnauthorized, ErrorCodeUnauthorized, msg)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken extracts the token from an Authorization header value.
// The scheme is matched case-insensitively. A non-empty msg describes why
// the header was rejected.
func bearerToken(header string) (token, msg string) {
	if header == "" {
		return "", "missing authorization header"
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", "authorization header must use Bearer scheme"
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", "empty bearer token"
	}
	return token, ""
}

// knownKey compares against every key so timing does not reveal which one matched.
func knownKey(keys [][]byte, token string) bool {
	t := []byte(token)
	found := 0
	for _, k := range keys {
		found |= subtle.ConstantTimeCompare(k, t)
	}
	return found == 1
}
