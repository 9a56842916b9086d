// Package auth gates requests on bearer-token introspection against the
// external identity service.
//
// Per-request state machine: extract bearer token → introspect (through a
// process-local TTL cache) → check active flag → check required scope.
// Negative verdicts are cached too, so repeated calls with a revoked token
// cost at most one upstream round-trip per TTL.
package auth

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/AlexFilippov-it/scanrole-api/internal/cache"
	"github.com/AlexFilippov-it/scanrole-api/internal/httpapi"
	"github.com/AlexFilippov-it/scanrole-api/internal/metrics"
)

// ScopeRoleExplorer is the scope every data endpoint requires.
const ScopeRoleExplorer = "read:role_explorer"

const (
	introspectTTL  = 60 * time.Second
	requestTimeout = 5 * time.Second
	secretHeader   = "X-ScanRole-Introspect-Secret"
)

// Introspection is the identity service's verdict on a token. Fields other
// than Active and Scopes pass through in Raw and are not interpreted.
type Introspection struct {
	Active bool
	Scopes []string
	Raw    json.RawMessage
}

// HasScope reports whether scope was granted.
func (i Introspection) HasScope(scope string) bool {
	for _, s := range i.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// Gate performs cached token introspection and scope enforcement.
type Gate struct {
	url    string
	secret string
	client *http.Client
	cache  *cache.Cache[Introspection]
	log    zerolog.Logger
}

// NewGate builds a Gate. url and secret may be empty; introspection then
// fails with SERVER_ERROR without any network call.
func NewGate(url, secret string, logger zerolog.Logger) *Gate {
	return &Gate{
		url:    url,
		secret: secret,
		client: &http.Client{Timeout: requestTimeout},
		cache:  cache.New[Introspection](),
		log:    logger.With().Str("component", "auth").Logger(),
	}
}

// cacheKey is a truncated token plus a short hash of the full token. Not
// security-critical: the full token was already required to reach this
// point, the truncation only bounds memory and keeps secrets out of keys.
func cacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	prefix := token
	if len(prefix) > 12 {
		prefix = prefix[:12]
	}
	return "token:" + prefix + ":" + hex.EncodeToString(sum[:])[:16]
}

// Introspect resolves the token through the cache or the identity service.
// Every failure is returned as a *httpapi.StatusError.
func (g *Gate) Introspect(ctx context.Context, token string) (Introspection, *httpapi.StatusError) {
	key := cacheKey(token)
	if cached, ok := g.cache.Get(key); ok {
		metrics.IntrospectionCacheHits.Inc()
		return cached, nil
	}
	metrics.IntrospectionCacheMisses.Inc()

	if g.url == "" || g.secret == "" {
		return Introspection{}, &httpapi.StatusError{
			Status: http.StatusInternalServerError, Code: httpapi.CodeServerError, Message: "Introspection not configured",
		}
	}

	body, _ := json.Marshal(map[string]string{"token": token})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return Introspection{}, &httpapi.StatusError{
			Status: http.StatusInternalServerError, Code: httpapi.CodeServerError, Message: "Introspection failed",
		}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(secretHeader, g.secret)

	resp, err := g.client.Do(req)
	if err != nil {
		g.log.Error().Err(err).Msg("introspection request failed")
		return Introspection{}, &httpapi.StatusError{
			Status: http.StatusInternalServerError, Code: httpapi.CodeServerError, Message: "Introspection failed",
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		g.log.Error().Int("status", resp.StatusCode).Msg("introspection backend error")
		return Introspection{}, &httpapi.StatusError{
			Status: http.StatusInternalServerError, Code: httpapi.CodeServerError, Message: "Introspection failed",
		}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Introspection{}, &httpapi.StatusError{
			Status: http.StatusInternalServerError, Code: httpapi.CodeServerError, Message: "Introspection failed",
		}
	}

	// Any non-5xx body is parsed and cached as-is, negative verdicts
	// included. A payload with missing or unexpected fields resolves to
	// inactive/no scopes rather than an error.
	var parsed struct {
		Active bool     `json:"active"`
		Scopes []string `json:"scopes"`
	}
	_ = json.Unmarshal(raw, &parsed)

	result := Introspection{Active: parsed.Active, Scopes: parsed.Scopes, Raw: raw}
	g.cache.Set(key, result, introspectTTL)
	return result, nil
}

// RequireScope is the middleware enforcing a bearer token carrying scope.
func (g *Gate) RequireScope(scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, serr := bearerToken(r.Header.Get("Authorization"))
			if serr != nil {
				httpapi.WriteStatusError(w, serr)
				return
			}

			result, serr := g.Introspect(r.Context(), token)
			if serr != nil {
				httpapi.WriteStatusError(w, serr)
				return
			}

			if !result.Active {
				httpapi.WriteError(w, http.StatusUnauthorized, httpapi.CodeUnauthorized, "Invalid or expired token")
				return
			}
			if !result.HasScope(scope) {
				httpapi.WriteError(w, http.StatusForbidden, httpapi.CodeForbidden, "Missing required scope")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(authorization string) (string, *httpapi.StatusError) {
	if authorization == "" {
		return "", &httpapi.StatusError{
			Status: http.StatusUnauthorized, Code: httpapi.CodeUnauthorized, Message: "Missing token",
		}
	}
	parts := strings.Fields(authorization)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", &httpapi.StatusError{
			Status: http.StatusUnauthorized, Code: httpapi.CodeUnauthorized, Message: "Invalid token format",
		}
	}
	return parts[1], nil
}
