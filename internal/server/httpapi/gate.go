package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/server/services"
)

// Authenticator is the part of the session service the gate needs.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*services.AuthResult, error)
}

type contextKey string

const usernameContextKey = contextKey("username")

// NewGate returns middleware that admits a request only with a usable
// bearer access token. The admitted username is put in the request context.
// When the token had expired and was renewed, the new token is sent back in
// the X-New-Access-Token header before the wrapped handler writes anything.
func NewGate(auth Authenticator) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r.Header.Get(common.AuthorizationHeaderName))

			res, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				writeError(w, err, "authentication failed")
				return
			}

			if res.RenewedAccessToken != "" {
				w.Header().Set(common.NewAccessTokenHeaderName, res.RenewedAccessToken)
			}
			if info := requestInfoFrom(r.Context()); info != nil {
				info.username = res.Username
			}

			next.ServeHTTP(w, r.WithContext(ContextWithUsername(r.Context(), res.Username)))
		})
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme+" ", common.BearerPrefix) {
		return ""
	}
	return strings.TrimSpace(token)
}

// UsernameFromContext returns the handle admitted by the gate.
func UsernameFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(usernameContextKey).(string)
	return username, ok && username != ""
}

func ContextWithUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, usernameContextKey, username)
}
