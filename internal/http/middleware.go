package http

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// SessionHeader carries the client's session id. The middleware issues a
// fresh id when the header is absent or unknown and always echoes the
// effective id back.
const SessionHeader = "X-Session-ID"

// SessionMiddleware resolves the per-client state and puts it on the
// request context.
func SessionMiddleware(registry *Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(SessionHeader)

			state, ok := registry.Get(id)
			if !ok {
				id, state = registry.Create()
			}

			w.Header().Set(SessionHeader, id)
			ctx := context.WithValue(r.Context(), "client_state", state)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestIDMiddleware adds a unique request ID to each request
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = fmt.Sprintf("req-%d", time.Now().UnixNano())
		}

		ctx := context.WithValue(r.Context(), "request_id", requestID)
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func getClientState(ctx context.Context) *ClientState {
	if state, ok := ctx.Value("client_state").(*ClientState); ok {
		return state
	}
	return nil
}
