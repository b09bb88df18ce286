package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/justestif/go-spotify-ai-curator/internal/auth"
	"github.com/justestif/go-spotify-ai-curator/internal/logging"
	"github.com/justestif/go-spotify-ai-curator/internal/metrics"
)

type ctxKey int

const sessionKey ctxKey = iota

// requireSession loads the capsule, renews stale credentials and stores the
// session in the request context. Requests without a usable session stop
// here with 401.
func (h *Handlers) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := h.store.Load(r)
		if sess == nil {
			writeError(w, r, auth.ErrUnauthenticated)
			return
		}

		fresh, err := h.store.EnsureFresh(r.Context(), w, *sess)
		if err != nil {
			writeError(w, r, err)
			return
		}

		l := logging.Ctx(r.Context()).With().Str("user_id", fresh.User.ID).Logger()
		ctx := context.WithValue(l.WithContext(r.Context()), sessionKey, fresh)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// sessionFrom returns the session stored by requireSession.
func sessionFrom(ctx context.Context) auth.Session {
	sess, _ := ctx.Value(sessionKey).(auth.Session)
	return sess
}

// observe records request count and latency by route pattern.
func observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		var route string
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			route = rctx.RoutePattern()
		}
		metrics.ObserveHTTP(r.Method, route, status, time.Since(start))
	})
}
