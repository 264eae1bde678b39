package middlewares

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/felixge/httpsnoop"
	"github.com/mbolis/survey-admin/log"
)

// Gate is the part of the session the guard consults.
type Gate interface {
	EnsureBootstrapped(ctx context.Context)
	IsAuthed() bool
}

type Paths struct {
	Login   string
	Landing string
}

// Guard bootstraps the session on first use, then sends anonymous users to
// the login page and authenticated users away from it.
func Guard(gate Gate, paths Paths) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gate.EnsureBootstrapped(r.Context())

			isLogin := strings.TrimSuffix(r.URL.Path, "/") == paths.Login
			authed := gate.IsAuthed()

			switch {
			case !isLogin && !authed:
				location := paths.Login
				if r.Method == http.MethodGet {
					location += "?goto=" + url.QueryEscape(r.URL.RequestURI())
				}
				log.Debugf("guard: anonymous %s %s -> login", r.Method, r.URL.Path)
				w.Header().Set("location", location)
				w.WriteHeader(http.StatusTemporaryRedirect)
				return

			case isLogin && authed && r.Method == http.MethodGet:
				w.Header().Set("location", paths.Landing)
				w.WriteHeader(http.StatusTemporaryRedirect)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequestLog logs one line per request once the response is written.
func RequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := httpsnoop.CaptureMetrics(next, w, r)
		log.WithFields(log.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   m.Code,
			"bytes":    m.Written,
			"duration": m.Duration,
		}).Info("request")
	})
}
