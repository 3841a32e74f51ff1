package main

import (
	"context"
	"edirne-events/auth"
	"edirne-events/metrics"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type contextKey string

const claimsKey contextKey = "adminClaims"

var errAdminRequired = fmt.Errorf("admin view requires a session token: %w", auth.ErrInvalidToken)

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// logRequests logs every request and records it in the HTTP metrics under
// its route template.
func (app *application) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		elapsed := time.Since(start)

		route := "unmatched"
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		metrics.TrackRequest(route, r.Method, rec.status, elapsed)

		app.Log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": elapsed.String(),
		}).Info("request")
	})
}

// recoverPanic turns a handler panic into a 500 response.
func (app *application) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				w.Header().Set("Connection", "close")
				app.Log.WithField("panic", rec).Error("handler panicked")
				app.SendErrorJSON(w, http.StatusInternalServerError, errInternal)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// adminClaims returns the verified claims of the request, if any.
func (app *application) adminClaims(r *http.Request) (*auth.Claims, bool) {
	if claims, ok := r.Context().Value(claimsKey).(*auth.Claims); ok {
		return claims, true
	}
	token := bearerToken(r)
	if token == "" {
		return nil, false
	}
	claims, err := app.Auth.Verify(token)
	if err != nil {
		return nil, false
	}
	return claims, true
}

// requireAdmin rejects requests without a valid admin session token.
func (app *application) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			app.errorResponse(w, r, auth.ErrInvalidToken)
			return
		}
		claims, err := app.Auth.Verify(token)
		if err != nil {
			app.errorResponse(w, r, err)
			return
		}
		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next(w, r.WithContext(ctx))
	}
}
