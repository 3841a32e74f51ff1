package main

import (
	"context"
	"net/http"
	"time"
)

func (app *application) healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := app.Repo.Connection().PingContext(ctx); err != nil {
		app.Log.WithError(err).Warn("health check failed")
		app.SendErrorJSON(w, http.StatusServiceUnavailable, errUnavailable)
		return
	}
	app.SendSuccessJSON(w, http.StatusOK, map[string]string{"database": "ok"})
}

func (app *application) notFound(w http.ResponseWriter, r *http.Request) {
	app.SendErrorJSON(w, http.StatusNotFound, errRouteNotFound)
}

func (app *application) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	app.SendErrorJSON(w, http.StatusMethodNotAllowed, errMethodNotAllowed)
}
