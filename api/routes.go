package main

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (app *application) routes() http.Handler {
	r := mux.NewRouter()
	r.Use(app.recoverPanic, app.logRequests)
	r.NotFoundHandler = http.HandlerFunc(app.notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(app.methodNotAllowed)

	r.HandleFunc("/healthz", app.healthz).Methods("GET")
	if app.cfg.EnableMetrics {
		r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	}
	r.HandleFunc("/uploads/{name}", app.serveImage).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// events
	api.HandleFunc("/events", app.listEvents).Methods("GET")
	api.HandleFunc("/events", app.requireAdmin(app.createEvent)).Methods("POST")
	api.HandleFunc("/events", app.requireAdmin(app.updateEvent)).Methods("PUT")
	api.HandleFunc("/events", app.requireAdmin(app.deleteEvent)).Methods("DELETE")
	api.HandleFunc("/events/{id:[0-9]+}", app.getEvent).Methods("GET")
	api.HandleFunc("/events/{id:[0-9]+}", app.requireAdmin(app.deleteEvent)).Methods("DELETE")
	api.HandleFunc("/events/{id:[0-9]+}/categories", app.getEventCategories).Methods("GET")

	// venues
	api.HandleFunc("/venues", app.listVenues).Methods("GET")
	api.HandleFunc("/venues", app.requireAdmin(app.createVenue)).Methods("POST")
	api.HandleFunc("/venues", app.requireAdmin(app.updateVenue)).Methods("PUT")
	api.HandleFunc("/venues", app.requireAdmin(app.deleteVenue)).Methods("DELETE")
	api.HandleFunc("/venues/{id:[0-9]+}", app.getVenue).Methods("GET")
	api.HandleFunc("/admin/venues", app.requireAdmin(app.queryVenues)).Methods("GET")

	// categories
	api.HandleFunc("/categories", app.listCategories).Methods("GET")
	api.HandleFunc("/categories", app.requireAdmin(app.createCategory)).Methods("POST")
	api.HandleFunc("/categories", app.requireAdmin(app.updateCategory)).Methods("PUT")
	api.HandleFunc("/categories", app.requireAdmin(app.deleteCategory)).Methods("DELETE")
	api.HandleFunc("/admin/categories/reorder", app.requireAdmin(app.reorderCategories)).Methods("POST")

	api.HandleFunc("/venue-categories", app.listVenueCategories).Methods("GET")
	api.HandleFunc("/venue-categories", app.requireAdmin(app.createVenueCategory)).Methods("POST")
	api.HandleFunc("/venue-categories", app.requireAdmin(app.updateVenueCategory)).Methods("PUT")
	api.HandleFunc("/venue-categories", app.requireAdmin(app.deleteVenueCategory)).Methods("DELETE")
	api.HandleFunc("/admin/venue-categories/reorder", app.requireAdmin(app.reorderVenueCategories)).Methods("POST")

	// suggestions and moderation
	api.HandleFunc("/pending-events", app.submitEvent).Methods("POST")
	api.HandleFunc("/pending-venues", app.submitVenue).Methods("POST")
	api.HandleFunc("/admin/pending-events", app.requireAdmin(app.listPendingEvents)).Methods("GET")
	api.HandleFunc("/admin/pending-events", app.requireAdmin(app.decidePendingEvent)).Methods("POST")
	api.HandleFunc("/admin/pending-events/{id:[0-9]+}", app.requireAdmin(app.reviewPendingEvent)).Methods("PUT")
	api.HandleFunc("/admin/pending-venues", app.requireAdmin(app.listPendingVenues)).Methods("GET")
	api.HandleFunc("/admin/pending-venues", app.requireAdmin(app.decidePendingVenue)).Methods("POST")
	api.HandleFunc("/admin/pending-venues/{id:[0-9]+}", app.requireAdmin(app.reviewPendingVenue)).Methods("PUT")
	api.HandleFunc("/admin/expired-events", app.requireAdmin(app.deactivateExpiredEvents)).Methods("POST")

	// users, feedback, announcements
	api.HandleFunc("/admin/users", app.requireAdmin(app.listUsers)).Methods("GET")
	api.HandleFunc("/admin/users", app.requireAdmin(app.setUserStatus)).Methods("PUT")
	api.HandleFunc("/admin/users", app.requireAdmin(app.deleteUser)).Methods("DELETE")

	api.HandleFunc("/feedback", app.createFeedback).Methods("POST")
	api.HandleFunc("/feedback", app.requireAdmin(app.listFeedback)).Methods("GET")
	api.HandleFunc("/feedback", app.requireAdmin(app.markFeedback)).Methods("PUT")
	api.HandleFunc("/feedback", app.requireAdmin(app.deleteFeedback)).Methods("DELETE")

	api.HandleFunc("/announcements", app.listAnnouncements).Methods("GET")
	api.HandleFunc("/announcements", app.requireAdmin(app.createAnnouncement)).Methods("POST")
	api.HandleFunc("/announcements", app.requireAdmin(app.updateAnnouncement)).Methods("PUT")
	api.HandleFunc("/announcements", app.requireAdmin(app.deleteAnnouncement)).Methods("DELETE")

	// uploads
	api.HandleFunc("/upload", app.uploadImage).Methods("POST")
	api.HandleFunc("/serve-image/{name}", app.serveImage).Methods("GET")

	// admin login
	api.HandleFunc("/admin/send-verification", app.sendVerification).Methods("POST")
	api.HandleFunc("/admin/send-verification", app.verifyCode).Methods("PUT")

	return r
}
