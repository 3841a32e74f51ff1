package main

import (
	"edirne-events/data/models"
	"edirne-events/moderation"
	"net/http"

	"github.com/gorilla/mux"
)

type eventDecision struct {
	EventID int64  `json:"eventId" validate:"required,min=1"`
	Action  string `json:"action" validate:"required"`
}

type venueDecision struct {
	VenueID int64  `json:"venueId" validate:"required,min=1"`
	Action  string `json:"action" validate:"required"`
}

func (app *application) submitEvent(w http.ResponseWriter, r *http.Request) {
	var p models.PendingEvent
	if err := app.ReadJSON(w, r, &p, false); err != nil {
		app.errorResponse(w, r, err)
		return
	}
	created, err := app.Moderator.SubmitEvent(r.Context(), p)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	app.SendSuccessJSON(w, http.StatusCreated, created)
}

func (app *application) submitVenue(w http.ResponseWriter, r *http.Request) {
	var p models.PendingVenue
	if err := app.ReadJSON(w, r, &p, false); err != nil {
		app.errorResponse(w, r, err)
		return
	}
	created, err := app.Moderator.SubmitVenue(r.Context(), p)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	app.SendSuccessJSON(w, http.StatusCreated, created)
}

func (app *application) listPendingEvents(w http.ResponseWriter, r *http.Request) {
	pending, err := app.Moderator.ListPendingEvents(r.Context())
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	app.SendSuccessJSON(w, http.StatusOK, pending)
}

func (app *application) listPendingVenues(w http.ResponseWriter, r *http.Request) {
	pending, err := app.Moderator.ListPendingVenues(r.Context())
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	app.SendSuccessJSON(w, http.StatusOK, pending)
}

func (app *application) decidePendingEvent(w http.ResponseWriter, r *http.Request) {
	var req eventDecision
	if err := app.ReadJSON(w, r, &req, true); err != nil {
		app.errorResponse(w, r, err)
		return
	}
	app.decide(w, r, moderation.KindEvent, req.EventID, req.Action)
}

func (app *application) decidePendingVenue(w http.ResponseWriter, r *http.Request) {
	var req venueDecision
	if err := app.ReadJSON(w, r, &req, true); err != nil {
		app.errorResponse(w, r, err)
		return
	}
	app.decide(w, r, moderation.KindVenue, req.VenueID, req.Action)
}

func (app *application) decide(w http.ResponseWriter, r *http.Request, kind moderation.Kind, id int64, action string) {
	res, err := app.Moderator.Decide(r.Context(), kind, id, moderation.Action(action))
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	app.SendSuccessJSON(w, http.StatusOK, res)
}

func (app *application) reviewPendingEvent(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(mux.Vars(r)["id"])
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	edits, err := app.readEdits(w, r)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	updated, err := app.Moderator.ReviewEvent(r.Context(), id, edits)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	app.SendSuccessJSON(w, http.StatusOK, updated)
}

func (app *application) reviewPendingVenue(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(mux.Vars(r)["id"])
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	edits, err := app.readEdits(w, r)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	updated, err := app.Moderator.ReviewVenue(r.Context(), id, edits)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	app.SendSuccessJSON(w, http.StatusOK, updated)
}
