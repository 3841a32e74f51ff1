package main

import (
	"edirne-events/data/models"
	"edirne-events/data/repository"
	"net/http"

	"github.com/gorilla/mux"
)

func (app *application) listVenues(w http.ResponseWriter, r *http.Request) {
	var f repository.VenueFilter
	if c := r.URL.Query().Get("categoryId"); c != "" && c != "all" {
		id, err := parseID(c)
		if err != nil {
			app.errorResponse(w, r, err)
			return
		}
		f.CategoryID = id
	}

	venues, err := app.Repo.ListVenues(r.Context(), f)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	app.SendSuccessJSON(w, http.StatusOK, venues)
}

func (app *application) queryVenues(w http.ResponseWriter, r *http.Request) {
	venues, err := app.Repo.QueryVenues(r.Context(), queryParams(r.URL.Query()))
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	app.SendSuccessJSON(w, http.StatusOK, venues)
}

func (app *application) getVenue(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(mux.Vars(r)["id"])
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	venue, err := app.Repo.GetVenue(r.Context(), id)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	app.SendSuccessJSON(w, http.StatusOK, venue)
}

func (app *application) createVenue(w http.ResponseWriter, r *http.Request) {
	edits, err := app.readEdits(w, r)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	v := models.Venue{IsActive: true}
	if err := applyAndValidate(&v, edits); err != nil {
		app.errorResponse(w, r, err)
		return
	}

	id, err := app.Repo.CreateVenue(r.Context(), v)
	if err != nil {
		app.errorResponse(w, r, unknownCategory(err))
		return
	}
	created, err := app.Repo.GetVenue(r.Context(), id)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	app.SendSuccessJSON(w, http.StatusCreated, created)
}

func (app *application) updateVenue(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	edits, err := app.readEdits(w, r)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	if active, ok := isToggle(edits); ok {
		app.toggleActive(w, r, models.Venue{}, id, active)
		return
	}

	v, err := app.Repo.GetVenue(r.Context(), id)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	if err := applyAndValidate(&v, edits); err != nil {
		app.errorResponse(w, r, err)
		return
	}
	if err := app.Repo.Update(r.Context(), v); err != nil {
		app.errorResponse(w, r, unknownCategory(err))
		return
	}
	app.SendSuccessJSON(w, http.StatusOK, v)
}

func (app *application) deleteVenue(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	if err := app.Repo.DeleteVenue(r.Context(), id); err != nil {
		app.errorResponse(w, r, err)
		return
	}
	app.SendSuccessJSON(w, http.StatusOK, map[string]interface{}{"id": id, "message": "Venue deleted"})
}
