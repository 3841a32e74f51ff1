package main

import (
	"edirne-events/data/models"
	"edirne-events/data/repository"
	"net/http"

	"github.com/gorilla/mux"
)

// listEvents serves the public listing, or the filter grammar over all events
// when admin=true is sent with a session token.
func (app *application) listEvents(w http.ResponseWriter, r *http.Request) {
	admin, err := app.adminView(r, "admin")
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	if admin {
		events, err := app.Repo.QueryEvents(r.Context(), queryParams(r.URL.Query()))
		if err != nil {
			app.errorResponse(w, r, err)
			return
		}
		app.SendSuccessJSON(w, http.StatusOK, events)
		return
	}

	q := r.URL.Query()
	f := repository.EventFilter{
		Featured: q.Get("featured") == "true",
		Upcoming: q.Get("upcoming") == "true",
		Search:   q.Get("search"),
		Today:    app.today(),
	}
	if c := q.Get("categoryId"); c != "" && c != "all" {
		if f.CategoryID, err = parseID(c); err != nil {
			app.errorResponse(w, r, err)
			return
		}
	}

	events, err := app.Repo.ListEvents(r.Context(), f)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	app.SendSuccessJSON(w, http.StatusOK, events)
}

func (app *application) getEvent(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(mux.Vars(r)["id"])
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	event, err := app.Repo.GetEvent(r.Context(), id)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	app.SendSuccessJSON(w, http.StatusOK, event)
}

func (app *application) getEventCategories(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(mux.Vars(r)["id"])
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	cats, err := app.Repo.EventCategories(r.Context(), id)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	app.SendSuccessJSON(w, http.StatusOK, cats)
}

func (app *application) createEvent(w http.ResponseWriter, r *http.Request) {
	edits, err := app.readEdits(w, r)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	e := models.Event{IsActive: true}
	if err := applyAndValidate(&e, edits); err != nil {
		app.errorResponse(w, r, err)
		return
	}
	ids, _, err := categoryIDs(edits)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	set := models.NewCategorySet(e.CategoryID, ids)
	if err := app.checkCategorySet(r.Context(), set); err != nil {
		app.errorResponse(w, r, err)
		return
	}

	id, err := app.Repo.CreateEvent(r.Context(), e, set)
	if err != nil {
		app.errorResponse(w, r, unknownCategory(err))
		return
	}
	created, err := app.Repo.GetEvent(r.Context(), id)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	app.SendSuccessJSON(w, http.StatusCreated, created)
}

// updateEvent toggles the active flag when that is all the body holds, and
// otherwise applies a full update including the category set.
func (app *application) updateEvent(w http.ResponseWriter, r *http.Request) {
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
		app.toggleActive(w, r, models.Event{}, id, active)
		return
	}

	e, err := app.Repo.GetEvent(r.Context(), id)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	if err := applyAndValidate(&e, edits); err != nil {
		app.errorResponse(w, r, err)
		return
	}

	set := e.CategorySet()
	ids, listed, err := categoryIDs(edits)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	if _, single := edits["categoryId"]; listed || single {
		set = models.NewCategorySet(e.CategoryID, ids)
	}
	if err := app.checkCategorySet(r.Context(), set); err != nil {
		app.errorResponse(w, r, err)
		return
	}

	if err := app.Repo.UpdateEvent(r.Context(), e, set); err != nil {
		app.errorResponse(w, r, unknownCategory(err))
		return
	}
	updated, err := app.Repo.GetEvent(r.Context(), id)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	app.SendSuccessJSON(w, http.StatusOK, updated)
}

func (app *application) deleteEvent(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	if err := app.Repo.DeleteEvent(r.Context(), id); err != nil {
		app.errorResponse(w, r, err)
		return
	}
	app.SendSuccessJSON(w, http.StatusOK, map[string]interface{}{"id": id, "message": "Event deleted"})
}

func (app *application) deactivateExpiredEvents(w http.ResponseWriter, r *http.Request) {
	n, err := app.Repo.DeactivateExpiredEvents(r.Context(), app.today())
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	app.Log.WithField("count", n).Info("expired events deactivated")
	app.SendSuccessJSON(w, http.StatusOK, map[string]interface{}{"deactivatedCount": n})
}
