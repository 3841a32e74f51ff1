package main

import (
	"edirne-events/data/models"
	"net/http"
)

type feedbackRead struct {
	IsRead *bool `json:"isRead" validate:"required"`
}

type userStatus struct {
	UserID   int64 `json:"userId" validate:"required,min=1"`
	IsActive *bool `json:"isActive" validate:"required"`
}

func (app *application) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := app.queryModels(r.Context(), models.User{}, r.URL.Query())
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	app.SendSuccessJSON(w, http.StatusOK, users)
}

// setUserStatus activates or deactivates a user account.
func (app *application) setUserStatus(w http.ResponseWriter, r *http.Request) {
	var req userStatus
	if err := app.ReadJSON(w, r, &req, true); err != nil {
		app.errorResponse(w, r, err)
		return
	}
	if err := app.Repo.SetActive(r.Context(), models.User{}, req.UserID, *req.IsActive); err != nil {
		app.errorResponse(w, r, err)
		return
	}
	app.Log.WithField("userId", req.UserID).WithField("isActive", *req.IsActive).Info("user status changed")
	app.SendSuccessJSON(w, http.StatusOK, map[string]interface{}{"userId": req.UserID, "isActive": *req.IsActive})
}

func (app *application) deleteUser(w http.ResponseWriter, r *http.Request) {
	app.deleteModel(w, r, models.User{}, "userId")
}

func (app *application) createFeedback(w http.ResponseWriter, r *http.Request) {
	var f models.Feedback
	if err := app.ReadJSON(w, r, &f, true); err != nil {
		app.errorResponse(w, r, err)
		return
	}
	f.ID, f.IsRead = 0, false

	id, err := app.Repo.Create(r.Context(), f)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	created, err := app.Repo.GetModelByID(r.Context(), &models.Feedback{}, id)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	app.SendSuccessJSON(w, http.StatusCreated, created)
}

func (app *application) listFeedback(w http.ResponseWriter, r *http.Request) {
	feedback, err := app.queryModels(r.Context(), models.Feedback{}, r.URL.Query())
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	app.SendSuccessJSON(w, http.StatusOK, feedback)
}

func (app *application) markFeedback(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	var req feedbackRead
	if err := app.ReadJSON(w, r, &req, true); err != nil {
		app.errorResponse(w, r, err)
		return
	}
	if err := app.Repo.MarkFeedbackRead(r.Context(), id, *req.IsRead); err != nil {
		app.errorResponse(w, r, err)
		return
	}
	app.SendSuccessJSON(w, http.StatusOK, map[string]interface{}{"id": id, "isRead": *req.IsRead})
}

func (app *application) deleteFeedback(w http.ResponseWriter, r *http.Request) {
	app.deleteModel(w, r, models.Feedback{}, "id")
}

// listAnnouncements serves the currently visible announcements, or all of
// them for admin=true with a session token.
func (app *application) listAnnouncements(w http.ResponseWriter, r *http.Request) {
	all, err := app.adminView(r, "admin")
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	list, err := app.Repo.ListAnnouncements(r.Context(), all, app.now())
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	app.SendSuccessJSON(w, http.StatusOK, list)
}

func (app *application) createAnnouncement(w http.ResponseWriter, r *http.Request) {
	app.createModel(w, r, &models.Announcement{IsActive: true})
}

func (app *application) updateAnnouncement(w http.ResponseWriter, r *http.Request) {
	app.updateModel(w, r, &models.Announcement{})
}

func (app *application) deleteAnnouncement(w http.ResponseWriter, r *http.Request) {
	app.deleteModel(w, r, models.Announcement{}, "id")
}
