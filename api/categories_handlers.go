package main

import (
	"edirne-events/data/models"
	"net/http"
)

type reorderRequest struct {
	CategoryOrders []models.SortOrder `json:"categoryOrders" validate:"required,min=1,dive"`
}

func (app *application) listCategories(w http.ResponseWriter, r *http.Request) {
	all, err := app.adminView(r, "all")
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	cats, err := app.Repo.ListCategories(r.Context(), all)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	app.SendSuccessJSON(w, http.StatusOK, cats)
}

func (app *application) listVenueCategories(w http.ResponseWriter, r *http.Request) {
	all, err := app.adminView(r, "all")
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	cats, err := app.Repo.ListVenueCategories(r.Context(), all)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	app.SendSuccessJSON(w, http.StatusOK, cats, "categories")
}

func (app *application) createCategory(w http.ResponseWriter, r *http.Request) {
	app.createModel(w, r, &models.Category{IsActive: true})
}

func (app *application) updateCategory(w http.ResponseWriter, r *http.Request) {
	app.updateModel(w, r, &models.Category{})
}

func (app *application) deleteCategory(w http.ResponseWriter, r *http.Request) {
	app.deleteModel(w, r, models.Category{}, "id")
}

func (app *application) createVenueCategory(w http.ResponseWriter, r *http.Request) {
	app.createModel(w, r, &models.VenueCategory{IsActive: true})
}

func (app *application) updateVenueCategory(w http.ResponseWriter, r *http.Request) {
	app.updateModel(w, r, &models.VenueCategory{})
}

func (app *application) deleteVenueCategory(w http.ResponseWriter, r *http.Request) {
	app.deleteModel(w, r, models.VenueCategory{}, "id")
}

func (app *application) reorderCategories(w http.ResponseWriter, r *http.Request) {
	app.reorder(w, r, models.Category{})
}

func (app *application) reorderVenueCategories(w http.ResponseWriter, r *http.Request) {
	app.reorder(w, r, models.VenueCategory{})
}

func (app *application) reorder(w http.ResponseWriter, r *http.Request, m models.Model) {
	var req reorderRequest
	if err := app.ReadJSON(w, r, &req, true); err != nil {
		app.errorResponse(w, r, err)
		return
	}
	if err := app.Repo.Reorder(r.Context(), m, req.CategoryOrders); err != nil {
		app.errorResponse(w, r, err)
		return
	}
	app.SendSuccessJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Sort order updated",
		"count":   len(req.CategoryOrders),
	})
}
