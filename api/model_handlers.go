package main

import (
	"context"
	"edirne-events/data/models"
	"edirne-events/data/repository"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// readEdits decodes the body as a JSON object.
func (app *application) readEdits(w http.ResponseWriter, r *http.Request) (map[string]interface{}, error) {
	var edits map[string]interface{}
	if err := app.ReadJSON(w, r, &edits, false); err != nil {
		return nil, err
	}
	if edits == nil {
		return nil, badRequest(errors.New("body must be a JSON object"))
	}
	return edits, nil
}

// applyAndValidate overlays edits onto m, a pointer to a model, and validates
// the result.
func applyAndValidate(m models.Model, edits map[string]interface{}) error {
	if _, err := models.ApplyEdits(m, edits); err != nil {
		return badRequest(err)
	}
	if err := models.ValidateModel(m); err != nil {
		return badRequest(err)
	}
	return nil
}

// isToggle reports whether edits only flips the active flag.
func isToggle(edits map[string]interface{}) (bool, bool) {
	if len(edits) != 1 {
		return false, false
	}
	active, ok := edits["isActive"].(bool)
	return active, ok
}

// createModel inserts the body over the defaults carried by m and responds
// with the stored row.
func (app *application) createModel(w http.ResponseWriter, r *http.Request, m models.Model) {
	edits, err := app.readEdits(w, r)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	if err := applyAndValidate(m, edits); err != nil {
		app.errorResponse(w, r, err)
		return
	}

	id, err := app.Repo.Create(r.Context(), m)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	created, err := app.Repo.GetModelByID(r.Context(), m, id)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	app.SendSuccessJSON(w, http.StatusCreated, created)
}

// updateModel applies the body to the row addressed by ?id=. m must be a
// pointer to an empty model of the target type.
func (app *application) updateModel(w http.ResponseWriter, r *http.Request, m models.Model) {
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
		app.toggleActive(w, r, m, id, active)
		return
	}

	if _, err := app.Repo.GetModelByID(r.Context(), m, id); err != nil {
		app.errorResponse(w, r, err)
		return
	}
	if err := applyAndValidate(m, edits); err != nil {
		app.errorResponse(w, r, err)
		return
	}
	if err := app.Repo.Update(r.Context(), m); err != nil {
		app.errorResponse(w, r, err)
		return
	}
	app.SendSuccessJSON(w, http.StatusOK, m)
}

func (app *application) toggleActive(w http.ResponseWriter, r *http.Request, m models.Model, id int64, active bool) {
	if err := app.Repo.SetActive(r.Context(), m, id, active); err != nil {
		app.errorResponse(w, r, err)
		return
	}
	app.SendSuccessJSON(w, http.StatusOK, map[string]interface{}{"id": id, "isActive": active})
}

// deleteModel removes the row addressed by the named query parameter.
func (app *application) deleteModel(w http.ResponseWriter, r *http.Request, m models.Model, param string) {
	id, err := idParam(r, param)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	if err := app.Repo.DeleteByID(r.Context(), m, id); err != nil {
		app.errorResponse(w, r, err)
		return
	}
	app.SendSuccessJSON(w, http.StatusOK, map[string]interface{}{"id": id, "message": "deleted"})
}

// queryModels lists rows through the filter grammar, newest first unless
// the caller sorts.
func (app *application) queryModels(ctx context.Context, m models.Model, q url.Values) (interface{}, error) {
	params := queryParams(q)
	if _, ok := params["sortBy"]; !ok {
		params["sortBy"] = "-createdAt"
	}
	return app.Repo.Query(ctx, m, params)
}

// queryParams flattens the query string to its first values, dropping the
// flags that only select the admin view.
func queryParams(q url.Values) map[string]string {
	params := make(map[string]string, len(q))
	for k, v := range q {
		if k == "admin" || k == "all" || len(v) == 0 {
			continue
		}
		params[k] = v[0]
	}
	return params
}

// categoryIDs reads the list form of an event's categories from edits.
func categoryIDs(edits map[string]interface{}) ([]int64, bool, error) {
	raw, ok := edits["categoryIds"]
	if !ok || raw == nil {
		return nil, false, nil
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return nil, false, badRequest(err)
	}
	var ids []int64
	if err := json.Unmarshal(b, &ids); err != nil {
		return nil, false, badRequest(fmt.Errorf("invalid categoryIds: %w", err))
	}
	return ids, true, nil
}

// checkCategorySet rejects sets that are malformed or reference inactive or
// unknown categories.
func (app *application) checkCategorySet(ctx context.Context, set models.CategorySet) error {
	if err := set.Validate(); err != nil {
		return badRequest(err)
	}
	n, err := app.Repo.CountActiveCategories(ctx, set)
	if err != nil {
		return err
	}
	if n != len(set) {
		return badRequest(errors.New("categoryIds must reference active categories"))
	}
	return nil
}

// unknownCategory turns a foreign key failure on write into a client error.
func unknownCategory(err error) error {
	if errors.Is(err, repository.ErrInUse) {
		return badRequest(errors.New("unknown categoryId"))
	}
	return err
}

func (app *application) today() models.Date {
	t := app.now()
	return models.NewDate(t.Year(), t.Month(), t.Day())
}

// adminView reports whether the request asked for the admin view with flag
// and carries a valid token. Asking without a token is an error.
func (app *application) adminView(r *http.Request, flag string) (bool, error) {
	if r.URL.Query().Get(flag) != "true" {
		return false, nil
	}
	if _, ok := app.adminClaims(r); !ok {
		return false, errAdminRequired
	}
	return true, nil
}
