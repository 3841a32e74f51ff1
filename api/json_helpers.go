package main

import (
	"edirne-events/auth"
	"edirne-events/data/models"
	"edirne-events/data/repository"
	"edirne-events/moderation"
	"edirne-events/upload"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-playground/validator"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type successJSON struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data"`
}

type errorJSON struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func marshalAndSend(w http.ResponseWriter, jsonRes interface{}, statusCode int) error {
	switch jsonRes.(type) {
	case successJSON, errorJSON:
		payload, err := json.Marshal(jsonRes)
		if err != nil {
			return err
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)

		// write the json out
		_, err = w.Write(payload)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported type: %T", jsonRes)
	}
	return nil
}

func (app *application) SendSuccessJSON(w http.ResponseWriter, statusCode int, data interface{}, wrap ...string) error {
	jsonRes := successJSON{
		Status: "success",
	}

	if len(wrap) > 0 {
		jsonRes.Data = map[string]interface{}{wrap[0]: data}
	} else {
		jsonRes.Data = data
	}

	return marshalAndSend(w, jsonRes, statusCode)
}

func (app *application) SendErrorJSON(w http.ResponseWriter, statusCode int, err error) error {
	jsonRes := errorJSON{}
	if statusCode >= 500 {
		jsonRes.Status = "error"
	} else {
		jsonRes.Status = "fail"
	}

	jsonRes.Message = err.Error()

	return marshalAndSend(w, jsonRes, statusCode)
}

var (
	errInternal         = errors.New("internal server error")
	errUnavailable      = errors.New("storage is temporarily unavailable")
	errRouteNotFound    = errors.New("route not found")
	errMethodNotAllowed = errors.New("method not allowed")
)

// requestError marks a failure caused by the client's input.
type requestError struct {
	err error
}

func (e *requestError) Error() string { return e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }

func badRequest(err error) error {
	return &requestError{err: err}
}

var validate = validator.New()

func (app *application) ReadJSON(w http.ResponseWriter, r *http.Request, data interface{}, validationReq bool) error {
	maxBytes := 1024 * 1024 // one megabyte
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	// attempt to decode the data
	err := dec.Decode(data)
	if err != nil {
		return badRequest(err)
	}

	// make sure only one JSON value in payload
	err = dec.Decode(&struct{}{})
	if err != io.EOF {
		return badRequest(errors.New("body must only contain a single JSON value"))
	}

	if validationReq {
		err := validate.Struct(data)
		if err != nil {
			return badRequest(err)
		}
	}

	return nil
}

// statusFor maps the errors handlers see onto HTTP status codes.
func statusFor(err error) int {
	var (
		maxBytesErr *http.MaxBytesError
		validErr    *moderation.ValidationError
		storeErr    *moderation.StoreError
		reqErr      *requestError
	)
	switch {
	case errors.As(err, &maxBytesErr), errors.Is(err, upload.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, moderation.ErrNotFound),
		errors.Is(err, upload.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &validErr), errors.As(err, &reqErr),
		errors.Is(err, repository.ErrInvalidQuery),
		errors.Is(err, models.ErrCategoryCount),
		errors.Is(err, upload.ErrInvalidFormat),
		errors.Is(err, upload.ErrNoFile),
		errors.Is(err, upload.ErrInvalidName):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrConflict), errors.Is(err, repository.ErrInUse):
		return http.StatusConflict
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidCode),
		errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.As(err, &storeErr):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// errorResponse logs err and sends it in the error envelope. Server side
// failures are reported without their details.
func (app *application) errorResponse(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msgErr := err
	switch {
	case status == http.StatusServiceUnavailable:
		msgErr = errUnavailable
	case status >= 500:
		msgErr = errInternal
	case status == http.StatusRequestEntityTooLarge:
		msgErr = upload.ErrTooLarge
	case status == http.StatusConflict:
		msgErr = conflictMessage(err)
	}

	entry := app.Log.WithFields(logrus.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
		"status": status,
	}).WithError(err)
	if status >= 500 {
		entry.Error("request failed")
	} else {
		entry.Debug("request rejected")
	}

	if sendErr := app.SendErrorJSON(w, status, msgErr); sendErr != nil {
		app.Log.WithError(sendErr).Warn("error writing response")
	}
}

func conflictMessage(err error) error {
	if errors.Is(err, repository.ErrInUse) {
		return repository.ErrInUse
	}
	return repository.ErrConflict
}

// idParam reads a positive integer id from the named path variable or,
// failing that, the query parameter of the same name.
func idParam(r *http.Request, name string) (int64, error) {
	if raw, ok := mux.Vars(r)[name]; ok {
		return parseID(raw)
	}
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, badRequest(fmt.Errorf("%s query parameter is required", name))
	}
	return parseID(raw)
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest(fmt.Errorf("invalid id: %q", raw))
	}
	return id, nil
}
