package main

import (
	"bytes"
	"edirne-events/metrics"
	"edirne-events/upload"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

// multipartOverhead is the allowance for form fields and part headers on top
// of the file itself.
const multipartOverhead = 512 * 1024

const maxFormValue = 1024

var imageFields = map[string]bool{
	"imageUrl":  true,
	"imageUrl2": true,
	"imageUrl3": true,
}

func uploadOutcome(err error) string {
	switch statusFor(err) {
	case http.StatusRequestEntityTooLarge:
		return "too_large"
	case http.StatusBadRequest:
		return "invalid"
	default:
		return "error"
	}
}

func (app *application) uploadImage(w http.ResponseWriter, r *http.Request) {
	url, field, err := app.receiveUpload(w, r)
	if err != nil {
		metrics.TrackUpload(uploadOutcome(err))
		app.errorResponse(w, r, err)
		return
	}
	metrics.TrackUpload("ok")

	app.Log.WithField("url", url).Info("image uploaded")
	app.SendSuccessJSON(w, http.StatusOK, map[string]string{
		"imageUrl": url,
		"field":    field,
	})
}

func (app *application) receiveUpload(w http.ResponseWriter, r *http.Request) (string, string, error) {
	limit := app.Uploader.MaxSize
	if limit <= 0 {
		limit = upload.MaxSize
	}
	if r.ContentLength > limit+multipartOverhead {
		return "", "", upload.ErrTooLarge
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)

	form, err := readUploadForm(r, limit)
	if err != nil {
		return "", "", err
	}

	field := form.values["field"]
	if field == "" {
		field = "imageUrl"
	}
	if !imageFields[field] {
		return "", "", badRequest(fmt.Errorf("invalid field: %q", field))
	}
	if form.data == nil {
		return "", "", upload.ErrNoFile
	}

	url, err := app.Uploader.Save(r.Context(), upload.File{
		Name: form.filename,
		Size: int64(len(form.data)),
		Body: bytes.NewReader(form.data),
	}, form.values["prefix"])
	if err != nil {
		return "", "", err
	}
	return url, field, nil
}

// uploadForm is a multipart upload read fully into memory.
type uploadForm struct {
	values   map[string]string
	filename string
	data     []byte
}

// readUploadForm streams the multipart body part by part. The first file part
// named file or image is kept in memory up to limit bytes; nothing is spooled
// to disk.
func readUploadForm(r *http.Request, limit int64) (uploadForm, error) {
	form := uploadForm{values: map[string]string{}}

	mr, err := r.MultipartReader()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return form, upload.ErrNoFile
		}
		return form, badRequest(fmt.Errorf("invalid multipart form: %w", err))
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return form, nil
		}
		if err != nil {
			return form, multipartErr(err)
		}

		name := part.FormName()
		switch {
		case part.FileName() != "":
			if form.data != nil || (name != "file" && name != "image") {
				break
			}
			data, err := io.ReadAll(io.LimitReader(part, limit+1))
			if err != nil {
				return form, multipartErr(err)
			}
			if int64(len(data)) > limit {
				return form, upload.ErrTooLarge
			}
			form.filename, form.data = part.FileName(), data
		case name != "":
			value, err := io.ReadAll(io.LimitReader(part, maxFormValue+1))
			if err != nil {
				return form, multipartErr(err)
			}
			if len(value) > maxFormValue {
				return form, badRequest(fmt.Errorf("form value %q too long", name))
			}
			form.values[name] = string(value)
		}
		part.Close()
	}
}

func multipartErr(err error) error {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return upload.ErrTooLarge
	}
	return badRequest(fmt.Errorf("invalid multipart form: %w", err))
}

func (app *application) serveImage(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if err := upload.ValidName(name); err != nil {
		app.errorResponse(w, r, err)
		return
	}

	blob, err := app.Blobs.Open(r.Context(), name)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	defer blob.Body.Close()

	w.Header().Set("Content-Type", blob.ContentType)
	if blob.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(blob.Size, 10))
	}
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, blob.Body); err != nil {
		app.Log.WithError(err).WithField("name", name).Warn("error streaming image")
	}
}
