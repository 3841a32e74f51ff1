package main

import (
	"bytes"
	"edirne-events/data/models"
	"edirne-events/moderation"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t)
	routes := []struct {
		method string
		target string
	}{
		{"POST", "/api/events"},
		{"PUT", "/api/events?id=1"},
		{"DELETE", "/api/events?id=1"},
		{"GET", "/api/events?admin=true"},
		{"GET", "/api/admin/venues"},
		{"POST", "/api/venues"},
		{"GET", "/api/categories?all=true"},
		{"POST", "/api/admin/categories/reorder"},
		{"GET", "/api/admin/pending-events"},
		{"POST", "/api/admin/pending-venues"},
		{"PUT", "/api/admin/pending-events/1"},
		{"POST", "/api/admin/expired-events"},
		{"GET", "/api/admin/users"},
		{"PUT", "/api/admin/users"},
		{"DELETE", "/api/events/1"},
		{"GET", "/api/feedback"},
		{"DELETE", "/api/announcements?id=1"},
	}

	for _, rt := range routes {
		for _, token := range []string{"", "garbage"} {
			t.Run(fmt.Sprintf("%s %s token=%q", rt.method, rt.target, token), func(t *testing.T) {
				rec := env.do(t, rt.method, rt.target, `{}`, token)
				assert.Equal(t, http.StatusUnauthorized, rec.Code)
				assert.Equal(t, "fail", decodeEnvelope(t, rec).Status)
			})
		}
	}
}

func TestLoginFlow(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, "POST", "/api/admin/send-verification", `{"email":"admin@edirne.bel.tr","password":"wrong"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, "POST", "/api/admin/send-verification", `{"email":"not-an-email","password":"x"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, "POST", "/api/admin/send-verification", `{"email":"admin@edirne.bel.tr","password":"Selimiye1575!"}`, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var challenge struct {
		DevelopmentMode  bool   `json:"developmentMode"`
		VerificationCode string `json:"verificationCode"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &challenge))
	assert.True(t, challenge.DevelopmentMode)
	assert.Regexp(t, `^\d{6}$`, challenge.VerificationCode)

	body := fmt.Sprintf(`{"email":"admin@edirne.bel.tr","code":%q}`, challenge.VerificationCode)
	rec = env.do(t, "PUT", "/api/admin/send-verification", body, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var session struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &session))
	require.NotEmpty(t, session.Token)

	rec = env.do(t, "GET", "/api/admin/pending-events", "", session.Token)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, "PUT", "/api/admin/send-verification", body, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "codes are single use")
}

func TestListEvents_Public(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, "GET", "/api/events?categoryId=5&featured=true&search=gures", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", decodeEnvelope(t, rec).Status)

	f := env.repo.lastFilter
	assert.Equal(t, int64(5), f.CategoryID)
	assert.True(t, f.Featured)
	assert.Equal(t, "gures", f.Search)
	assert.Equal(t, models.NewDate(2025, 7, 3), f.Today)

	rec = env.do(t, "GET", "/api/events?categoryId=all", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, env.repo.lastFilter.CategoryID)

	rec = env.do(t, "GET", "/api/events?categoryId=abc", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListEvents_AdminQuery(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t)

	rec := env.do(t, "GET", "/api/events?admin=true&title_contains=festival&sortBy=-startDate", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]string{"title_contains": "festival", "sortBy": "-startDate"}, env.repo.lastParams)

	rec = env.do(t, "GET", "/api/events?admin=true&noSuchField=1", "", token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateEvent(t *testing.T) {
	const base = `"title":"Kırkpınar Yağlı Güreşleri","description":"Tarihi er meydanı","location":"Sarayiçi","startDate":"2025-07-03"`

	tests := []struct {
		name         string
		body         string
		expectedCode int
		expectedSet  models.CategorySet
	}{
		{"category list", `{` + base + `,"categoryIds":[5,2]}`, http.StatusCreated, models.CategorySet{5, 2}},
		{"single category", `{` + base + `,"categoryId":5}`, http.StatusCreated, models.CategorySet{5}},
		{"too many categories", `{` + base + `,"categoryIds":[1,2,3,4]}`, http.StatusBadRequest, nil},
		{"no category", `{` + base + `}`, http.StatusBadRequest, nil},
		{"inactive category", `{` + base + `,"categoryIds":[5,9]}`, http.StatusBadRequest, nil},
		{"duplicate category", `{` + base + `,"categoryIds":[5,5]}`, http.StatusBadRequest, nil},
		{"missing title", `{"description":"x","location":"Sarayiçi","startDate":"2025-07-03","categoryId":5}`, http.StatusBadRequest, nil},
		{"end before start", `{` + base + `,"endDate":"2025-07-01","categoryId":5}`, http.StatusBadRequest, nil},
		{"bad json", `{"title":`, http.StatusBadRequest, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			rec := env.do(t, "POST", "/api/events", tt.body, env.token(t))
			require.Equal(t, tt.expectedCode, rec.Code, rec.Body.String())

			if tt.expectedCode != http.StatusCreated {
				assert.Empty(t, env.repo.created)
				assert.Equal(t, "fail", decodeEnvelope(t, rec).Status)
				return
			}
			require.Len(t, env.repo.created, 1)
			assert.Equal(t, tt.expectedSet, env.repo.created[0].Set)
			assert.True(t, env.repo.created[0].Event.IsActive)

			var e models.Event
			require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &e))
			assert.Equal(t, "Kırkpınar Yağlı Güreşleri", e.Title)
			assert.Equal(t, []int64(tt.expectedSet), e.CategoryIDs)
		})
	}
}

func seedEvent(env *testEnv) {
	env.repo.events[7] = models.Event{
		ID:          7,
		Title:       "Edirne Kakava Şenlikleri",
		Description: "Hıdrellez kutlamaları",
		Location:    "Sarayiçi",
		StartDate:   models.NewDate(2025, 5, 5),
		CategoryID:  5,
		CategoryIDs: []int64{5},
		IsActive:    true,
	}
}

func TestUpdateEvent(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t)
	seedEvent(env)

	rec := env.do(t, "PUT", "/api/events?id=7", `{"isActive":false}`, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	active, toggled := env.repo.toggled[7]
	assert.True(t, toggled)
	assert.False(t, active)
	assert.Equal(t, "Edirne Kakava Şenlikleri", env.repo.events[7].Title, "a toggle leaves other fields alone")

	rec = env.do(t, "PUT", "/api/events?id=7", `{"title":"Kakava 2025","categoryIds":[1,2]}`, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Kakava 2025", env.repo.events[7].Title)
	assert.Equal(t, []int64{1, 2}, env.repo.events[7].CategoryIDs)

	rec = env.do(t, "PUT", "/api/events?id=7", `{"location":"Tunca kıyısı"}`, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []int64{1, 2}, env.repo.events[7].CategoryIDs, "categories kept when not edited")

	rec = env.do(t, "PUT", "/api/events?id=7", `{"categoryId":3}`, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []int64{3}, env.repo.events[7].CategoryIDs)

	rec = env.do(t, "PUT", "/api/events?id=99", `{"title":"x"}`, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, "PUT", "/api/events", `{"title":"x"}`, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteEvent(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t)
	seedEvent(env)

	rec := env.do(t, "DELETE", "/api/events?id=7", "", token)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, "DELETE", "/api/events?id=7", "", token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "record not found", decodeEnvelope(t, rec).Message)
}

func TestDeleteEvent_ByPath(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t)
	seedEvent(env)

	rec := env.do(t, "DELETE", "/api/events/7", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, "DELETE", "/api/events/7", "", token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotContains(t, env.repo.events, int64(7))

	rec = env.do(t, "DELETE", "/api/events/7", "", token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetEvent(t *testing.T) {
	env := newTestEnv(t)
	seedEvent(env)

	rec := env.do(t, "GET", "/api/events/7", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, "GET", "/api/events/8", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDecidePending(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t)
	env.mod.result = moderation.Result{LiveID: 42, Message: "Event approved"}

	rec := env.do(t, "POST", "/api/admin/pending-events", `{"eventId":3,"action":"approve"}`, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Len(t, env.mod.decisions, 1)
	assert.Equal(t, decision{moderation.KindEvent, 3, moderation.ActionApprove}, env.mod.decisions[0])

	var res moderation.Result
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &res))
	assert.Equal(t, int64(42), res.LiveID)
	assert.Equal(t, int64(3), res.PendingID)
	assert.Equal(t, "Event approved", res.Message)

	rec = env.do(t, "POST", "/api/admin/pending-venues", `{"venueId":2,"action":"reject"}`, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, decision{moderation.KindVenue, 2, moderation.ActionReject}, env.mod.decisions[1])

	rec = env.do(t, "POST", "/api/admin/pending-events", `{"action":"approve"}`, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, env.mod.decisions, 2)
}

func TestDecidePending_Errors(t *testing.T) {
	tests := []struct {
		name            string
		err             error
		expectedCode    int
		expectedStatus  string
		expectedMessage string
	}{
		{"not found", moderation.ErrNotFound, http.StatusNotFound, "fail", "pending record not found"},
		{"unknown action", &moderation.ValidationError{Field: "action", Err: moderation.ErrUnknownAction}, http.StatusBadRequest, "fail", "invalid action: action must be approve or reject"},
		{"store down", &moderation.StoreError{Op: "approve event", Err: errors.New("connection refused")}, http.StatusServiceUnavailable, "error", "storage is temporarily unavailable"},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "error", "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.mod.err = tt.err

			rec := env.do(t, "POST", "/api/admin/pending-events", `{"eventId":3,"action":"approve"}`, env.token(t))
			assert.Equal(t, tt.expectedCode, rec.Code)
			body := decodeEnvelope(t, rec)
			assert.Equal(t, tt.expectedStatus, body.Status)
			assert.Equal(t, tt.expectedMessage, body.Message)
		})
	}
}

func TestReviewPendingVenue(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, "PUT", "/api/admin/pending-venues/4", `{"name":"Kale Kafe & Bistro","rating":4.5}`, env.token(t))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Kale Kafe & Bistro", env.mod.edits["name"])

	var v models.PendingVenue
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &v))
	assert.Equal(t, int64(4), v.ID)
	assert.Equal(t, "Kale Kafe & Bistro", v.Name)

	rec = env.do(t, "PUT", "/api/admin/pending-venues/4", `[1,2]`, env.token(t))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitEvent(t *testing.T) {
	env := newTestEnv(t)

	body := `{"title":"Lale Festivali","description":"Bahar","location":"Selimiye","startDate":"2025-04-20","categoryId":5,"submitterEmail":"ayse@example.com"}`
	rec := env.do(t, "POST", "/api/pending-events", body, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Len(t, env.mod.submitted, 1)
	assert.Equal(t, int64(5), env.mod.submitted[0].CategoryID)

	rec = env.do(t, "POST", "/api/pending-events", `{"title":"x","bogus":true}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, env.mod.submitted, 1)
}

func TestListPending(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t)

	rec := env.do(t, "GET", "/api/admin/pending-venues", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	var venues []models.PendingVenue
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &venues))
	require.Len(t, venues, 1)
	assert.Equal(t, "Kale Kafe", venues[0].Name)
}

func TestDeactivateExpiredEvents(t *testing.T) {
	env := newTestEnv(t)
	env.repo.expiredCount = 3

	rec := env.do(t, "POST", "/api/admin/expired-events", "", env.token(t))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"deactivatedCount":3}`, string(decodeEnvelope(t, rec).Data))
	assert.Equal(t, models.NewDate(2025, 7, 3), env.repo.expiredToday)
}

func TestVenueCategories(t *testing.T) {
	env := newTestEnv(t)
	env.repo.venueCats = []models.VenueCategory{{ID: 3, Name: "hall", DisplayName: "Salon", IsActive: true}}

	rec := env.do(t, "GET", "/api/venue-categories", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var data struct {
		Categories []models.VenueCategory `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &data))
	require.Len(t, data.Categories, 1)
	assert.Equal(t, "Salon", data.Categories[0].DisplayName)
}

func TestReorder(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t)

	rec := env.do(t, "POST", "/api/admin/venue-categories/reorder", `{"categoryOrders":[{"id":3,"sortOrder":0},{"id":1,"sortOrder":1}]}`, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []models.SortOrder{{ID: 3, SortOrder: 0}, {ID: 1, SortOrder: 1}}, env.repo.reordered["venue_categories"])

	for _, body := range []string{`{"categoryOrders":[]}`, `{"categoryOrders":[{"id":0,"sortOrder":1}]}`, `{}`} {
		rec = env.do(t, "POST", "/api/admin/categories/reorder", body, token)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
	assert.NotContains(t, env.repo.reordered, "categories")
}

func TestDeleteModels(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t)

	rec := env.do(t, "DELETE", "/api/categories?id=1", "", token)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "record is referenced by other records", decodeEnvelope(t, rec).Message)

	rec = env.do(t, "DELETE", "/api/categories?id=2", "", token)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, "DELETE", "/api/announcements?id=2000", "", token)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, "DELETE", "/api/admin/users?userId=5", "", token)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, "DELETE", "/api/admin/users?id=5", "", token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSetUserStatus(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t)

	tests := []struct {
		name         string
		body         string
		expectedCode int
	}{
		{"deactivate", `{"userId":5,"isActive":false}`, http.StatusOK},
		{"activate", `{"userId":6,"isActive":true}`, http.StatusOK},
		{"missing user", `{"userId":2000,"isActive":true}`, http.StatusNotFound},
		{"no status", `{"userId":5}`, http.StatusBadRequest},
		{"no user id", `{"isActive":true}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, "PUT", "/api/admin/users", tt.body, token)
			assert.Equal(t, tt.expectedCode, rec.Code, rec.Body.String())
		})
	}

	assert.Equal(t, map[int64]bool{5: false, 6: true}, env.repo.toggled)

	rec := env.do(t, "PUT", "/api/admin/users", `{"userId":5,"isActive":true}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00\x90wS\xde")

func multipartBody(t *testing.T, part, filename string, content []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if part != "" {
		fw, err := mw.CreateFormFile(part, filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return buf, mw.FormDataContentType()
}

func TestUploadImage(t *testing.T) {
	fifteenMB := make([]byte, 15*1024*1024)
	copy(fifteenMB, pngHeader)

	tests := []struct {
		name         string
		part         string
		filename     string
		content      []byte
		fields       map[string]string
		expectedCode int
		urlPattern   string
		field        string
	}{
		{"png in file part", "file", "selimiye.png", pngHeader, map[string]string{"field": "imageUrl2", "prefix": "venue"}, http.StatusOK, `^/uploads/venue_\d+_[0-9a-f-]{36}\.png$`, "imageUrl2"},
		{"png in image part", "image", "kapak.PNG", pngHeader, nil, http.StatusOK, `^/uploads/event_\d+_[0-9a-f-]{36}\.png$`, "imageUrl"},
		{"exe", "file", "setup.exe", []byte("MZ\x90\x00"), nil, http.StatusBadRequest, "", ""},
		{"15MB", "file", "big.png", fifteenMB, nil, http.StatusRequestEntityTooLarge, "", ""},
		{"unknown field", "file", "a.png", pngHeader, map[string]string{"field": "avatar"}, http.StatusBadRequest, "", ""},
		{"no file", "", "", nil, map[string]string{"field": "imageUrl"}, http.StatusBadRequest, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			body, contentType := multipartBody(t, tt.part, tt.filename, tt.content, tt.fields)
			req := httptest.NewRequest("POST", "/api/upload", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()
			env.handler.ServeHTTP(rec, req)

			require.Equal(t, tt.expectedCode, rec.Code, rec.Body.String())
			if tt.expectedCode != http.StatusOK {
				assert.Zero(t, env.blobs.puts, "nothing may be stored for a rejected upload")
				return
			}

			var data struct {
				ImageURL string `json:"imageUrl"`
				Field    string `json:"field"`
			}
			require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &data))
			assert.Regexp(t, tt.urlPattern, data.ImageURL)
			assert.Equal(t, tt.field, data.Field)
			assert.Equal(t, 1, env.blobs.puts)
		})
	}
}

func TestUploadImage_NotMultipart(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, "POST", "/api/upload", `{"file":"x"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "no file uploaded", decodeEnvelope(t, rec).Message)
}

func TestUploadImage_Chunked(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("TMPDIR", tmp)

	tests := []struct {
		name         string
		size         int
		fileFirst    bool
		expectedCode int
	}{
		{"15MB", 15 * 1024 * 1024, false, http.StatusRequestEntityTooLarge},
		{"just over the limit", 10*1024*1024 + 200*1024, true, http.StatusRequestEntityTooLarge},
		{"2MB with fields after the file", 2 * 1024 * 1024, true, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			pr, pw := io.Pipe()
			defer pr.Close()
			mw := multipart.NewWriter(pw)

			go func() {
				if !tt.fileFirst {
					mw.WriteField("field", "imageUrl3")
				}
				fw, err := mw.CreateFormFile("file", "kirkpinar.png")
				if err != nil {
					pw.CloseWithError(err)
					return
				}
				content := make([]byte, tt.size)
				copy(content, pngHeader)
				if _, err := fw.Write(content); err != nil {
					pw.CloseWithError(err)
					return
				}
				if tt.fileFirst {
					mw.WriteField("field", "imageUrl3")
				}
				pw.CloseWithError(mw.Close())
			}()

			req := httptest.NewRequest("POST", "/api/upload", pr)
			req.ContentLength = -1
			req.Header.Set("Content-Type", mw.FormDataContentType())
			rec := httptest.NewRecorder()
			env.handler.ServeHTTP(rec, req)

			require.Equal(t, tt.expectedCode, rec.Code, rec.Body.String())
			spooled, err := os.ReadDir(tmp)
			require.NoError(t, err)
			assert.Empty(t, spooled, "multipart parts must not be spooled to disk")
			if tt.expectedCode != http.StatusOK {
				assert.Zero(t, env.blobs.puts)
				return
			}
			assert.Equal(t, 1, env.blobs.puts)
			assert.Contains(t, string(decodeEnvelope(t, rec).Data), `"field":"imageUrl3"`)
		})
	}
}

func TestServeImage(t *testing.T) {
	env := newTestEnv(t)
	env.blobs.blobs["event_1_a.png"] = pngHeader

	for _, target := range []string{"/uploads/event_1_a.png", "/api/serve-image/event_1_a.png"} {
		rec := env.do(t, "GET", target, "", "")
		require.Equal(t, http.StatusOK, rec.Code, target)
		assert.Equal(t, pngHeader, rec.Body.Bytes())
		assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
		assert.True(t, strings.HasPrefix(rec.Header().Get("Cache-Control"), "public"))
	}

	rec := env.do(t, "GET", "/uploads/missing.png", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, "GET", "/api/serve-image/x..png", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()
	env.repo.db = db

	mock.ExpectPing()
	rec := env.do(t, "GET", "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	rec = env.do(t, "GET", "/healthz", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "error", decodeEnvelope(t, rec).Status)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, "GET", "/api/venue-categories", "", "")

	rec := env.do(t, "GET", "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `edirne_http_requests_total{method="GET",route="/api/venue-categories",status="200"}`)
}

func TestUnknownRoute(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, "GET", "/api/nope", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "fail", decodeEnvelope(t, rec).Status)
}
