package main

import (
	"bytes"
	"context"
	"database/sql"
	"edirne-events/auth"
	"edirne-events/data/models"
	"edirne-events/data/repository"
	"edirne-events/moderation"
	"edirne-events/upload"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	testAdminEmail    = "admin@edirne.bel.tr"
	testAdminPassword = "Selimiye1575!"
)

var fixedNow = time.Date(2025, 7, 3, 9, 30, 0, 0, time.UTC)

// fakeRepo implements the parts of repository.DBRepo the handlers under test
// reach. Calling anything else panics on the nil embedded interface.
type fakeRepo struct {
	repository.DBRepo

	mu           sync.Mutex
	db           *sql.DB
	events       map[int64]models.Event
	activeCats   map[int64]bool
	venueCats    []models.VenueCategory
	lastFilter   repository.EventFilter
	lastParams   map[string]string
	created      []createdEvent
	toggled      map[int64]bool
	reordered    map[string][]models.SortOrder
	expiredToday models.Date
	expiredCount int64
	err          error
}

type createdEvent struct {
	Event models.Event
	Set   models.CategorySet
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		events:     map[int64]models.Event{},
		activeCats: map[int64]bool{1: true, 2: true, 3: true, 4: true, 5: true},
		toggled:    map[int64]bool{},
		reordered:  map[string][]models.SortOrder{},
	}
}

func (fr *fakeRepo) Connection() *sql.DB { return fr.db }

func (fr *fakeRepo) ListEvents(ctx context.Context, f repository.EventFilter) ([]models.Event, error) {
	fr.mu.Lock()
	defer fr.mu.Unlock()
	fr.lastFilter = f
	out := []models.Event{}
	for _, e := range fr.events {
		out = append(out, e)
	}
	return out, fr.err
}

func (fr *fakeRepo) QueryEvents(ctx context.Context, params map[string]string) ([]models.Event, error) {
	fr.mu.Lock()
	defer fr.mu.Unlock()
	fr.lastParams = params
	if _, ok := params["noSuchField"]; ok {
		return nil, repository.ErrInvalidQuery
	}
	return []models.Event{}, fr.err
}

func (fr *fakeRepo) GetEvent(ctx context.Context, id int64) (models.Event, error) {
	fr.mu.Lock()
	defer fr.mu.Unlock()
	e, ok := fr.events[id]
	if !ok {
		return models.Event{}, repository.ErrNotFound
	}
	return e, nil
}

func (fr *fakeRepo) CountActiveCategories(ctx context.Context, set models.CategorySet) (int, error) {
	n := 0
	for _, id := range set {
		if fr.activeCats[id] {
			n++
		}
	}
	return n, nil
}

func (fr *fakeRepo) CreateEvent(ctx context.Context, e models.Event, set models.CategorySet) (int64, error) {
	fr.mu.Lock()
	defer fr.mu.Unlock()
	if fr.err != nil {
		return 0, fr.err
	}
	id := int64(len(fr.events) + 100)
	e.ID = id
	e.CategoryID = set.Primary()
	e.CategoryIDs = append([]int64(nil), set...)
	fr.events[id] = e
	fr.created = append(fr.created, createdEvent{Event: e, Set: set})
	return id, nil
}

func (fr *fakeRepo) UpdateEvent(ctx context.Context, e models.Event, set models.CategorySet) error {
	fr.mu.Lock()
	defer fr.mu.Unlock()
	if _, ok := fr.events[e.ID]; !ok {
		return repository.ErrNotFound
	}
	e.CategoryID = set.Primary()
	e.CategoryIDs = append([]int64(nil), set...)
	fr.events[e.ID] = e
	return nil
}

func (fr *fakeRepo) DeleteEvent(ctx context.Context, id int64) error {
	fr.mu.Lock()
	defer fr.mu.Unlock()
	if _, ok := fr.events[id]; !ok {
		return repository.ErrNotFound
	}
	delete(fr.events, id)
	return nil
}

func (fr *fakeRepo) SetActive(ctx context.Context, m models.Model, id int64, active bool) error {
	fr.mu.Lock()
	defer fr.mu.Unlock()
	if m.TableName() == "events" {
		if _, ok := fr.events[id]; !ok {
			return repository.ErrNotFound
		}
	}
	if id > 1000 {
		return repository.ErrNotFound
	}
	fr.toggled[id] = active
	return nil
}

func (fr *fakeRepo) DeactivateExpiredEvents(ctx context.Context, today models.Date) (int64, error) {
	fr.expiredToday = today
	return fr.expiredCount, nil
}

func (fr *fakeRepo) ListVenueCategories(ctx context.Context, includeInactive bool) ([]models.VenueCategory, error) {
	return fr.venueCats, nil
}

func (fr *fakeRepo) Reorder(ctx context.Context, m models.Model, orders []models.SortOrder) error {
	fr.mu.Lock()
	defer fr.mu.Unlock()
	fr.reordered[m.TableName()] = orders
	return nil
}

func (fr *fakeRepo) DeleteByID(ctx context.Context, m models.Model, id int64) error {
	if m.TableName() == "categories" && id == 1 {
		return repository.ErrInUse
	}
	if id > 1000 {
		return repository.ErrNotFound
	}
	return nil
}

type decision struct {
	Kind   moderation.Kind
	ID     int64
	Action moderation.Action
}

type fakeModerator struct {
	decisions []decision
	edits     map[string]interface{}
	submitted []models.PendingEvent
	result    moderation.Result
	err       error
}

func (fm *fakeModerator) ListPendingEvents(ctx context.Context) ([]models.PendingEvent, error) {
	return []models.PendingEvent{{ID: 1, Title: "Kırkpınar Yağlı Güreşleri", CategoryIDs: []int64{5}}}, fm.err
}

func (fm *fakeModerator) ListPendingVenues(ctx context.Context) ([]models.PendingVenue, error) {
	return []models.PendingVenue{{ID: 2, Name: "Kale Kafe", CategoryID: 3}}, fm.err
}

func (fm *fakeModerator) SubmitEvent(ctx context.Context, p models.PendingEvent) (models.PendingEvent, error) {
	if fm.err != nil {
		return models.PendingEvent{}, fm.err
	}
	p.ID = 9
	fm.submitted = append(fm.submitted, p)
	return p, nil
}

func (fm *fakeModerator) SubmitVenue(ctx context.Context, p models.PendingVenue) (models.PendingVenue, error) {
	p.ID = 10
	return p, fm.err
}

func (fm *fakeModerator) ReviewEvent(ctx context.Context, id int64, edits map[string]interface{}) (models.PendingEvent, error) {
	fm.edits = edits
	return models.PendingEvent{ID: id}, fm.err
}

func (fm *fakeModerator) ReviewVenue(ctx context.Context, id int64, edits map[string]interface{}) (models.PendingVenue, error) {
	fm.edits = edits
	if fm.err != nil {
		return models.PendingVenue{}, fm.err
	}
	v := models.PendingVenue{ID: id}
	if name, ok := edits["name"].(string); ok {
		v.Name = name
	}
	return v, nil
}

func (fm *fakeModerator) Decide(ctx context.Context, kind moderation.Kind, id int64, action moderation.Action) (moderation.Result, error) {
	fm.decisions = append(fm.decisions, decision{kind, id, action})
	if fm.err != nil {
		return moderation.Result{}, fm.err
	}
	res := fm.result
	res.Kind, res.PendingID, res.Action = kind, id, action
	return res, nil
}

// blobStore is an in-memory upload.Store counting writes.
type blobStore struct {
	mu    sync.Mutex
	puts  int
	blobs map[string][]byte
}

func (bs *blobStore) Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.puts++
	bs.blobs[name] = data
	return nil
}

func (bs *blobStore) Open(ctx context.Context, name string) (upload.Blob, error) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	data, ok := bs.blobs[name]
	if !ok {
		return upload.Blob{}, upload.ErrNotFound
	}
	return upload.Blob{Body: io.NopCloser(bytes.NewReader(data)), ContentType: "image/png", Size: int64(len(data))}, nil
}

type testEnv struct {
	app     *application
	repo    *fakeRepo
	mod     *fakeModerator
	blobs   *blobStore
	hook    *test.Hook
	handler http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger, hook := test.NewNullLogger()

	hash, err := bcrypt.GenerateFromPassword([]byte(testAdminPassword), bcrypt.MinCost)
	require.NoError(t, err)
	svc, err := auth.NewService(auth.Config{
		AdminEmail:   testAdminEmail,
		PasswordHash: string(hash),
		Secret:       []byte("test-secret-0123456789abcdef"),
	}, auth.NewMemoryCodeStore(), nil, logger)
	require.NoError(t, err)

	env := &testEnv{
		repo:  newFakeRepo(),
		mod:   &fakeModerator{},
		blobs: &blobStore{blobs: map[string][]byte{}},
		hook:  hook,
	}
	env.app = &application{
		cfg:       config{EnableMetrics: true},
		Log:       logger,
		Repo:      env.repo,
		Moderator: env.mod,
		Auth:      svc,
		Blobs:     env.blobs,
		Uploader:  upload.NewUploader(env.blobs),
		Now:       func() time.Time { return fixedNow },
	}
	env.handler = env.app.routes()
	return env
}

// token logs in through the two step flow and returns the session token.
func (env *testEnv) token(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	ch, err := env.app.Auth.StartLogin(ctx, testAdminEmail, testAdminPassword)
	require.NoError(t, err)
	session, err := env.app.Auth.CompleteLogin(ctx, testAdminEmail, ch.VerificationCode)
	require.NoError(t, err)
	return session.Token
}

func (env *testEnv) do(t *testing.T, method, target, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}
