// Package moderation moves anonymous event and venue suggestions through
// review. A suggestion is PENDING while its row exists in the pending table;
// approval moves it to the live table and rejection deletes it.
package moderation

import (
	"context"
	"edirne-events/data/models"
	"edirne-events/data/repository"
	"edirne-events/metrics"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

type Kind string

const (
	KindEvent Kind = "event"
	KindVenue Kind = "venue"
)

type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

// Store is the persistence the workflow needs. *repository.SqlRepo
// implements it.
type Store interface {
	ListPendingEvents(ctx context.Context) ([]models.PendingEvent, error)
	GetPendingEvent(ctx context.Context, id int64) (models.PendingEvent, error)
	CreatePendingEvent(ctx context.Context, p models.PendingEvent, set models.CategorySet) (int64, error)
	UpdatePendingEvent(ctx context.Context, p models.PendingEvent, set models.CategorySet) error
	DeletePendingEvent(ctx context.Context, id int64) error

	ListPendingVenues(ctx context.Context) ([]models.PendingVenue, error)
	GetPendingVenue(ctx context.Context, id int64) (models.PendingVenue, error)
	CreatePendingVenue(ctx context.Context, p models.PendingVenue) (int64, error)
	UpdatePendingVenue(ctx context.Context, p models.PendingVenue) error
	DeletePendingVenue(ctx context.Context, id int64) error

	CreateEvent(ctx context.Context, e models.Event, set models.CategorySet) (int64, error)
	DeleteEvent(ctx context.Context, id int64) error
	CreateVenue(ctx context.Context, v models.Venue) (int64, error)
	DeleteVenue(ctx context.Context, id int64) error
	CountActiveCategories(ctx context.Context, set models.CategorySet) (int, error)
}

// Result describes a completed decision.
type Result struct {
	Kind      Kind   `json:"kind"`
	PendingID int64  `json:"id"`
	LiveID    int64  `json:"liveId,omitempty"`
	Action    Action `json:"action"`
	Message   string `json:"message"`
	// Warning is set when the live record was created but the pending record
	// could not be removed.
	Warning string `json:"warning,omitempty"`
}

type Workflow struct {
	Store    Store
	Notifier Notifier
	Log      logrus.FieldLogger
}

func New(store Store, notifier Notifier, log logrus.FieldLogger) *Workflow {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Workflow{Store: store, Notifier: notifier, Log: log}
}

func (w *Workflow) logger() logrus.FieldLogger {
	if w.Log == nil {
		return logrus.StandardLogger()
	}
	return w.Log
}

// storeErr converts a store failure into the workflow's error taxonomy.
func storeErr(op string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return &StoreError{Op: op, Err: err}
}

func (w *Workflow) notify(ctx context.Context, kind Kind) {
	if w.Notifier == nil {
		return
	}
	if err := w.Notifier.PendingChanged(ctx, kind); err != nil {
		w.logger().WithError(err).WithField("kind", kind).Warn("pending change notification failed")
	}
}

func (w *Workflow) ListPendingEvents(ctx context.Context) ([]models.PendingEvent, error) {
	pending, err := w.Store.ListPendingEvents(ctx)
	if err != nil {
		return nil, storeErr("list pending events", err)
	}
	for i := range pending {
		pending[i].CategoryIDs = pending[i].CategorySet()
	}
	return pending, nil
}

func (w *Workflow) ListPendingVenues(ctx context.Context) ([]models.PendingVenue, error) {
	pending, err := w.Store.ListPendingVenues(ctx)
	if err != nil {
		return nil, storeErr("list pending venues", err)
	}
	return pending, nil
}

// checkCategories verifies set holds 1 to 3 distinct ids that all name an
// active category.
func (w *Workflow) checkCategories(ctx context.Context, set models.CategorySet) error {
	if err := set.Validate(); err != nil {
		return invalid("categoryIds", err)
	}
	n, err := w.Store.CountActiveCategories(ctx, set)
	if err != nil {
		return &StoreError{Op: "count categories", Err: err}
	}
	if n != len(set) {
		return invalid("categoryIds", errors.New("every category must exist and be active"))
	}
	return nil
}

func validate(m models.Model) error {
	if err := models.ValidateModel(m); err != nil {
		return invalid("", err)
	}
	return nil
}

// SubmitEvent stores an anonymous event suggestion.
func (w *Workflow) SubmitEvent(ctx context.Context, p models.PendingEvent) (models.PendingEvent, error) {
	p.ID = 0
	p.IsFeatured = false
	if err := validate(p); err != nil {
		return p, err
	}
	set := p.CategorySet()
	if err := w.checkCategories(ctx, set); err != nil {
		return p, err
	}

	id, err := w.Store.CreatePendingEvent(ctx, p, set)
	if err != nil {
		return p, storeErr("create pending event", err)
	}
	p.ID, p.CategoryID, p.CategoryIDs = id, set.Primary(), set

	w.logger().WithFields(logrus.Fields{"kind": KindEvent, "id": id}).Info("suggestion received")
	w.notify(ctx, KindEvent)
	return p, nil
}

// SubmitVenue stores an anonymous venue suggestion.
func (w *Workflow) SubmitVenue(ctx context.Context, p models.PendingVenue) (models.PendingVenue, error) {
	p.ID = 0
	p.IsFeatured = false
	if err := validate(p); err != nil {
		return p, err
	}

	id, err := w.Store.CreatePendingVenue(ctx, p)
	if err != nil {
		if errors.Is(err, repository.ErrInUse) {
			return p, invalid("categoryId", errors.New("unknown venue category"))
		}
		return p, storeErr("create pending venue", err)
	}
	p.ID = id

	w.logger().WithFields(logrus.Fields{"kind": KindVenue, "id": id}).Info("suggestion received")
	w.notify(ctx, KindVenue)
	return p, nil
}

// ReviewEvent applies an administrator's edits to a pending event. Keys that
// don't name a writable pending field are ignored. categoryIds, or failing
// that categoryId, replaces the category set.
func (w *Workflow) ReviewEvent(ctx context.Context, id int64, edits map[string]interface{}) (models.PendingEvent, error) {
	p, err := w.Store.GetPendingEvent(ctx, id)
	if err != nil {
		return p, storeErr("get pending event", err)
	}

	set := p.CategorySet()
	if _, err := models.ApplyEdits(&p, edits); err != nil {
		return p, invalid("", err)
	}
	if raw, ok := edits["categoryIds"]; ok {
		ids, err := decodeIDs(raw)
		if err != nil {
			return p, invalid("categoryIds", err)
		}
		set = models.NewCategorySet(0, ids)
	} else if _, ok := edits["categoryId"]; ok {
		set = models.NewCategorySet(p.CategoryID, nil)
	}
	p.CategoryID, p.CategoryIDs = set.Primary(), set

	if err := validate(p); err != nil {
		return p, err
	}
	if err := w.checkCategories(ctx, set); err != nil {
		return p, err
	}
	if err := w.Store.UpdatePendingEvent(ctx, p, set); err != nil {
		return p, storeErr("update pending event", err)
	}

	w.logger().WithFields(logrus.Fields{"kind": KindEvent, "id": id}).Info("suggestion reviewed")
	return p, nil
}

// ReviewVenue applies an administrator's edits to a pending venue.
func (w *Workflow) ReviewVenue(ctx context.Context, id int64, edits map[string]interface{}) (models.PendingVenue, error) {
	p, err := w.Store.GetPendingVenue(ctx, id)
	if err != nil {
		return p, storeErr("get pending venue", err)
	}

	if _, err := models.ApplyEdits(&p, edits); err != nil {
		return p, invalid("", err)
	}
	if err := validate(p); err != nil {
		return p, err
	}
	if err := w.Store.UpdatePendingVenue(ctx, p); err != nil {
		if errors.Is(err, repository.ErrInUse) {
			return p, invalid("categoryId", errors.New("unknown venue category"))
		}
		return p, storeErr("update pending venue", err)
	}

	w.logger().WithFields(logrus.Fields{"kind": KindVenue, "id": id}).Info("suggestion reviewed")
	return p, nil
}

func decodeIDs(raw interface{}) ([]int64, error) {
	b, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	var ids []int64
	if err := json.Unmarshal(b, &ids); err != nil {
		return nil, errors.New("must be a list of category ids")
	}
	return ids, nil
}

// Decide dispatches an approve or reject request.
func (w *Workflow) Decide(ctx context.Context, kind Kind, id int64, action Action) (Result, error) {
	switch action {
	case ActionApprove:
		return w.Approve(ctx, kind, id)
	case ActionReject:
		return w.Reject(ctx, kind, id)
	default:
		return Result{}, invalid("action", ErrUnknownAction)
	}
}

// Approve moves a pending record into the live table as an active record.
// The live insert happens before the pending delete; if the delete finds the
// record already gone the insert is undone and ErrNotFound returned.
func (w *Workflow) Approve(ctx context.Context, kind Kind, id int64) (Result, error) {
	var res Result
	var err error
	switch kind {
	case KindEvent:
		res, err = w.approveEvent(ctx, id)
	case KindVenue:
		res, err = w.approveVenue(ctx, id)
	default:
		return Result{}, invalid("kind", fmt.Errorf("unknown kind %q", kind))
	}
	w.track(kind, ActionApprove, res, err)
	return res, err
}

func (w *Workflow) approveEvent(ctx context.Context, id int64) (Result, error) {
	p, err := w.Store.GetPendingEvent(ctx, id)
	if err != nil {
		return Result{}, storeErr("get pending event", err)
	}

	set := p.CategorySet()
	if err := w.checkCategories(ctx, set); err != nil {
		return Result{}, err
	}
	e := p.ToEvent(set)
	if err := validate(e); err != nil {
		return Result{}, err
	}

	liveID, err := w.Store.CreateEvent(ctx, e, set)
	if err != nil {
		return Result{}, &StoreError{Op: "create event", Err: err}
	}

	res := Result{Kind: KindEvent, PendingID: id, LiveID: liveID, Action: ActionApprove, Message: "Event approved"}
	err = w.Store.DeletePendingEvent(ctx, id)
	return w.finishApprove(ctx, res, err, w.Store.DeleteEvent)
}

func (w *Workflow) approveVenue(ctx context.Context, id int64) (Result, error) {
	p, err := w.Store.GetPendingVenue(ctx, id)
	if err != nil {
		return Result{}, storeErr("get pending venue", err)
	}

	v := p.ToVenue()
	if err := validate(v); err != nil {
		return Result{}, err
	}

	liveID, err := w.Store.CreateVenue(ctx, v)
	if err != nil {
		if errors.Is(err, repository.ErrInUse) {
			return Result{}, invalid("categoryId", errors.New("unknown venue category"))
		}
		return Result{}, &StoreError{Op: "create venue", Err: err}
	}

	res := Result{Kind: KindVenue, PendingID: id, LiveID: liveID, Action: ActionApprove, Message: "Venue approved"}
	err = w.Store.DeletePendingVenue(ctx, id)
	return w.finishApprove(ctx, res, err, w.Store.DeleteVenue)
}

// finishApprove settles the outcome of the pending delete that completes an
// approval. deleteErr is the result of that delete; undo removes the live
// record when another decision already consumed the pending one.
func (w *Workflow) finishApprove(ctx context.Context, res Result, deleteErr error, undo func(context.Context, int64) error) (Result, error) {
	log := w.logger().WithFields(logrus.Fields{"kind": res.Kind, "id": res.PendingID, "liveId": res.LiveID})

	switch {
	case deleteErr == nil:
	case errors.Is(deleteErr, repository.ErrNotFound):
		if err := undo(ctx, res.LiveID); err != nil {
			log.WithError(err).Error("could not remove live record after losing approval race")
		}
		log.Warn("pending record already decided; approval undone")
		return Result{}, ErrNotFound
	default:
		res.Warning = fmt.Sprintf("approved, but the pending record could not be removed: %v", deleteErr)
		log.WithError(deleteErr).Warn("approved record left in pending table")
	}

	log.Info("suggestion approved")
	w.notify(ctx, res.Kind)
	return res, nil
}

// Reject deletes a pending record.
func (w *Workflow) Reject(ctx context.Context, kind Kind, id int64) (Result, error) {
	res := Result{Kind: kind, PendingID: id, Action: ActionReject}

	var err error
	switch kind {
	case KindEvent:
		res.Message = "Event rejected"
		err = w.Store.DeletePendingEvent(ctx, id)
	case KindVenue:
		res.Message = "Venue rejected"
		err = w.Store.DeletePendingVenue(ctx, id)
	default:
		return Result{}, invalid("kind", fmt.Errorf("unknown kind %q", kind))
	}
	if err != nil {
		err = storeErr("delete pending "+string(kind), err)
		w.track(kind, ActionReject, Result{}, err)
		return Result{}, err
	}

	w.logger().WithFields(logrus.Fields{"kind": kind, "id": id}).Info("suggestion rejected")
	w.track(kind, ActionReject, res, nil)
	w.notify(ctx, kind)
	return res, nil
}

func (w *Workflow) track(kind Kind, action Action, res Result, err error) {
	var ve *ValidationError
	outcome := "ok"
	switch {
	case errors.Is(err, ErrNotFound):
		outcome = "not_found"
	case errors.As(err, &ve):
		outcome = "invalid"
	case err != nil:
		outcome = "error"
	case res.Warning != "":
		outcome = "warning"
	}
	metrics.TrackDecision(string(kind), string(action), outcome)
}
