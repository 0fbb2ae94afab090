// Package session is the single entry point view logic uses to read and
// write records. Reads are cache-first with an opportunistic remote
// refresh; writes go to the store and, when the server is unreachable,
// into the pending-operation ledger.
package session

import (
	"context"
	"encoding/json"
	"errors"
	stdlog "log"
	"time"

	"github.com/google/uuid"

	"github.com/satchelhq/satchel/internal/connectivity"
	"github.com/satchelhq/satchel/internal/models"
	"github.com/satchelhq/satchel/internal/reconcile"
	"github.com/satchelhq/satchel/internal/remote"
	"github.com/satchelhq/satchel/internal/store"
)

// ErrNotFoundOffline indicates the requested record was never cached and
// the server is unreachable. Distinct from an empty result: the content
// exists but cannot be shown until connectivity returns.
var ErrNotFoundOffline = errors.New("not cached and currently offline")

// WriteStatus tells the caller what actually happened to a write.
type WriteStatus int

const (
	// WriteConfirmed means the server accepted the action immediately.
	WriteConfirmed WriteStatus = iota
	// WritePending means the action is durably queued for reconciliation.
	// It must never be reported as confirmed.
	WritePending
)

// Session wires the store, gateway and monitor into the facade the rest
// of the application talks to. One Session per running client, explicitly
// constructed and injected at startup.
type Session struct {
	store      *store.Store
	gateway    remote.Gateway
	monitor    *connectivity.Monitor
	reconciler *reconcile.Reconciler
}

// New creates a session facade.
func New(st *store.Store, gw remote.Gateway, mon *connectivity.Monitor) *Session {
	return &Session{
		store:      st,
		gateway:    gw,
		monitor:    mon,
		reconciler: reconcile.New(st, gw, mon),
	}
}

// Store exposes the underlying record store.
func (s *Session) Store() *store.Store {
	return s.store
}

// Reconciler exposes the reconciler, for running its transition loop.
func (s *Session) Reconciler() *reconcile.Reconciler {
	return s.reconciler
}

// ReadCourses returns the course list. Online, the remote copy is fetched,
// cached and returned; on remote failure or offline the cached copy is
// returned with stale=true. Being offline is an expected state, not an
// error: only an empty cache while offline surfaces ErrNotFoundOffline.
func (s *Session) ReadCourses(ctx context.Context) (courses []models.Course, stale bool, err error) {
	if s.monitor.Online() {
		fetched, ferr := s.gateway.ListCourses(ctx)
		if ferr == nil {
			if cerr := s.store.UpsertCourses(fetched); cerr != nil {
				stdlog.Printf("cache courses: %v", cerr)
			}
			return fetched, false, nil
		}
		stdlog.Printf("list courses from remote: %v", ferr)
	}

	cached, err := s.store.ListCourses()
	if err != nil {
		return nil, true, err
	}
	if len(cached) == 0 {
		return nil, true, ErrNotFoundOffline
	}
	return cached, true, nil
}

// ReadAssessments returns the quizzes of a course, cache-first.
func (s *Session) ReadAssessments(ctx context.Context, courseID string) (assessments []models.Assessment, stale bool, err error) {
	if s.monitor.Online() {
		fetched, ferr := s.gateway.ListAssessments(ctx, courseID)
		if ferr == nil {
			if cerr := s.store.UpsertAssessments(fetched); cerr != nil {
				stdlog.Printf("cache assessments: %v", cerr)
			}
			return fetched, false, nil
		}
		stdlog.Printf("list assessments from remote: %v", ferr)
	}

	cached, err := s.store.GetAssessmentsByCourse(courseID)
	if err != nil {
		return nil, true, err
	}
	if len(cached) == 0 {
		return nil, true, ErrNotFoundOffline
	}
	return cached, true, nil
}

// ReadAssessmentDetail returns the complete question set for an
// assessment. Details are cached as a complete unit so an attempt begun
// offline has every question up front.
func (s *Session) ReadAssessmentDetail(ctx context.Context, assessmentID string) (questions []models.Question, stale bool, err error) {
	if s.monitor.Online() {
		fetched, ferr := s.gateway.FetchAssessmentDetail(ctx, assessmentID)
		if ferr == nil && len(fetched) > 0 {
			if cerr := s.store.PutAssessmentDetail(assessmentID, fetched); cerr != nil {
				stdlog.Printf("cache assessment detail: %v", cerr)
			}
			return fetched, false, nil
		}
		if ferr != nil {
			stdlog.Printf("fetch assessment detail from remote: %v", ferr)
		}
	}

	detail, err := s.store.GetAssessmentDetail(assessmentID)
	if err != nil {
		return nil, true, err
	}
	if detail == nil {
		return nil, true, ErrNotFoundOffline
	}
	qs, err := detail.Questions()
	if err != nil {
		return nil, true, err
	}
	return qs, true, nil
}

// WriteAttempt records a completed attempt. The pending operation is
// durably stored first in all cases; when online an immediate dispatch is
// attempted so the caller does not wait for the next reconciliation pass.
func (s *Session) WriteAttempt(ctx context.Context, assessmentID string, answers map[string]models.Answer) (WriteStatus, error) {
	payload := models.AttemptPayload{AssessmentID: assessmentID, Answers: answers}
	op := &models.PendingOperation{
		ID:        uuid.NewString(),
		Kind:      models.OpSubmitAttempt,
		TargetKey: assessmentID,
	}
	if err := encodePayload(op, payload); err != nil {
		return WritePending, err
	}
	if err := s.store.AppendOperation(op); err != nil {
		return WritePending, err
	}

	if !s.monitor.Online() {
		return WritePending, nil
	}

	conf, err := s.gateway.SubmitAttempt(ctx, &payload)
	if err != nil {
		// Left for the reconciler; the action is already durable.
		stdlog.Printf("immediate attempt dispatch: %v", err)
		return WritePending, nil
	}
	if err := s.store.MarkOperationSynced(op.ID, conf.Timestamp); err != nil {
		return WriteConfirmed, err
	}
	if err := s.store.MarkAssessmentCompleted(assessmentID); err != nil {
		stdlog.Printf("mark assessment completed: %v", err)
	}
	return WriteConfirmed, nil
}

// SendMessage queues an outgoing message and appends an optimistic local
// echo so the conversation reflects it immediately. When the server has
// no message channel both records are born synced: there is nothing to
// reconcile.
func (s *Session) SendMessage(ctx context.Context, conversationKey, body string) (WriteStatus, error) {
	localOnly := !s.gateway.SupportsMessaging()

	msg := &models.Message{
		ID:              uuid.NewString(),
		ConversationKey: conversationKey,
		Role:            models.RoleSelf,
		Body:            body,
		SentAt:          time.Now(),
		Synced:          localOnly,
	}
	if err := s.store.PutMessage(msg); err != nil {
		return WritePending, err
	}

	op := &models.PendingOperation{
		ID:        uuid.NewString(),
		Kind:      models.OpSendMessage,
		TargetKey: conversationKey,
		Synced:    localOnly,
	}
	if localOnly {
		now := time.Now()
		op.SyncedAt = &now
	}
	payload := models.MessagePayload{
		ConversationKey: conversationKey,
		Body:            body,
		MessageID:       msg.ID,
	}
	if err := encodePayload(op, payload); err != nil {
		return WritePending, err
	}
	if err := s.store.AppendOperation(op); err != nil {
		return WritePending, err
	}
	if localOnly {
		return WriteConfirmed, nil
	}

	if !s.monitor.Online() {
		return WritePending, nil
	}

	if err := s.gateway.SendMessage(ctx, conversationKey, body); err != nil {
		stdlog.Printf("immediate message dispatch: %v", err)
		return WritePending, nil
	}
	if err := s.store.MarkOperationSynced(op.ID, time.Now()); err != nil {
		return WriteConfirmed, err
	}
	if err := s.store.MarkMessageSynced(msg.ID); err != nil {
		return WriteConfirmed, err
	}
	return WriteConfirmed, nil
}

// ReadMessages returns the conversation history. Online, remote history is
// merged with local (union by ID, timestamp order, local-only kept) and
// the merged view cached.
func (s *Session) ReadMessages(ctx context.Context, conversationKey string) (msgs []models.Message, stale bool, err error) {
	local, err := s.store.GetMessagesByConversation(conversationKey)
	if err != nil {
		return nil, true, err
	}

	if !s.monitor.Online() || !s.gateway.SupportsMessaging() {
		return local, !s.monitor.Online(), nil
	}

	fetched, ferr := s.gateway.ListMessages(ctx, conversationKey)
	if ferr != nil {
		stdlog.Printf("list messages from remote: %v", ferr)
		return local, true, nil
	}

	merged := reconcile.MergeMessages(local, fetched)
	if err := s.store.PutMessages(merged); err != nil {
		stdlog.Printf("cache merged messages: %v", err)
	}
	return merged, false, nil
}

// Counterpart returns the default contact for a course, resolving it
// remotely when possible and falling back to a cached or placeholder
// contact otherwise. The placeholder is cached too, flagged, so a later
// successful resolution replaces it.
func (s *Session) Counterpart(ctx context.Context, courseID string) (*models.CounterpartContact, error) {
	if s.monitor.Online() {
		contact, err := s.gateway.ResolveCounterpart(ctx, courseID)
		if err == nil && contact != nil {
			if cerr := s.store.UpsertContact(contact); cerr != nil {
				stdlog.Printf("cache contact: %v", cerr)
			}
			return contact, nil
		}
		if err != nil {
			stdlog.Printf("resolve counterpart: %v", err)
		}
	}

	cached, err := s.store.GetContact(courseID)
	if err != nil {
		return nil, err
	}
	if cached != nil {
		return cached, nil
	}

	placeholder := &models.CounterpartContact{
		CourseID:    courseID,
		Name:        models.PlaceholderContactName,
		Placeholder: true,
	}
	if err := s.store.UpsertContact(placeholder); err != nil {
		return nil, err
	}
	return placeholder, nil
}

// ForceSync runs one reconciliation pass immediately, independent of
// connectivity transitions.
func (s *Session) ForceSync(ctx context.Context) error {
	return s.reconciler.Reconcile(ctx)
}

// StorageStats returns per-collection record counts for diagnostics.
func (s *Session) StorageStats() (*store.Stats, error) {
	return s.store.GetStats()
}

// ClearAllData wipes the local store. Used on sign-out.
func (s *Session) ClearAllData() error {
	return s.store.ClearAll()
}

func encodePayload(op *models.PendingOperation, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	op.Payload = string(data)
	return nil
}
