// Package reconcile replays the pending-operation ledger against the
// remote gateway when connectivity returns and merges remote state into
// the local store.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	stdlog "log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/satchelhq/satchel/internal/connectivity"
	"github.com/satchelhq/satchel/internal/models"
	"github.com/satchelhq/satchel/internal/remote"
	"github.com/satchelhq/satchel/internal/store"
)

// DefaultConcurrency caps how many independent targets are drained at
// once. Backpressure, not correctness: within one target replay is always
// sequential.
const DefaultConcurrency = 4

// PartialSyncError reports a drain that confirmed some ledger entries but
// not all. Not fatal: the remaining entries are retried on the next
// transition.
type PartialSyncError struct {
	Synced int
	Failed int
}

func (e *PartialSyncError) Error() string {
	return fmt.Sprintf("reconciliation partial: %d synced, %d still pending", e.Synced, e.Failed)
}

// Reconciler drains the ledger and refreshes cached remote state.
type Reconciler struct {
	store       *store.Store
	gateway     remote.Gateway
	monitor     *connectivity.Monitor
	concurrency int
}

// New creates a reconciler.
func New(st *store.Store, gw remote.Gateway, mon *connectivity.Monitor) *Reconciler {
	return &Reconciler{
		store:       st,
		gateway:     gw,
		monitor:     mon,
		concurrency: DefaultConcurrency,
	}
}

// Run subscribes to connectivity transitions and drains the ledger on
// every offline-to-online edge until the context ends. An online-to-
// offline edge mid-drain does not abort in-flight calls; they finish or
// fail naturally and the ledger state makes the next pass safe to resume.
func (r *Reconciler) Run(ctx context.Context) {
	transitions, unsubscribe := r.monitor.Subscribe()
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case t, ok := <-transitions:
			if !ok {
				return
			}
			if !t.Online {
				continue
			}
			if err := r.Reconcile(ctx); err != nil {
				stdlog.Printf("reconcile after online transition: %v", err)
			}
		}
	}
}

// Reconcile performs one full pass: ledger drain, then cache refresh.
// A partial drain does not prevent the refresh.
func (r *Reconciler) Reconcile(ctx context.Context) error {
	drainErr := r.Drain(ctx)

	if err := r.RefreshCache(ctx); err != nil {
		stdlog.Printf("refresh cache: %v", err)
	}

	if err := r.store.SetSyncMeta(models.SyncMetaLastSync, time.Now().Format(time.RFC3339)); err != nil {
		stdlog.Printf("record sync time: %v", err)
	}

	return drainErr
}

// Drain replays all unsynced ledger entries. Entries are grouped by
// target key; groups run concurrently under a small cap, entries within a
// group strictly in creation order. The first remote failure in a group
// stops that group for this pass so ordering is preserved, without
// blocking independent targets.
func (r *Reconciler) Drain(ctx context.Context) error {
	ops, err := r.store.ListUnsyncedOperations()
	if err != nil {
		return fmt.Errorf("list unsynced operations: %w", err)
	}
	if len(ops) == 0 {
		return nil
	}

	// Group by target, keeping creation order within each group and
	// remembering first-seen order of the groups themselves.
	groups := make(map[string][]models.PendingOperation)
	var order []string
	for _, op := range ops {
		if _, seen := groups[op.TargetKey]; !seen {
			order = append(order, op.TargetKey)
		}
		groups[op.TargetKey] = append(groups[op.TargetKey], op)
	}

	results := make([]struct{ synced, failed int }, len(order))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, key := range order {
		g.Go(func() error {
			synced, failed := r.drainTarget(gctx, groups[key])
			results[i] = struct{ synced, failed int }{synced, failed}
			return nil
		})
	}
	_ = g.Wait()

	var synced, failed int
	for _, res := range results {
		synced += res.synced
		failed += res.failed
	}
	if failed > 0 {
		return &PartialSyncError{Synced: synced, Failed: failed}
	}
	return nil
}

// drainTarget replays one target's entries sequentially, stopping at the
// first remote failure.
func (r *Reconciler) drainTarget(ctx context.Context, ops []models.PendingOperation) (synced, failed int) {
	for i := range ops {
		if err := r.dispatch(ctx, &ops[i]); err != nil {
			var callErr *remote.RemoteCallError
			if !errors.As(err, &callErr) {
				stdlog.Printf("dispatch operation %s: %v", ops[i].ID, err)
			}
			failed += len(ops) - i
			return synced, failed
		}
		synced++
	}
	return synced, failed
}

// dispatch performs the single remote call for one ledger entry and marks
// it synced immediately on success, before any other work. A crash between
// remote success and the local mark is the accepted risk window; nothing
// is allowed to widen it.
func (r *Reconciler) dispatch(ctx context.Context, op *models.PendingOperation) error {
	switch op.Kind {
	case models.OpSubmitAttempt:
		payload, err := op.DecodeAttempt()
		if err != nil {
			return err
		}
		conf, err := r.gateway.SubmitAttempt(ctx, payload)
		if err != nil {
			return err
		}
		if err := r.store.MarkOperationSynced(op.ID, conf.Timestamp); err != nil {
			return fmt.Errorf("mark operation %s synced: %w", op.ID, err)
		}
		if err := r.store.MarkAssessmentCompleted(payload.AssessmentID); err != nil {
			stdlog.Printf("mark assessment %s completed: %v", payload.AssessmentID, err)
		}
		return nil

	case models.OpSendMessage:
		payload, err := op.DecodeMessage()
		if err != nil {
			return err
		}
		if r.gateway.SupportsMessaging() {
			if err := r.gateway.SendMessage(ctx, payload.ConversationKey, payload.Body); err != nil {
				return err
			}
		}
		// No message channel: nothing to reconcile, the entry is
		// complete as a local record.
		if err := r.store.MarkOperationSynced(op.ID, time.Now()); err != nil {
			return fmt.Errorf("mark operation %s synced: %w", op.ID, err)
		}
		if payload.MessageID != "" {
			if err := r.store.MarkMessageSynced(payload.MessageID); err != nil {
				stdlog.Printf("mark message %s synced: %v", payload.MessageID, err)
			}
		}
		return nil

	default:
		return fmt.Errorf("unknown operation kind %q for %s", op.Kind, op.ID)
	}
}

// RefreshCache re-fetches the course list and the assessments of every
// cached course. Remote records overwrite the local cache wholesale:
// remote is authoritative, last fetch wins.
func (r *Reconciler) RefreshCache(ctx context.Context) error {
	courses, err := r.gateway.ListCourses(ctx)
	if err != nil {
		return err
	}
	if err := r.store.UpsertCourses(courses); err != nil {
		return fmt.Errorf("cache courses: %w", err)
	}

	for _, course := range courses {
		assessments, err := r.gateway.ListAssessments(ctx, course.ID)
		if err != nil {
			stdlog.Printf("refresh assessments for course %s: %v", course.ID, err)
			continue
		}
		if err := r.store.UpsertAssessments(assessments); err != nil {
			return fmt.Errorf("cache assessments for course %s: %w", course.ID, err)
		}
	}
	return nil
}
