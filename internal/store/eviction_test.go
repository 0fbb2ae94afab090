package store

import (
	"testing"
	"time"

	"github.com/satchelhq/satchel/internal/models"
)

func TestEvictOlderThan_OperationBoundary(t *testing.T) {
	st := testStore(t)

	cutoff := time.Now().Add(-24 * time.Hour)

	ops := []struct {
		id       string
		syncedAt time.Time
	}{
		{"op-old", cutoff.Add(-time.Second)},
		{"op-fresh", cutoff.Add(time.Second)},
	}
	for _, o := range ops {
		op := &models.PendingOperation{ID: o.id, Kind: models.OpSubmitAttempt, TargetKey: "q1"}
		if err := st.AppendOperation(op); err != nil {
			t.Fatalf("AppendOperation(%s) error = %v", o.id, err)
		}
		if err := st.MarkOperationSynced(o.id, o.syncedAt); err != nil {
			t.Fatalf("MarkOperationSynced(%s) error = %v", o.id, err)
		}
	}

	result, err := st.EvictOlderThan(cutoff)
	if err != nil {
		t.Fatalf("EvictOlderThan() error = %v", err)
	}
	if result.Operations != 1 {
		t.Errorf("Operations evicted = %d, want 1", result.Operations)
	}

	old, err := st.GetOperation("op-old")
	if err != nil {
		t.Fatalf("GetOperation() error = %v", err)
	}
	if old != nil {
		t.Error("operation confirmed one second before the cutoff should be evicted")
	}

	fresh, err := st.GetOperation("op-fresh")
	if err != nil {
		t.Fatalf("GetOperation() error = %v", err)
	}
	if fresh == nil {
		t.Error("operation confirmed one second after the cutoff should be retained")
	}
}

func TestEvictOlderThan_NeverTouchesUnsynced(t *testing.T) {
	st := testStore(t)

	op := &models.PendingOperation{
		ID:        "op-pending",
		Kind:      models.OpSendMessage,
		TargetKey: "quiz:1",
		CreatedAt: time.Now().Add(-90 * 24 * time.Hour),
	}
	if err := st.AppendOperation(op); err != nil {
		t.Fatalf("AppendOperation() error = %v", err)
	}

	result, err := st.EvictOlderThan(time.Now())
	if err != nil {
		t.Fatalf("EvictOlderThan() error = %v", err)
	}
	if result.Operations != 0 {
		t.Errorf("Operations evicted = %d, want 0", result.Operations)
	}

	got, err := st.GetOperation("op-pending")
	if err != nil {
		t.Fatalf("GetOperation() error = %v", err)
	}
	if got == nil {
		t.Error("an unconfirmed action must survive eviction regardless of age")
	}
}

func TestEvictOlderThan_MessageBoundary(t *testing.T) {
	st := testStore(t)

	cutoff := time.Now().Add(-24 * time.Hour)

	msgs := []struct {
		id       string
		storedAt time.Time
	}{
		{"m-old", cutoff.Add(-time.Second)},
		{"m-fresh", cutoff.Add(time.Second)},
	}
	for _, m := range msgs {
		msg := &models.Message{ID: m.id, ConversationKey: "quiz:1", Role: models.RoleSelf, Body: "x", SentAt: m.storedAt, Synced: true}
		if err := st.PutMessage(msg); err != nil {
			t.Fatalf("PutMessage(%s) error = %v", m.id, err)
		}
		// PutMessage stamps the write time; backdate for the boundary check.
		if err := st.Model(&models.Message{}).Where("id = ?", m.id).Update("stored_at", m.storedAt).Error; err != nil {
			t.Fatalf("backdate stored_at: %v", err)
		}
	}

	result, err := st.EvictOlderThan(cutoff)
	if err != nil {
		t.Fatalf("EvictOlderThan() error = %v", err)
	}
	if result.Messages != 1 {
		t.Errorf("Messages evicted = %d, want 1", result.Messages)
	}

	remaining, err := st.GetMessagesByConversation("quiz:1")
	if err != nil {
		t.Fatalf("GetMessagesByConversation() error = %v", err)
	}
	if len(remaining) != 1 || remaining[0].ID != "m-fresh" {
		t.Errorf("remaining messages = %v, want only m-fresh", remaining)
	}
}

func TestEvictOlderThan_CoursesExempt(t *testing.T) {
	st := testStore(t)

	if err := st.UpsertCourse(&models.Course{ID: "c1", Name: "Ancient History"}); err != nil {
		t.Fatalf("UpsertCourse() error = %v", err)
	}
	if err := st.Model(&models.Course{}).Where("id = ?", "c1").
		Update("cached_at", time.Now().Add(-365*24*time.Hour)).Error; err != nil {
		t.Fatalf("backdate cached_at: %v", err)
	}

	if _, err := st.EvictOlderThan(time.Now()); err != nil {
		t.Fatalf("EvictOlderThan() error = %v", err)
	}

	course, err := st.GetCourse("c1")
	if err != nil {
		t.Fatalf("GetCourse() error = %v", err)
	}
	if course == nil {
		t.Error("courses are exempt from eviction")
	}
}
