// Package remote implements the gateway to the remote course server.
// The core treats it as an injected capability: every call can fail with
// *RemoteCallError and the rest of the system must keep working when it
// does.
package remote

import (
	"context"
	"fmt"
	"time"

	"github.com/satchelhq/satchel/internal/models"
)

// RemoteCallError is the normalized failure for any gateway call. Both
// non-2xx responses and error objects embedded in an otherwise-2xx body
// are reported through it.
type RemoteCallError struct {
	Status  int
	Message string
}

func (e *RemoteCallError) Error() string {
	return fmt.Sprintf("remote call failed (status %d): %s", e.Status, e.Message)
}

// Identity is the authenticated user as reported by the server.
type Identity struct {
	UserID   string
	FullName string
}

// AuthResult is the outcome of a successful authentication.
type AuthResult struct {
	Token    string
	Identity Identity
}

// Confirmation acknowledges a submitted attempt.
type Confirmation struct {
	ConfirmationID string
	Timestamp      time.Time
}

// Gateway is the narrow interface the core uses to reach the remote
// server. Implementations must be safe for concurrent use.
type Gateway interface {
	Authenticate(ctx context.Context, username, password string) (*AuthResult, error)
	ListCourses(ctx context.Context) ([]models.Course, error)
	ListAssessments(ctx context.Context, courseID string) ([]models.Assessment, error)
	FetchAssessmentDetail(ctx context.Context, assessmentID string) ([]models.Question, error)
	SubmitAttempt(ctx context.Context, payload *models.AttemptPayload) (*Confirmation, error)
	ResolveCounterpart(ctx context.Context, courseID string) (*models.CounterpartContact, error)
	SendMessage(ctx context.Context, conversationKey, body string) error
	ListMessages(ctx context.Context, conversationKey string) ([]models.Message, error)

	// SupportsMessaging reports whether the server exposes a message
	// channel at all. When false, messaging is local-only and there is
	// nothing to reconcile for send-message operations.
	SupportsMessaging() bool
}
