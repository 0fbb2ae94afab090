package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/satchelhq/satchel/internal/models"
)

// newTestServer wires a Client against a scripted handler. The rate limit
// is generous so tests never stall on the limiter.
func newTestServer(t *testing.T, handler http.HandlerFunc, opts ...ClientOption) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	opts = append([]ClientOption{
		WithHTTPClient(srv.Client()),
		WithIdentity("test-token", "7"),
	}, opts...)
	return NewClient(srv.URL, 6000, opts...), srv
}

func TestListCourses(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("ParseForm: %v", err)
		}
		if got := r.Form.Get("wstoken"); got != "test-token" {
			t.Errorf("wstoken = %q", got)
		}
		if got := r.Form.Get("wsfunction"); got != "core_enrol_get_users_courses" {
			t.Errorf("wsfunction = %q", got)
		}
		if got := r.Form.Get("userid"); got != "7" {
			t.Errorf("userid = %q", got)
		}
		fmt.Fprint(w, `[
			{"id": 12, "fullname": "Algebra I", "summary": "Numbers", "visible": 1, "enrolledusercount": 30},
			{"id": 13, "fullname": "Hidden", "summary": "", "visible": 0, "enrolledusercount": 2}
		]`)
	})

	courses, err := client.ListCourses(context.Background())
	if err != nil {
		t.Fatalf("ListCourses() error = %v", err)
	}
	if len(courses) != 2 {
		t.Fatalf("got %d courses, want 2", len(courses))
	}
	if courses[0].ID != "12" || courses[0].Name != "Algebra I" || !courses[0].Visible {
		t.Errorf("courses[0] = %+v", courses[0])
	}
	if courses[1].Visible {
		t.Error("visible flag not mapped from 0")
	}
}

func TestListAssessments_TimeMapping(t *testing.T) {
	open := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"quizzes": [
			{"id": 1, "course": 12, "name": "Quiz 1", "intro": "Basics",
			 "timelimit": 1800, "attempts": 3,
			 "timeopen": %d, "timeclose": 0, "visible": 1}
		]}`, open.Unix())
	})

	assessments, err := client.ListAssessments(context.Background(), "12")
	if err != nil {
		t.Fatalf("ListAssessments() error = %v", err)
	}
	if len(assessments) != 1 {
		t.Fatalf("got %d assessments, want 1", len(assessments))
	}

	a := assessments[0]
	if a.TimeLimitMinutes == nil || *a.TimeLimitMinutes != 30 {
		t.Errorf("TimeLimitMinutes = %v, want 30", a.TimeLimitMinutes)
	}
	if a.OpenAt == nil || !a.OpenAt.Equal(open) {
		t.Errorf("OpenAt = %v, want %v", a.OpenAt, open)
	}
	if a.CloseAt != nil {
		t.Error("CloseAt should be nil for a zero wire value")
	}
}

func TestCall_ErrorEmbeddedIn2xxBody(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		// Moodle reports many failures as 200 with an error object.
		fmt.Fprint(w, `{"exception": "webservice_access_exception", "errorcode": "accessexception", "message": "Access control exception"}`)
	})

	_, err := client.ListCourses(context.Background())
	var callErr *RemoteCallError
	if !errors.As(err, &callErr) {
		t.Fatalf("error = %v, want *RemoteCallError", err)
	}
	if callErr.Status != http.StatusOK {
		t.Errorf("Status = %d, want 200", callErr.Status)
	}
	if callErr.Message != "Access control exception" {
		t.Errorf("Message = %q", callErr.Message)
	}
}

func TestCall_Non2xxStatus(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gateway timeout", http.StatusGatewayTimeout)
	})

	_, err := client.ListCourses(context.Background())
	var callErr *RemoteCallError
	if !errors.As(err, &callErr) {
		t.Fatalf("error = %v, want *RemoteCallError", err)
	}
	if callErr.Status != http.StatusGatewayTimeout {
		t.Errorf("Status = %d, want 504", callErr.Status)
	}
}

func TestCall_ConnectionRefused(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", 6000, WithIdentity("tok", "7"))

	_, err := client.ListCourses(context.Background())
	var callErr *RemoteCallError
	if !errors.As(err, &callErr) {
		t.Fatalf("error = %v, want *RemoteCallError", err)
	}
	if callErr.Status != 0 {
		t.Errorf("Status = %d, want 0 for a transport failure", callErr.Status)
	}
}

func TestAuthenticate(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("ParseForm: %v", err)
		}
		switch r.URL.Path {
		case "/login/token.php":
			if got := r.Form.Get("service"); got != "moodle_mobile_app" {
				t.Errorf("service = %q", got)
			}
			if r.Form.Get("username") != "student" || r.Form.Get("password") != "hunter2" {
				t.Error("credentials not forwarded")
			}
			fmt.Fprint(w, `{"token": "fresh-token"}`)
		case "/webservice/rest/server.php":
			if got := r.Form.Get("wstoken"); got != "fresh-token" {
				t.Errorf("site info called with token %q, want the fresh one", got)
			}
			fmt.Fprint(w, `{"userid": 42, "fullname": "Sam Student"}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	result, err := client.Authenticate(context.Background(), "student", "hunter2")
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if result.Token != "fresh-token" {
		t.Errorf("Token = %q", result.Token)
	}
	if result.Identity.UserID != "42" || result.Identity.FullName != "Sam Student" {
		t.Errorf("Identity = %+v", result.Identity)
	}
}

func TestAuthenticate_BadCredentialsFailClosed(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error": "Invalid login, please try again", "errorcode": "invalidlogin"}`)
	})

	result, err := client.Authenticate(context.Background(), "student", "wrong")
	if result != nil {
		t.Error("Authenticate() returned a result for rejected credentials")
	}
	var callErr *RemoteCallError
	if !errors.As(err, &callErr) {
		t.Fatalf("error = %v, want *RemoteCallError", err)
	}
	if callErr.Message != "Invalid login, please try again" {
		t.Errorf("Message = %q", callErr.Message)
	}
}

func TestSubmitAttempt(t *testing.T) {
	at := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("ParseForm: %v", err)
		}
		if got := r.Form.Get("wsfunction"); got != "local_satchel_submit_attempt" {
			t.Errorf("wsfunction = %q", got)
		}
		if got := r.Form.Get("quizid"); got != "quiz_1" {
			t.Errorf("quizid = %q", got)
		}
		if got := r.Form.Get("answers"); got == "" {
			t.Error("answers not forwarded")
		}
		fmt.Fprintf(w, `{"attemptid": "sub_42", "timestamp": %d}`, at.Unix())
	})

	payload := &models.AttemptPayload{
		AssessmentID: "quiz_1",
		Answers: map[string]models.Answer{
			"ques1": {OptionIndex: 1, OptionText: "4"},
		},
	}
	conf, err := client.SubmitAttempt(context.Background(), payload)
	if err != nil {
		t.Fatalf("SubmitAttempt() error = %v", err)
	}
	if conf.ConfirmationID != "sub_42" {
		t.Errorf("ConfirmationID = %q", conf.ConfirmationID)
	}
	if !conf.Timestamp.Equal(at) {
		t.Errorf("Timestamp = %v, want %v", conf.Timestamp, at)
	}
}

func TestResolveCounterpart(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[
			{"id": 5, "fullname": "Sam Student", "roles": [{"shortname": "student"}]},
			{"id": 9, "fullname": "Dr. Ada", "roles": [{"shortname": "editingteacher"}]}
		]`)
	})

	contact, err := client.ResolveCounterpart(context.Background(), "12")
	if err != nil {
		t.Fatalf("ResolveCounterpart() error = %v", err)
	}
	if contact == nil {
		t.Fatal("ResolveCounterpart() returned nil, want the teacher")
	}
	if contact.UserID != "9" || contact.Name != "Dr. Ada" {
		t.Errorf("contact = %+v", contact)
	}
	if contact.CourseID != "12" {
		t.Errorf("CourseID = %q", contact.CourseID)
	}
}

func TestResolveCounterpart_NoTeacherEnrolled(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"id": 5, "fullname": "Sam Student", "roles": [{"shortname": "student"}]}]`)
	})

	contact, err := client.ResolveCounterpart(context.Background(), "12")
	if err != nil {
		t.Fatalf("ResolveCounterpart() error = %v", err)
	}
	if contact != nil {
		t.Errorf("contact = %+v, want nil when no teacher is enrolled", contact)
	}
}

func TestListMessages_RoleAssignment(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"messages": [
			{"id": 1, "useridfrom": 7, "text": "mine", "timecreated": 1700000000},
			{"id": 2, "useridfrom": 9, "text": "theirs", "timecreated": 1700000060}
		]}`)
	})

	msgs, err := client.ListMessages(context.Background(), "quiz:1")
	if err != nil {
		t.Fatalf("ListMessages() error = %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if msgs[0].Role != models.RoleSelf {
		t.Errorf("msgs[0].Role = %q, want self for the authenticated user", msgs[0].Role)
	}
	if msgs[1].Role != models.RoleCounterpart {
		t.Errorf("msgs[1].Role = %q, want counterpart", msgs[1].Role)
	}
	if !msgs[0].Synced {
		t.Error("remote messages arrive settled")
	}
}

func TestSupportsMessaging(t *testing.T) {
	if NewClient("http://example.test", 0).SupportsMessaging() {
		t.Error("messaging should default to off")
	}
	if !NewClient("http://example.test", 0, WithMessaging(true)).SupportsMessaging() {
		t.Error("WithMessaging(true) not applied")
	}
}
