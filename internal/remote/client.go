package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/satchelhq/satchel/internal/models"
)

const (
	// DefaultRateLimit is requests per minute against the server.
	DefaultRateLimit = 30

	restEndpoint  = "/webservice/rest/server.php"
	tokenEndpoint = "/login/token.php"
	tokenService  = "moodle_mobile_app"
)

// Client talks the Moodle Web Services REST protocol: a single endpoint
// taking a function name plus a parameter bag, token-authenticated, with
// failures signaled either by HTTP status or by an error object embedded
// in a 2xx body.
type Client struct {
	serverURL string
	token     string
	userID    string
	messaging bool

	httpClient *http.Client
	limiter    *rate.Limiter
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the HTTP client (used by tests).
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithMessaging enables the message channel capability.
func WithMessaging(enabled bool) ClientOption {
	return func(c *Client) { c.messaging = enabled }
}

// WithIdentity sets the stored token and user ID from a previous login.
func WithIdentity(token, userID string) ClientOption {
	return func(c *Client) {
		c.token = token
		c.userID = userID
	}
}

// NewClient creates a gateway client for the given server.
func NewClient(serverURL string, rateLimit int, opts ...ClientOption) *Client {
	if rateLimit <= 0 {
		rateLimit = DefaultRateLimit
	}

	c := &Client{
		serverURL:  strings.TrimRight(serverURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(float64(rateLimit)/60.0), 2),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// wsError is the error object Moodle embeds in a 2xx body.
type wsError struct {
	Exception string `json:"exception"`
	ErrorCode string `json:"errorcode"`
	Message   string `json:"message"`
	// token.php reports failures with these fields instead.
	Error string `json:"error"`
}

// call performs one web-service function call and decodes the result.
func (c *Client) call(ctx context.Context, function string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	form := url.Values{}
	form.Set("wstoken", c.token)
	form.Set("wsfunction", function)
	form.Set("moodlewsrestformat", "json")
	for key, vals := range params {
		for _, v := range vals {
			form.Add(key, v)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.serverURL+restEndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build request for %s: %w", function, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &RemoteCallError{Status: 0, Message: err.Error()}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &RemoteCallError{Status: resp.StatusCode, Message: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &RemoteCallError{
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("%s: %s", function, strings.TrimSpace(string(body))),
		}
	}

	// A 2xx body can still carry an error object.
	var werr wsError
	if json.Unmarshal(body, &werr) == nil && werr.Exception != "" {
		return &RemoteCallError{Status: resp.StatusCode, Message: werr.Message}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &RemoteCallError{
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("%s: malformed response: %v", function, err),
		}
	}
	return nil
}

// Authenticate exchanges credentials for a token and resolves the user's
// identity. There is no fallback identity: a failed login is a failed
// login.
func (c *Client) Authenticate(ctx context.Context, username, password string) (*AuthResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)
	form.Set("service", tokenService)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.serverURL+tokenEndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RemoteCallError{Status: 0, Message: err.Error()}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RemoteCallError{Status: resp.StatusCode, Message: err.Error()}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RemoteCallError{Status: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	var tokenResp struct {
		Token string `json:"token"`
		wsError
	}
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return nil, &RemoteCallError{Status: resp.StatusCode, Message: "malformed token response"}
	}
	if tokenResp.Token == "" {
		msg := tokenResp.Error
		if msg == "" {
			msg = "no token in response"
		}
		return nil, &RemoteCallError{Status: resp.StatusCode, Message: msg}
	}

	c.token = tokenResp.Token

	var site struct {
		UserID   int64  `json:"userid"`
		FullName string `json:"fullname"`
	}
	if err := c.call(ctx, "core_webservice_get_site_info", nil, &site); err != nil {
		return nil, err
	}
	c.userID = strconv.FormatInt(site.UserID, 10)

	return &AuthResult{
		Token: tokenResp.Token,
		Identity: Identity{
			UserID:   c.userID,
			FullName: site.FullName,
		},
	}, nil
}

// wireCourse is a course row on the wire.
type wireCourse struct {
	ID                int64  `json:"id"`
	FullName          string `json:"fullname"`
	Summary           string `json:"summary"`
	Visible           int    `json:"visible"`
	EnrolledUserCount int    `json:"enrolledusercount"`
}

// ListCourses fetches the authenticated user's course list.
func (c *Client) ListCourses(ctx context.Context) ([]models.Course, error) {
	params := url.Values{}
	params.Set("userid", c.userID)

	var wire []wireCourse
	if err := c.call(ctx, "core_enrol_get_users_courses", params, &wire); err != nil {
		return nil, err
	}

	courses := make([]models.Course, 0, len(wire))
	for _, w := range wire {
		courses = append(courses, models.Course{
			ID:            strconv.FormatInt(w.ID, 10),
			Name:          w.FullName,
			Summary:       w.Summary,
			Visible:       w.Visible != 0,
			EnrolledCount: w.EnrolledUserCount,
		})
	}
	return courses, nil
}

// wireQuiz is a quiz row on the wire. Times are unix seconds, zero when
// unset; timelimit is in seconds.
type wireQuiz struct {
	ID        int64  `json:"id"`
	Course    int64  `json:"course"`
	Name      string `json:"name"`
	Intro     string `json:"intro"`
	TimeLimit int    `json:"timelimit"`
	Attempts  int    `json:"attempts"`
	TimeOpen  int64  `json:"timeopen"`
	TimeClose int64  `json:"timeclose"`
	Visible   int    `json:"visible"`
}

// ListAssessments fetches the quizzes of a course.
func (c *Client) ListAssessments(ctx context.Context, courseID string) ([]models.Assessment, error) {
	params := url.Values{}
	params.Set("courseids[0]", courseID)

	var wire struct {
		Quizzes []wireQuiz `json:"quizzes"`
	}
	if err := c.call(ctx, "mod_quiz_get_quizzes_by_courses", params, &wire); err != nil {
		return nil, err
	}

	assessments := make([]models.Assessment, 0, len(wire.Quizzes))
	for _, w := range wire.Quizzes {
		a := models.Assessment{
			ID:          strconv.FormatInt(w.ID, 10),
			CourseID:    strconv.FormatInt(w.Course, 10),
			Name:        w.Name,
			Intro:       w.Intro,
			MaxAttempts: w.Attempts,
			Visible:     w.Visible != 0,
		}
		if w.TimeLimit > 0 {
			minutes := w.TimeLimit / 60
			a.TimeLimitMinutes = &minutes
		}
		if w.TimeOpen > 0 {
			t := time.Unix(w.TimeOpen, 0)
			a.OpenAt = &t
		}
		if w.TimeClose > 0 {
			t := time.Unix(w.TimeClose, 0)
			a.CloseAt = &t
		}
		assessments = append(assessments, a)
	}
	return assessments, nil
}

// FetchAssessmentDetail fetches the complete question set for a quiz.
func (c *Client) FetchAssessmentDetail(ctx context.Context, assessmentID string) ([]models.Question, error) {
	params := url.Values{}
	params.Set("quizid", assessmentID)

	var wire []struct {
		ID      string `json:"id"`
		Text    string `json:"text"`
		Type    string `json:"type"`
		Options []struct {
			ID   string `json:"id"`
			Text string `json:"text"`
		} `json:"options"`
	}
	if err := c.call(ctx, "local_satchel_get_quiz_questions", params, &wire); err != nil {
		return nil, err
	}

	questions := make([]models.Question, 0, len(wire))
	for _, w := range wire {
		q := models.Question{
			ID:     w.ID,
			Prompt: w.Text,
			Type:   models.QuestionTypeSingleChoice,
		}
		for _, o := range w.Options {
			q.Options = append(q.Options, models.Option{ID: o.ID, Text: o.Text})
		}
		questions = append(questions, q)
	}
	return questions, nil
}

// SubmitAttempt submits a completed attempt.
func (c *Client) SubmitAttempt(ctx context.Context, payload *models.AttemptPayload) (*Confirmation, error) {
	answers, err := json.Marshal(payload.Answers)
	if err != nil {
		return nil, fmt.Errorf("encode answers: %w", err)
	}

	params := url.Values{}
	params.Set("quizid", payload.AssessmentID)
	params.Set("userid", c.userID)
	params.Set("answers", string(answers))

	var wire struct {
		AttemptID string `json:"attemptid"`
		Timestamp int64  `json:"timestamp"`
	}
	if err := c.call(ctx, "local_satchel_submit_attempt", params, &wire); err != nil {
		return nil, err
	}

	conf := &Confirmation{ConfirmationID: wire.AttemptID}
	if wire.Timestamp > 0 {
		conf.Timestamp = time.Unix(wire.Timestamp, 0)
	} else {
		conf.Timestamp = time.Now()
	}
	return conf, nil
}

// ResolveCounterpart finds the default teaching contact for a course from
// enrollment data. Returns nil when the course has no teacher enrolled.
func (c *Client) ResolveCounterpart(ctx context.Context, courseID string) (*models.CounterpartContact, error) {
	params := url.Values{}
	params.Set("courseid", courseID)

	var wire []struct {
		ID       int64  `json:"id"`
		FullName string `json:"fullname"`
		Roles    []struct {
			ShortName string `json:"shortname"`
		} `json:"roles"`
	}
	if err := c.call(ctx, "core_enrol_get_enrolled_users", params, &wire); err != nil {
		return nil, err
	}

	for _, u := range wire {
		for _, role := range u.Roles {
			if role.ShortName == "editingteacher" || role.ShortName == "teacher" {
				return &models.CounterpartContact{
					CourseID: courseID,
					UserID:   strconv.FormatInt(u.ID, 10),
					Name:     u.FullName,
				}, nil
			}
		}
	}
	return nil, nil
}

// SendMessage posts a message to a conversation. The acknowledgment is
// fire-and-forget: a nil error means the server accepted it.
func (c *Client) SendMessage(ctx context.Context, conversationKey, body string) error {
	params := url.Values{}
	params.Set("conversationid", conversationKey)
	params.Set("messages[0][text]", body)

	return c.call(ctx, "core_message_send_messages_to_conversation", params, nil)
}

// ListMessages fetches the message history of a conversation.
func (c *Client) ListMessages(ctx context.Context, conversationKey string) ([]models.Message, error) {
	params := url.Values{}
	params.Set("conversationid", conversationKey)
	params.Set("currentuserid", c.userID)

	var wire struct {
		Messages []struct {
			ID          int64  `json:"id"`
			UserIDFrom  int64  `json:"useridfrom"`
			Text        string `json:"text"`
			TimeCreated int64  `json:"timecreated"`
		} `json:"messages"`
	}
	if err := c.call(ctx, "core_message_get_conversation_messages", params, &wire); err != nil {
		return nil, err
	}

	msgs := make([]models.Message, 0, len(wire.Messages))
	for _, w := range wire.Messages {
		role := models.RoleCounterpart
		if strconv.FormatInt(w.UserIDFrom, 10) == c.userID {
			role = models.RoleSelf
		}
		msgs = append(msgs, models.Message{
			ID:              strconv.FormatInt(w.ID, 10),
			ConversationKey: conversationKey,
			Role:            role,
			Body:            w.Text,
			SentAt:          time.Unix(w.TimeCreated, 0),
			Synced:          true,
		})
	}
	return msgs, nil
}

// SupportsMessaging reports whether the message channel is enabled.
func (c *Client) SupportsMessaging() bool {
	return c.messaging
}
