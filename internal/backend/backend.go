package backend

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	apiURL           = "http://localhost:8000"
	userAgent        = "spigell/hirescore"
	defaultTimeout   = 30 * time.Second
	healthPath       = "/health"
	jobPath          = "/ingest/jd"
	resumeTextPath   = "/ingest/resume"
	resumeFilePath   = "/ingest/resume-file"
	quizStartPath    = "/quiz/start"
	quizGradePath    = "/quiz/grade"
	matchPath        = "/match"
	resumeFileField  = "file"
	sessionHeaderKey = "X-Session-ID"
)

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	APIURL    string
	UserAgent string
	Token     string
	Timeout   time.Duration
	Breaker   *BreakerConfig
	// RatePerMinute limits outgoing requests. Zero disables the limiter.
	RatePerMinute int
	Burst         int
}

// Client talks to the matching service over JSON.
type Client struct {
	token      string
	logger     *zap.Logger
	breaker    *gobreaker.CircuitBreaker[*http.Response]
	limiter    *rate.Limiter
	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
}

func New(logger *zap.Logger, opts Options) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	base := strings.TrimRight(strings.TrimSpace(opts.APIURL), "/")
	if base == "" {
		base = apiURL
	}

	ua := strings.TrimSpace(opts.UserAgent)
	if ua == "" {
		ua = userAgent
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	c := &Client{
		token:  strings.TrimSpace(opts.Token),
		logger: logger,
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
		UserAgent: ua,
		APIURL:    base,
		breaker:   newBreaker(opts.Breaker, logger),
	}

	if opts.RatePerMinute > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(float64(opts.RatePerMinute)/60.0), burst)
	}

	return c
}

// Health reports nil when the service answers with either {"status":"ok"} or {"ok":true}.
func (c *Client) Health(ctx context.Context) error {
	return c.health(ctx)
}

func (c *Client) SaveJob(ctx context.Context, req JobRequest) (*JobResponse, error) {
	var resp JobResponse
	if err := c.postJSON(ctx, OpSaveJob, c.url(jobPath), req, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

func (c *Client) SaveResumeText(ctx context.Context, req ResumeTextRequest) (*ResumeResponse, error) {
	var resp ResumeResponse
	if err := c.postJSON(ctx, OpSaveResume, c.url(resumeTextPath), req, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

// UploadResume sends the file as multipart form data. Size and type checks are the caller's job.
func (c *Client) UploadResume(ctx context.Context, filename string, content io.Reader) (*ResumeResponse, error) {
	var resp ResumeResponse
	if err := c.postFile(ctx, OpUploadResume, c.url(resumeFilePath), resumeFileField, filename, content, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

func (c *Client) StartQuiz(ctx context.Context, req QuizStartRequest) (*Quiz, error) {
	var resp Quiz
	if err := c.postJSON(ctx, OpStartQuiz, c.url(quizStartPath), req, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

func (c *Client) GradeQuiz(ctx context.Context, req GradeRequest) (*Grading, error) {
	var resp Grading
	if err := c.postJSON(ctx, OpGradeQuiz, c.url(quizGradePath), req, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

func (c *Client) Match(ctx context.Context, req MatchRequest) (*MatchResult, error) {
	var resp MatchResult
	if err := c.postJSON(ctx, OpMatch, c.url(matchPath), req, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

func (c *Client) url(path string) string {
	return fmt.Sprintf("%s%s", c.APIURL, path)
}

type sessionKey struct{}

// WithSessionID attaches the session id sent as X-Session-ID on every request made with ctx.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionKey{}, id)
}

func sessionIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey{}).(string)
	return id
}
