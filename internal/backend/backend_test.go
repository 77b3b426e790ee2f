package backend

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return New(zap.NewNop(), Options{APIURL: srv.URL, Token: "secret"})
}

func TestSaveJobSendsPayloadAndHeaders(t *testing.T) {
	var got JobRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != jobPath {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer secret" {
			t.Errorf("unexpected authorization header %q", r.Header.Get("Authorization"))
		}
		if r.Header.Get(sessionHeaderKey) != "sess-1" {
			t.Errorf("unexpected session header %q", r.Header.Get(sessionHeaderKey))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write([]byte(`{"job_id": 7}`))
	})

	ctx := WithSessionID(context.Background(), "sess-1")
	resp, err := client.SaveJob(ctx, JobRequest{Title: "Go Dev", Description: "Build services"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.JobID != 7 {
		t.Fatalf("expected job id 7, got %d", resp.JobID)
	}

	if got.Title != "Go Dev" || got.Description != "Build services" {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestMatchOmitsAbsentIDs(t *testing.T) {
	var body map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&body)
		w.Write([]byte(`{"cv_match":{"score":40,"gaps":["A"],"matched":2,"total_skills":5},"combined":70,"badge":"good_fit","recommend":{"top_cv_gaps":["X"]}}`))
	})

	quizID := int64(3)
	result, err := client.Match(context.Background(), MatchRequest{JobID: 1, QuizID: &quizID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := body["resume_id"]; ok {
		t.Fatalf("resume_id must be omitted, got %v", body)
	}
	if body["quiz_id"] != float64(3) {
		t.Fatalf("expected quiz_id 3, got %v", body["quiz_id"])
	}

	if result.Combined == nil || *result.Combined != 70 {
		t.Fatalf("unexpected combined: %v", result.Combined)
	}
	if result.CVMatch == nil || result.CVMatch.TotalSkills != 5 {
		t.Fatalf("unexpected cv match: %+v", result.CVMatch)
	}
	if result.Recommend == nil || len(result.Recommend.TopGaps) != 1 {
		t.Fatalf("unexpected recommend: %+v", result.Recommend)
	}
}

func TestUploadResumeSendsMultipartFile(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile(resumeFileField)
		if err != nil {
			t.Errorf("form file: %v", err)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		if header.Filename != "cv.txt" || string(data) != "hello" {
			t.Errorf("unexpected upload %q %q", header.Filename, data)
		}
		w.Write([]byte(`{"resume_id": 11, "chars": 5}`))
	})

	resp, err := client.UploadResume(context.Background(), "cv.txt", strings.NewReader("hello"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.ResumeID != 11 || resp.Chars != 5 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestRemoteErrorMessages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		body   string
		expect string
	}{
		{
			name:   "string detail",
			status: http.StatusNotFound,
			body:   `{"detail":"job not found"}`,
			expect: "job not found",
		},
		{
			name:   "structured detail",
			status: http.StatusUnprocessableEntity,
			body:   `{"detail": [ {"loc": ["body","n"]} ]}`,
			expect: `[{"loc":["body","n"]}]`,
		},
		{
			name:   "no detail",
			status: http.StatusInternalServerError,
			body:   `oops`,
			expect: "request failed (500 Internal Server Error)",
		},
		{
			name:   "null detail",
			status: http.StatusBadRequest,
			body:   `{"detail": null}`,
			expect: "request failed (400 Bad Request)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := client.StartQuiz(context.Background(), QuizStartRequest{JobID: 1, Questions: 5})
			var remote *RemoteError
			if !errors.As(err, &remote) {
				t.Fatalf("expected remote error, got %v", err)
			}
			if remote.Message != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, remote.Message)
			}
			if remote.Status != tt.status || remote.Op != OpStartQuiz {
				t.Fatalf("unexpected remote error: %+v", remote)
			}
		})
	}
}

func TestNetworkErrorWhenServiceIsDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := New(zap.NewNop(), Options{APIURL: url, Timeout: time.Second})
	_, err := client.SaveResumeText(context.Background(), ResumeTextRequest{Text: "cv"})
	if !IsNetwork(err) {
		t.Fatalf("expected network error, got %v", err)
	}
	if IsRemote(err) {
		t.Fatalf("network error must not be classified as remote")
	}
}

func TestHealthAcceptsBothShapes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    string
		healthy bool
	}{
		{name: "status ok", body: `{"status":"ok"}`, healthy: true},
		{name: "ok true", body: `{"ok":true,"service":"jobfit-ai"}`, healthy: true},
		{name: "ok false", body: `{"ok":false}`, healthy: false},
		{name: "status degraded", body: `{"status":"degraded"}`, healthy: false},
		{name: "ok as string", body: `{"ok":"true"}`, healthy: false},
		{name: "not an object", body: `[1,2]`, healthy: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet || r.URL.Path != healthPath {
					t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
				}
				w.Write([]byte(tt.body))
			})

			err := client.Health(context.Background())
			if tt.healthy && err != nil {
				t.Fatalf("expected healthy, got %v", err)
			}
			if !tt.healthy && err == nil {
				t.Fatalf("expected unhealthy for %s", tt.body)
			}
		})
	}
}

func TestBreakerOpensAfterTransportFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := New(zap.NewNop(), Options{
		APIURL:  url,
		Timeout: time.Second,
		Breaker: &BreakerConfig{
			Enabled:          true,
			MaxRequests:      1,
			Timeout:          time.Minute,
			MinRequests:      2,
			FailureThreshold: 0.5,
		},
	})

	for i := 0; i < 2; i++ {
		if _, err := client.SaveJob(context.Background(), JobRequest{Title: "t", Description: "d"}); err == nil {
			t.Fatalf("expected failure on attempt %d", i)
		}
	}

	if client.BreakerState() != "open" {
		t.Fatalf("expected open breaker, got %s", client.BreakerState())
	}

	_, err := client.SaveJob(context.Background(), JobRequest{Title: "t", Description: "d"})
	if !IsNetwork(err) {
		t.Fatalf("expected network error from open breaker, got %v", err)
	}
}

func TestGzipResponseIsDecoded(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		gz.Write([]byte(`{"overall": 82.5, "feedback": [{"question_id": 1, "score": 80, "tip": "more detail"}]}`))
		gz.Close()
	})

	grading, err := client.GradeQuiz(context.Background(), GradeRequest{QuizID: 1, Answers: []Answer{{QuestionID: 1, Text: "x"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if grading.Overall != 82.5 || len(grading.PerQuestion) != 1 || grading.PerQuestion[0].Tip != "more detail" {
		t.Fatalf("unexpected grading: %+v", grading)
	}
}
