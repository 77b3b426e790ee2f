package backend

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

const (
	contentType     = "application/json"
	contentEncoding = "gzip"
)

func (c *Client) postJSON(ctx context.Context, op, url string, payload, target any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%s: encode request: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	req = c.setHeaders(req)
	req.Header.Set("Content-Type", contentType)

	return c.do(op, req, target)
}

func (c *Client) postFile(ctx context.Context, op, url, field, filename string, content io.Reader, target any) error {
	var b bytes.Buffer
	w := multipart.NewWriter(&b)

	part, err := w.CreateFormFile(field, filename)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err = io.Copy(part, content); err != nil {
		return fmt.Errorf("%s: read file: %w", op, err)
	}
	w.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &b)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	req = c.setHeaders(req)
	req.Header.Set("Content-Type", w.FormDataContentType())

	return c.do(op, req, target)
}

func (c *Client) getJSON(ctx context.Context, op, url string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	req = c.setHeaders(req)
	req.Header.Set("Accept", contentType)

	return c.do(op, req, target)
}

// do sends req and decodes a 2xx body into target. Failures are classified as
// *NetworkError (no response) or *RemoteError (any other outcome).
func (c *Client) do(op string, req *http.Request, target any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(req.Context()); err != nil {
			return &NetworkError{Op: op, Err: err}
		}
	}

	resp, err := c.request(req)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return &NetworkError{Op: op, Err: err}
		}
		defer gzipReader.Close()
		reader = gzipReader
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}

	c.logger.Debug("got response", zap.String("operation", op), zap.Int("status", resp.StatusCode), zap.Int("bytes", len(data)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return remoteError(op, resp, data)
	}

	if target == nil {
		return nil
	}

	if err := json.Unmarshal(data, target); err != nil {
		return &RemoteError{
			Op:      op,
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("malformed response: %v", err),
		}
	}

	return nil
}

func (c *Client) request(req *http.Request) (*http.Response, error) {
	c.logger.Debug("make request", zap.String("method", req.Method), zap.String("url", req.URL.String()))
	if c.breaker == nil {
		return c.HTTPClient.Do(req)
	}

	return c.breaker.Execute(func() (*http.Response, error) {
		return c.HTTPClient.Do(req)
	})
}

func (c *Client) setHeaders(req *http.Request) *http.Request {
	if c.token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
	}
	if id := sessionIDFrom(req.Context()); id != "" {
		req.Header.Set(sessionHeaderKey, id)
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept-Encoding", contentEncoding)

	return req
}

// remoteError extracts the "detail" field of an error body. A string detail is
// used as is, any other JSON value is compacted. Without one a generic message
// with the status is used.
func remoteError(op string, resp *http.Response, body []byte) *RemoteError {
	message := ""

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err == nil {
		if raw, ok := payload["detail"]; ok {
			message = detailMessage(raw)
		}
	}

	if message == "" {
		message = fmt.Sprintf("request failed (%s)", resp.Status)
	}

	return &RemoteError{Op: op, Status: resp.StatusCode, Message: message}
}

func detailMessage(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}

	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return ""
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return ""
	}

	return buf.String()
}
