package uploader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// conflictCode is the provider-specific error code equivalent to HTTP 409:
// the target id is already in use or not yet consistent.
const conflictCode = 5409

// ConflictError marks a transient storage conflict that the retry ladder
// may resolve.
type ConflictError struct {
	Status int
	Code   int
	Body   string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("storage conflict: status=%d code=%d", e.Status, e.Code)
}

// RequestError is any non-conflict upload failure. It is terminal for the
// affected row.
type RequestError struct {
	Status int
	Code   int
	Body   string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("upload failed: status=%d code=%d body=%s", e.Status, e.Code, e.Body)
}

// uploadBody is the subset of the storage response the executor inspects:
// the success flag, error/message codes for conflict detection and the
// final asset id when present.
type uploadBody struct {
	Success *bool `json:"success"`
	Errors  []struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
	Messages []struct {
		Code int `json:"code"`
	} `json:"messages"`
	Result struct {
		ID string `json:"id"`
	} `json:"result"`
}

// Executor performs the actual byte transfer to a one-time upload URL.
type Executor struct {
	client *http.Client
}

// NewExecutor returns an Executor with a dedicated HTTP client; direct
// uploads can be large, so the timeout is generous.
func NewExecutor(timeout time.Duration) *Executor {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &Executor{client: &http.Client{Timeout: timeout}}
}

// Upload POSTs the file as one multipart request to uploadURL and
// classifies the outcome. On success it returns the final asset id from
// the response body when the provider echoes one, otherwise "".
//
// The signed policy fields issued with the intent are written as plain
// form fields before the file part; S3 POST policies ignore everything
// after the file, so the file part must come last.
//
// Classification: HTTP 409 or provider code 5409 -> *ConflictError; any
// other non-2xx status, or a parsed body with success=false ->
// *RequestError.
func (e *Executor) Upload(ctx context.Context, uploadURL string, fields map[string]string, fileName string, data []byte) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, value := range fields {
		if err := mw.WriteField(name, value); err != nil {
			return "", fmt.Errorf("building multipart body: %w", err)
		}
	}
	part, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		return "", fmt.Errorf("building multipart body: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("building multipart body: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("building multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, &buf)
	if err != nil {
		return "", fmt.Errorf("building upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("performing upload: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading upload response: %w", err)
	}

	return classify(resp.StatusCode, raw)
}

// classify decides success/conflict/failure from status code and body.
// The body is parsed as JSON when possible; otherwise the raw text is
// carried as the error body.
func classify(status int, raw []byte) (string, error) {
	var body uploadBody
	parsed := json.Unmarshal(raw, &body) == nil

	code := 0
	if parsed {
		if len(body.Errors) > 0 {
			code = body.Errors[0].Code
		} else if len(body.Messages) > 0 {
			code = body.Messages[0].Code
		}
	}

	if status == http.StatusConflict || code == conflictCode {
		return "", &ConflictError{Status: status, Code: code, Body: string(raw)}
	}

	success := status >= 200 && status < 300
	if success && parsed && body.Success != nil && !*body.Success {
		success = false
	}
	if !success {
		return "", &RequestError{Status: status, Code: code, Body: string(raw)}
	}

	if parsed {
		return body.Result.ID, nil
	}
	return "", nil
}
