package http

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// maxErrorBody limits how much of an error response is kept in StatusError
const maxErrorBody = 512

// StatusError is returned when a response has an unexpected status code
type StatusError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status code: %d %s", e.StatusCode, e.Status)
	}
	return fmt.Sprintf("unexpected status code: %d %s: %s", e.StatusCode, e.Status, e.Body)
}

// ReadResponseBody reads and closes HTTP response body
func ReadResponseBody(resp *http.Response) ([]byte, error) {
	defer closeBody(resp)
	return io.ReadAll(resp.Body)
}

// DecodeJSONResponse decodes a 200 OK JSON response into target and closes the body
func DecodeJSONResponse(resp *http.Response, target any) error {
	defer closeBody(resp)

	if err := EnsureStatusOK(resp); err != nil {
		return err
	}

	return json.NewDecoder(resp.Body).Decode(target)
}

// CheckStatusCode validates HTTP response status code
func CheckStatusCode(resp *http.Response, expectedCodes ...int) error {
	for _, code := range expectedCodes {
		if resp.StatusCode == code {
			return nil
		}
	}
	return newStatusError(resp)
}

// GetContentType returns the content type of the response
func GetContentType(resp *http.Response) string {
	return resp.Header.Get("Content-Type")
}

// EnsureStatusOK checks if the response status is 200 OK. The body is left open.
func EnsureStatusOK(resp *http.Response) error {
	return CheckStatusCode(resp, http.StatusOK)
}

// newStatusError captures the start of the body so API error messages reach the logs
func newStatusError(resp *http.Response) *StatusError {
	statusErr := &StatusError{
		StatusCode: resp.StatusCode,
		Status:     http.StatusText(resp.StatusCode),
	}

	if resp.Body != nil {
		snippet, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if err == nil {
			statusErr.Body = strings.TrimSpace(string(snippet))
		}
	}

	return statusErr
}

func closeBody(resp *http.Response) {
	if closeErr := resp.Body.Close(); closeErr != nil {
		slog.Error("Failed to close response body", "error", closeErr)
	}
}
