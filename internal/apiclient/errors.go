package apiclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// StatusError is a response the backend produced with a non-2xx status.
type StatusError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend error [%d] %s: %s", e.StatusCode, e.Code, e.Message)
}

// maxErrorBody bounds how much of an error body is read.
const maxErrorBody = 64 << 10

// decodeError understands the body shapes the backend emits:
//
//	{"message": "..."}                       plain
//	{"message": ["a", "b"], "error": "..."}  validation pipe
//	{"error": {"code": "...", "message": "..."}}
//	{"error": "..."}
func decodeError(resp *http.Response) error {
	se := &StatusError{
		StatusCode: resp.StatusCode,
		Code:       codeForStatus(resp.StatusCode),
		Message:    http.StatusText(resp.StatusCode),
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return se
	}

	var body map[string]json.RawMessage
	if err := json.Unmarshal(raw, &body); err != nil {
		if text := strings.TrimSpace(string(raw)); text != "" && !strings.HasPrefix(text, "<") {
			se.Message = text
		}
		return se
	}

	if msg := decodeMessage(body["message"]); msg != "" {
		se.Message = msg
		if errText := decodeMessage(body["error"]); errText != "" {
			se.Code = errText
		}
		return se
	}

	if rawErr, ok := body["error"]; ok {
		var nested struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal(rawErr, &nested); err == nil && nested.Message != "" {
			se.Message = nested.Message
			if nested.Code != "" {
				se.Code = nested.Code
			}
			return se
		}
		if msg := decodeMessage(rawErr); msg != "" {
			se.Message = msg
		}
	}
	return se
}

// decodeMessage accepts a JSON string or an array of strings.
func decodeMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.Join(list, "; ")
	}
	return ""
}

func codeForStatus(status int) string {
	switch {
	case status == http.StatusBadRequest:
		return "bad_request"
	case status == http.StatusUnauthorized:
		return "unauthorized"
	case status == http.StatusForbidden:
		return "forbidden"
	case status == http.StatusNotFound:
		return "not_found"
	case status == http.StatusConflict:
		return "conflict"
	case status == http.StatusUnprocessableEntity:
		return "validation_failed"
	case status >= 500:
		return "backend_error"
	default:
		return "request_failed"
	}
}
