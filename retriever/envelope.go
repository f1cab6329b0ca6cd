package retriever

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"store-auditor/internal/types"
)

// Keys under which proxies are known to return the fetched markup, in lookup order
var envelopeKeys = []string{"contents", "content", "html", "body", "data", "response", "result", "text"}

// attemptError is a failed retrieval attempt together with its classification
type attemptError struct {
	reason types.FailureReason
	err    error
}

func (e *attemptError) Error() string {
	return fmt.Sprintf("%s: %v", e.reason, e.err)
}

func (e *attemptError) Unwrap() error {
	return e.err
}

func failure(reason types.FailureReason, format string, args ...interface{}) *attemptError {
	return &attemptError{reason: reason, err: fmt.Errorf(format, args...)}
}

// Unwrap extracts raw markup from a transport response body
func Unwrap(body []byte, envelope types.Envelope) (string, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return "", failure(types.ReasonEmptyResponse, "empty response body")
	}

	looksJSON := trimmed[0] == '{' && json.Valid(trimmed)
	switch envelope {
	case types.EnvelopeRaw:
		return string(body), nil
	case types.EnvelopeJSON:
		if !looksJSON {
			return "", failure(types.ReasonInvalidResponse, "expected a JSON envelope")
		}
	default:
		if !looksJSON {
			return string(body), nil
		}
	}

	return unwrapJSON(trimmed, 0)
}

func unwrapJSON(data []byte, depth int) (string, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return "", failure(types.ReasonInvalidResponse, "failed to decode envelope: %v", err)
	}

	sawKey := false
	for _, key := range envelopeKeys {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		sawKey = true
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
			continue
		}

		switch raw[0] {
		case '"':
			var markup string
			if err := json.Unmarshal(raw, &markup); err != nil {
				return "", failure(types.ReasonInvalidResponse, "envelope key %q: %v", key, err)
			}
			if strings.TrimSpace(markup) != "" {
				return markup, nil
			}
		case '{':
			if depth == 0 {
				markup, err := unwrapJSON(raw, depth+1)
				var attemptErr *attemptError
				if err == nil || (errors.As(err, &attemptErr) && attemptErr.reason == types.ReasonEmptyResponse) {
					return markup, err
				}
			}
		}
	}

	if sawKey {
		return "", failure(types.ReasonEmptyResponse, "envelope contained no markup")
	}
	return "", failure(types.ReasonInvalidResponse, "envelope has none of the known markup keys")
}
