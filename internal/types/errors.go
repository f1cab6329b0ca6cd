package types

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidURLFormat   = errors.New("invalid URL format")
	ErrLocalURLRejected   = errors.New("local or private URLs cannot be audited")
	ErrRetrievalExhausted = errors.New("all retrieval transports failed")
	ErrNotAStore          = errors.New("the page does not look like an online store")
	ErrParse              = errors.New("failed to parse page markup")
)

// FailureReason classifies why a retrieval attempt failed
type FailureReason string

const (
	ReasonTimeout         FailureReason = "timeout"
	ReasonNetwork         FailureReason = "network"
	ReasonProxyErrorPage  FailureReason = "proxy-error-page"
	ReasonInvalidResponse FailureReason = "invalid-response"
	ReasonEmptyResponse   FailureReason = "empty-response"
)

var reasonMessages = map[FailureReason]string{
	ReasonTimeout:         "The store took too long to respond. Please try again in a few minutes.",
	ReasonNetwork:         "We couldn't reach the store. Please check the URL and try again.",
	ReasonProxyErrorPage:  "The store returned an error page or blocked our request.",
	ReasonInvalidResponse: "The store returned a response we couldn't read.",
	ReasonEmptyResponse:   "The store returned an empty page.",
}

// UserMessage returns the user facing message for the reason
func (r FailureReason) UserMessage() string {
	if msg, ok := reasonMessages[r]; ok {
		return msg
	}
	return "We couldn't load the store. Please try again later."
}

// RetrievalError is returned when every transport of the fallback chain failed.
// Reason is the classification of the last attempt.
type RetrievalError struct {
	Reason   FailureReason
	Attempts int
	Err      error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("%s after %d attempts (%s): %v", ErrRetrievalExhausted, e.Attempts, e.Reason, e.Err)
}

func (e *RetrievalError) Unwrap() error {
	return e.Err
}

// Is reports ErrRetrievalExhausted as matching
func (e *RetrievalError) Is(target error) bool {
	return target == ErrRetrievalExhausted
}

// UserMessage returns the message to show instead of the raw transport error
func (e *RetrievalError) UserMessage() string {
	return e.Reason.UserMessage()
}

// UserMessage maps any audit error to a user facing message
func UserMessage(err error) string {
	var retrievalErr *RetrievalError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &retrievalErr):
		return retrievalErr.UserMessage()
	case errors.Is(err, ErrInvalidURLFormat):
		return "Please enter a valid store URL, for example mystore.com."
	case errors.Is(err, ErrLocalURLRejected):
		return "Local and private network addresses cannot be audited."
	case errors.Is(err, ErrNotAStore):
		return "This doesn't look like an online store. Please enter the URL of your storefront."
	case errors.Is(err, ErrParse):
		return "We couldn't read the store's page."
	default:
		return "Something went wrong while auditing the store."
	}
}
