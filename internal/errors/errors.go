package errors

import "fmt"

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// AppError carries an error code, an operator-facing message, a user-facing
// message, and retry semantics. It is the only error type handlers are
// expected to surface to members.
type AppError struct {
	Code        string
	Message     string
	UserMessage string
	Severity    Severity
	Retryable   bool
	cause       error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}

	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.cause
}

func (e *AppError) Cause() error {
	return e.Unwrap()
}

// NewNotVerifiedError marks a user as ineligible for awards until they link
// a Twitter handle. Permanent until the user verifies, never retried.
func NewNotVerifiedError(discordID string) *AppError {
	return &AppError{
		Code:        "E100",
		Message:     fmt.Sprintf("user %s has no linked Twitter handle", discordID),
		UserMessage: "You need to verify first. Link your Twitter handle with /verify.",
		Severity:    SeverityLow,
		Retryable:   false,
		cause:       nil,
	}
}

// NewStoreUnavailableError wraps a failed ledger store call. The caller may
// retry the whole user action later; the core never retries on its own.
func NewStoreUnavailableError(cause error) *AppError {
	var underlyingMsg string
	if cause != nil {
		underlyingMsg = cause.Error()
	}

	return &AppError{
		Code:        "E200",
		Message:     fmt.Sprintf("ledger store unavailable: %s", underlyingMsg),
		UserMessage: "Something went wrong on our side. Please try again later.",
		Severity:    SeverityHigh,
		Retryable:   true,
		cause:       cause,
	}
}

// NewSourceUnauthorizedError marks an engagement fetch denied by the source.
// Post-scoped denials skip only that post for the current cycle.
func NewSourceUnauthorizedError(postID string, cause error) *AppError {
	msg := "engagement source denied access"
	if postID != "" {
		msg = fmt.Sprintf("engagement source denied access to post %s", postID)
	}

	return &AppError{
		Code:        "E300",
		Message:     msg,
		UserMessage: "",
		Severity:    SeverityMedium,
		Retryable:   true,
		cause:       cause,
	}
}

// NewSourceUnavailableError wraps any other engagement source failure.
func NewSourceUnavailableError(cause error) *AppError {
	return &AppError{
		Code:        "E310",
		Message:     fmt.Sprintf("engagement source unavailable: %v", cause),
		UserMessage: "",
		Severity:    SeverityMedium,
		Retryable:   true,
		cause:       cause,
	}
}

// NewInvalidConfigError rejects a malformed configuration change. The message
// must describe what is legal; nothing is mutated.
func NewInvalidConfigError(msg string) *AppError {
	return &AppError{
		Code:        "E400",
		Message:     msg,
		UserMessage: msg,
		Severity:    SeverityLow,
		Retryable:   false,
		cause:       nil,
	}
}

// NewRateLimitError reports that a user exceeded the per-user command limit.
func NewRateLimitError(retryAfter int) *AppError {
	return &AppError{
		Code:        "E500",
		Message:     fmt.Sprintf("rate limit exceeded: retry after %d seconds", retryAfter),
		UserMessage: fmt.Sprintf("Too many requests. Try again in %d seconds.", retryAfter),
		Severity:    SeverityLow,
		Retryable:   false,
		cause:       nil,
	}
}
