package domain

import (
	"fmt"
	"time"
)

// ActionType identifies the variant of an action. The set is closed; the
// executor rejects definitions outside it.
type ActionType string

const (
	ActionHTTP            ActionType = "http"
	ActionGraphQL         ActionType = "graphql"
	ActionUpdateWidget    ActionType = "updateWidget"
	ActionNavigate        ActionType = "navigate"
	ActionOpenModal       ActionType = "openModal"
	ActionCloseModal      ActionType = "closeModal"
	ActionShowAlert       ActionType = "showAlert"
	ActionShowToast       ActionType = "showToast"
	ActionLocalStorage    ActionType = "localStorage"
	ActionCopyToClipboard ActionType = "copyToClipboard"
	ActionDownloadFile    ActionType = "downloadFile"
	ActionRunJS           ActionType = "runJS"
)

// Valid reports whether t is one of the known action variants.
func (t ActionType) Valid() bool {
	switch t {
	case ActionHTTP, ActionGraphQL, ActionUpdateWidget, ActionNavigate,
		ActionOpenModal, ActionCloseModal, ActionShowAlert, ActionShowToast,
		ActionLocalStorage, ActionCopyToClipboard, ActionDownloadFile, ActionRunJS:
		return true
	}
	return false
}

// RetryPolicy is an explicit, opt-in retry configuration. It applies only to
// the http and graphql variants; transport errors and 5xx responses are
// retryable, 4xx responses and GraphQL errors are terminal.
type RetryPolicy struct {
	// MaxAttempts is the total number of tries, including the first.
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts" mapstructure:"max_attempts"`

	// Backoff is the delay before the second attempt; it doubles after each
	// failed try.
	Backoff time.Duration `json:"backoff" yaml:"backoff" mapstructure:"backoff"`
}

// ActionDefinition is an immutable, registered action. Config is
// variant-specific and may contain {{ }} templates in its string fields.
type ActionDefinition struct {
	ID     string         `json:"id" yaml:"id" mapstructure:"id"`
	Type   ActionType     `json:"type" yaml:"type" mapstructure:"type"`
	Config map[string]any `json:"config,omitempty" yaml:"config,omitempty" mapstructure:"config"`
	Retry  *RetryPolicy   `json:"retry,omitempty" yaml:"retry,omitempty" mapstructure:"retry"`
}

// ActionResult is the single normalized outcome shape for every variant.
// No variant leaks its native error type across this boundary.
type ActionResult struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Succeed builds a successful result carrying data.
func Succeed(data any) ActionResult {
	return ActionResult{Success: true, Data: data}
}

// Failf builds a failed result with a formatted error message.
func Failf(format string, args ...any) ActionResult {
	return ActionResult{Success: false, Error: fmt.Sprintf(format, args...)}
}

// FailErr normalizes an error into a failed result.
func FailErr(err error) ActionResult {
	return ActionResult{Success: false, Error: err.Error()}
}
