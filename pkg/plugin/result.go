package plugin

import (
	"fmt"
	"time"
)

// ResultStatus classifies the outcome of a capability execution
type ResultStatus string

const (
	StatusSuccess             ResultStatus = "success"
	StatusError               ResultStatus = "error"
	StatusTimeout             ResultStatus = "timeout"
	StatusCancelled           ResultStatus = "cancelled"
	StatusPendingConfirmation ResultStatus = "pending_confirmation"
)

// Result is the uniform outcome of a capability execution. Every execution
// path terminates in a Result; error returns are reserved for infrastructure
// failures that prevented an execution from being attempted at all.
type Result struct {
	Success       bool           `json:"success"`
	Status        ResultStatus   `json:"status"`
	Data          any            `json:"data,omitempty"`
	RawOutput     string         `json:"raw_output,omitempty"`
	ErrorMessage  string         `json:"error_message,omitempty"`
	ErrorCode     string         `json:"error_code,omitempty"`
	ExecutionTime float64        `json:"execution_time,omitempty"`
	Timestamp     time.Time      `json:"timestamp"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// SuccessResult builds a successful result carrying structured data
func SuccessResult(data any) *Result {
	return &Result{
		Success:   true,
		Status:    StatusSuccess,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
}

// ErrorResult builds a failed result with a machine-readable code
func ErrorResult(message, code string) *Result {
	return &Result{
		Success:      false,
		Status:       StatusError,
		ErrorMessage: message,
		ErrorCode:    code,
		Timestamp:    time.Now().UTC(),
	}
}

// TimeoutResult builds a result reporting that execution exceeded its limit
func TimeoutResult(seconds float64) *Result {
	return &Result{
		Success:       false,
		Status:        StatusTimeout,
		ErrorMessage:  fmt.Sprintf("execution timed out after %gs", seconds),
		ErrorCode:     "TIMEOUT",
		ExecutionTime: seconds,
		Timestamp:     time.Now().UTC(),
	}
}

// CancelledResult builds a result for an execution cancelled by the caller
func CancelledResult() *Result {
	return &Result{
		Success:      false,
		Status:       StatusCancelled,
		ErrorMessage: "execution cancelled",
		ErrorCode:    "CANCELLED",
		Timestamp:    time.Now().UTC(),
	}
}

// PendingConfirmation builds a result asking the caller to confirm the action
// before it runs. The original parameters are echoed so the caller can replay
// the request once confirmed.
func PendingConfirmation(action string, params map[string]any) *Result {
	return &Result{
		Success: false,
		Status:  StatusPendingConfirmation,
		Data: map[string]any{
			"action":     action,
			"parameters": params,
			"message":    fmt.Sprintf("confirmation required before executing %s", action),
		},
		Timestamp: time.Now().UTC(),
	}
}
