package service

import (
	"context"
	"errors"
)

const (
	KindInvalidDateFormat = "InvalidDateFormat"
	KindInvalidRange      = "InvalidRange"
	KindProviderFailure   = "ProviderFailure"
	KindTimeout           = "Timeout"
	KindUnclassified      = "Unclassified"
)

// ErrorInfo is the wire-safe classification of a failure.
type ErrorInfo struct {
	Kind    string `json:"type"`
	Message string `json:"message"`
}

func (e ErrorInfo) Error() string {
	return e.Kind + ": " + e.Message
}

// classify maps a per-pair provider failure onto a wire error kind. Date and
// range validation never goes through here; those are rejected up front.
func classify(err error) ErrorInfo {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorInfo{Kind: KindTimeout, Message: err.Error()}
	}
	var ei ErrorInfo
	if errors.As(err, &ei) {
		return ei
	}
	return ErrorInfo{Kind: KindProviderFailure, Message: err.Error()}
}
