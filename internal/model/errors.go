package model

import (
	"context"
	"errors"
	"fmt"
)

// FailureKind classifies why a request cycle failed.
type FailureKind int

const (
	KindNetwork FailureKind = iota
	KindInput
	KindAuth
	KindMalformed
)

func (k FailureKind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindAuth:
		return "auth"
	case KindMalformed:
		return "malformed"
	default:
		return "network"
	}
}

// User-facing failure messages.
const (
	MsgInvalidBudget   = "Please enter a valid budget"
	MsgCityTooLong     = "Please enter a shorter city name"
	MsgAuthRequired    = "Please log in to generate a budget plan"
	MsgRequestFailed   = "Failed to generate budget plan"
	MsgTimedOut        = "Request timed out, please try again"
	MsgRateLimited     = "Too many requests, please wait and try again"
	MsgInvalidResponse = "Invalid response from backend"
)

// ErrTimeout marks a network failure caused by the request deadline.
var ErrTimeout = errors.New("request timed out")

// ErrRateLimited marks a network failure caused by backend throttling.
var ErrRateLimited = errors.New("rate limited")

// Failure is a classified error from any stage of a request cycle.
type Failure struct {
	Kind FailureKind
	Err  error
}

func (f *Failure) Error() string {
	if f.Err == nil {
		return f.Kind.String() + " failure"
	}
	return fmt.Sprintf("%s failure: %v", f.Kind, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

// Fail wraps err with a failure kind.
func Fail(kind FailureKind, err error) error {
	return &Failure{Kind: kind, Err: err}
}

// KindOf classifies err. Unclassified errors count as network failures,
// as do context deadline errors.
func KindOf(err error) FailureKind {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return KindNetwork
}

// UserMessage returns the text shown in the Failed state for err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	switch KindOf(err) {
	case KindInput:
		if errors.Is(err, ErrCityTooLong) {
			return MsgCityTooLong
		}
		return MsgInvalidBudget
	case KindAuth:
		return MsgAuthRequired
	case KindMalformed:
		return MsgInvalidResponse
	}
	switch {
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return MsgTimedOut
	case errors.Is(err, ErrRateLimited):
		return MsgRateLimited
	}
	return MsgRequestFailed
}
