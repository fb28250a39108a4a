// Package apperrors defines the error kinds surfaced to API callers.
package apperrors

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindNotFound               Kind = "not_found"
	KindForbidden              Kind = "forbidden"
	KindValidation             Kind = "validation_error"
	KindBidTooLow              Kind = "bid_too_low"
	KindAuctionNotBiddable     Kind = "auction_not_biddable"
	KindAlreadyDecided         Kind = "already_decided"
	KindInvalidSignature       Kind = "invalid_signature"
	KindPaymentNotConfirmed    Kind = "payment_not_confirmed"
	KindUpstreamProvider       Kind = "upstream_provider_error"
	KindAuthenticationRequired Kind = "authentication_required"
	KindInternal               Kind = "internal_error"
)

// Error carries a kind, a human-readable message and an optional cause.
// errors.Is matches any two *Error values of the same kind, so the sentinels
// below can be used as targets regardless of message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrNotFound               = &Error{Kind: KindNotFound, Message: "not found"}
	ErrForbidden              = &Error{Kind: KindForbidden, Message: "forbidden"}
	ErrValidation             = &Error{Kind: KindValidation, Message: "invalid input"}
	ErrBidTooLow              = &Error{Kind: KindBidTooLow, Message: "bid amount too low"}
	ErrAuctionNotBiddable     = &Error{Kind: KindAuctionNotBiddable, Message: "auction is not open for bidding"}
	ErrAlreadyDecided         = &Error{Kind: KindAlreadyDecided, Message: "auction approval already decided"}
	ErrInvalidSignature       = &Error{Kind: KindInvalidSignature, Message: "invalid signature"}
	ErrPaymentNotConfirmed    = &Error{Kind: KindPaymentNotConfirmed, Message: "payment not confirmed"}
	ErrUpstreamProvider       = &Error{Kind: KindUpstreamProvider, Message: "upstream provider error"}
	ErrAuthenticationRequired = &Error{Kind: KindAuthenticationRequired, Message: "authentication required"}
)

func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

func NotFound(format string, args ...any) *Error {
	return New(KindNotFound, format, args...)
}

func Forbidden(format string, args ...any) *Error {
	return New(KindForbidden, format, args...)
}

func Validation(format string, args ...any) *Error {
	return New(KindValidation, format, args...)
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the message of the first *Error in err's chain.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal server error"
}
