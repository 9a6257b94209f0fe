// Package apperrors defines the error taxonomy shared by the ledger engine,
// the storage layer and the RPC services.
//
// Every error produced here wraps exactly one of the four kind sentinels, so
// callers classify with errors.Is regardless of how much context was added.
package apperrors

import (
	"errors"
	"fmt"

	"connectrpc.com/connect"
)

// Kind sentinels.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrInconsistent    = errors.New("inconsistent")
)

// Specific errors returned by the ledger engine.
var (
	ErrInvalidAmount     = fmt.Errorf("%w: amount must be positive", ErrInvalidArgument)
	ErrSelfReference     = fmt.Errorf("%w: user cannot reference themselves", ErrInvalidArgument)
	ErrEmptyGroup        = fmt.Errorf("%w: group has no members", ErrInvalidArgument)
	ErrNoParticipants    = fmt.Errorf("%w: at least one participant is required", ErrInvalidArgument)
	ErrSamePayerReceiver = fmt.Errorf("%w: payer and receiver must differ", ErrInvalidArgument)
	ErrNotGroupMember    = fmt.Errorf("%w: user is not a member of the group", ErrInvalidArgument)
	ErrSplitSumMismatch  = fmt.Errorf("%w: split amounts do not add up to the expense amount", ErrInconsistent)
)

// InvalidArgument returns an error of kind ErrInvalidArgument.
func InvalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// NotFound returns an error of kind ErrNotFound for the given entity.
func NotFound(entity, id string) error {
	return fmt.Errorf("%w: %s %s", ErrNotFound, entity, id)
}

// Unauthorized returns an error of kind ErrUnauthorized.
func Unauthorized(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnauthorized, fmt.Sprintf(format, args...))
}

// Inconsistent returns an error of kind ErrInconsistent.
func Inconsistent(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInconsistent, fmt.Sprintf(format, args...))
}

// Code maps an error to the Connect status code the services report.
func Code(err error) connect.Code {
	switch {
	case errors.Is(err, ErrInvalidArgument):
		return connect.CodeInvalidArgument
	case errors.Is(err, ErrNotFound):
		return connect.CodeNotFound
	case errors.Is(err, ErrUnauthorized):
		return connect.CodePermissionDenied
	case errors.Is(err, ErrInconsistent):
		return connect.CodeFailedPrecondition
	default:
		return connect.CodeInternal
	}
}

// ToConnect wraps err in a *connect.Error carrying the mapped code.
// Errors that already are *connect.Error are returned unchanged.
func ToConnect(err error) error {
	if err == nil {
		return nil
	}
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return err
	}
	return connect.NewError(Code(err), err)
}
