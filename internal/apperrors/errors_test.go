package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
)

func TestSpecificErrorsWrapKinds(t *testing.T) {
	assert.ErrorIs(t, ErrInvalidAmount, ErrInvalidArgument)
	assert.ErrorIs(t, ErrSelfReference, ErrInvalidArgument)
	assert.ErrorIs(t, ErrEmptyGroup, ErrInvalidArgument)
	assert.ErrorIs(t, ErrNoParticipants, ErrInvalidArgument)
	assert.ErrorIs(t, ErrSamePayerReceiver, ErrInvalidArgument)
	assert.ErrorIs(t, ErrNotGroupMember, ErrInvalidArgument)
	assert.ErrorIs(t, ErrSplitSumMismatch, ErrInconsistent)
}

func TestCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want connect.Code
	}{
		{"invalid argument", InvalidArgument("bad %s", "input"), connect.CodeInvalidArgument},
		{"not found", NotFound("expense", "e1"), connect.CodeNotFound},
		{"unauthorized", Unauthorized("nope"), connect.CodePermissionDenied},
		{"inconsistent", Inconsistent("sum off"), connect.CodeFailedPrecondition},
		{"wrapped twice", fmt.Errorf("outer: %w", ErrSelfReference), connect.CodeInvalidArgument},
		{"unknown", errors.New("disk on fire"), connect.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Code(tt.err))
		})
	}
}

func TestToConnect(t *testing.T) {
	assert.Nil(t, ToConnect(nil))

	err := ToConnect(NotFound("group", "g1"))
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))
	assert.Contains(t, err.Error(), "group g1")

	already := connect.NewError(connect.CodeUnauthenticated, errors.New("token"))
	assert.Same(t, already, ToConnect(already))
}
