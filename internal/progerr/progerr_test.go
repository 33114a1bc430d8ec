package progerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesByCode(t *testing.T) {
	err := New(CodeTooManyPlayers, "pool holds %d players", 10000)

	assert.True(t, errors.Is(err, ErrTooManyPlayers))
	assert.False(t, errors.Is(err, ErrAlreadySignin))
}

func TestError_IsThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("process signin: %w", ErrAlreadySignin)

	assert.True(t, errors.Is(wrapped, ErrAlreadySignin))

	code, ok := CodeOf(wrapped)
	assert.True(t, ok)
	assert.Equal(t, CodeAlreadySignin, code)
}

func TestError_Message(t *testing.T) {
	assert.Equal(t, "invalid permission", ErrInvalidPermission.Error())
	assert.Equal(t, "invalid account length: pool is 12 bytes",
		New(CodeInvalidAccountLength, "pool is %d bytes", 12).Error())
}

func TestCodeOf_NonProgramError(t *testing.T) {
	_, ok := CodeOf(errors.New("disk full"))
	assert.False(t, ok)
}

func TestCode_String(t *testing.T) {
	assert.Equal(t, "InvalidInstruction", CodeInvalidInstruction.String())
	assert.Equal(t, "AwardLedgerFull", CodeAwardLedgerFull.String())
	assert.Equal(t, "Code(99)", Code(99).String())
}

func TestCode_StableValues(t *testing.T) {
	// Persisted in transaction logs; renumbering breaks old logs.
	assert.Equal(t, Code(0), CodeInvalidInstruction)
	assert.Equal(t, Code(3), CodeInvalidPermission)
	assert.Equal(t, Code(4), CodeInvalidAccountLength)
	assert.Equal(t, Code(5), CodeAlreadySignin)
	assert.Equal(t, Code(9), CodeTooManyPlayers)
	assert.Equal(t, Code(12), CodeAwardLedgerFull)
}
