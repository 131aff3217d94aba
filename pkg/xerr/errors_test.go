package xerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap_KeepsCause(t *testing.T) {
	base := errors.New("boom")
	err := Wrap(fmt.Errorf("cancel: %w", base), UnknownOrder)

	assert.ErrorIs(t, err, base)
	assert.Equal(t, UnknownOrder, CodeOf(err))
	assert.Contains(t, err.Error(), "订单不存在")
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, OK, CodeOf(nil))
	assert.Equal(t, ServerError, CodeOf(errors.New("plain")))
	assert.Equal(t, EngineBusy, CodeOf(NewErrCode(EngineBusy)))
	assert.Equal(t, BadInstruction, CodeOf(fmt.Errorf("outer: %w", New(BadInstruction, "x"))))
	assert.Nil(t, Wrap(nil, EngineBusy))
}
