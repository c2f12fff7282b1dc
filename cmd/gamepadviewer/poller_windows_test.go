package main

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestXInputPoller_OutOfRangeIsStampedAndInvalid(t *testing.T) {
	p := &xinputPoller{logger: slog.Default()}

	first := p.Poll(xinputMaxControllers)
	assert.False(t, first.Valid)
	assert.NotZero(t, first.PollTimeMS, "poll time comes from the boot clock")

	second := p.Poll(-1)
	assert.False(t, second.Valid)
	assert.GreaterOrEqual(t, uint64(second.PollTimeMS), uint64(first.PollTimeMS))
}
