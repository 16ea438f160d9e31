package jobs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandleUnknownEventIsNonRetryable(t *testing.T) {
	p := &Processor{}
	err := p.Handle(context.Background(), Event{Type: "user.sneezed", UserID: "u1"})
	assert.ErrorIs(t, err, ErrUnknownEvent)
	assert.Contains(t, err.Error(), "user.sneezed")
}
