package errdefs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpstreamError(t *testing.T) {
	err := fmt.Errorf("services.payment.Checkout: %w", &UpstreamError{Provider: "stripe", Message: "card declined"})

	assert.True(t, errors.Is(err, ErrUpstream))
	assert.False(t, errors.Is(err, ErrNotFound))

	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, "card declined", upstream.Message)
	assert.Equal(t, "stripe: card declined", upstream.Error())
}

func TestValidationError(t *testing.T) {
	err := fmt.Errorf("op: %w", Validation("amount", "must be greater than zero"))

	assert.True(t, errors.Is(err, ErrValidation))

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "amount", verr.Field)
	assert.Equal(t, "amount: must be greater than zero", verr.Error())
	assert.Equal(t, "exactly one target", Validation("", "exactly one target").Error())
}
