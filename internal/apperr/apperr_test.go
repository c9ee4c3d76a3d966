package apperr_test

import (
	"fmt"
	"testing"

	"backoffice/internal/apperr"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(apperr.BadRequest("bad input")))
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(apperr.NotFound("missing")))
	assert.Equal(t, apperr.Kind(0), apperr.KindOf(fmt.Errorf("plain error")))
	assert.Equal(t, apperr.Kind(0), apperr.KindOf(nil))
}

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("listing customers: %w", apperr.BadRequest("invalid date for registrationDateTo"))
	assert.True(t, apperr.IsBadRequest(err))
	assert.False(t, apperr.IsNotFound(err))
}

func TestMessageFormatting(t *testing.T) {
	err := apperr.NotFound("order %d not found", 42)
	assert.Equal(t, "order 42 not found", err.Error())
}
