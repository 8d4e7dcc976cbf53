package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "xs2gate/pkg/domain-errors"
)

// Parsing is the trust boundary for externally supplied identifiers, so the
// invariant (non-empty, well-formed, non-nil) gets direct coverage here.
func TestParseAuthorisationID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseAuthorisationID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseAuthorisationID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseAuthorisationID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		valid := uuid.New()
		id, err := ParseAuthorisationID(valid.String())
		require.NoError(t, err)
		assert.Equal(t, AuthorisationID(valid), id)
	})
}

func TestParseBusinessObjectID(t *testing.T) {
	t.Run("round trips", func(t *testing.T) {
		valid := uuid.New()
		id, err := ParseBusinessObjectID(valid.String())
		require.NoError(t, err)
		assert.Equal(t, valid.String(), id.String())
	})

	t.Run("rejects nil", func(t *testing.T) {
		_, err := ParseBusinessObjectID(uuid.Nil.String())
		require.Error(t, err)
	})
}
