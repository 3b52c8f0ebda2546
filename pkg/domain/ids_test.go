package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	derrors "medichart/pkg/domain-errors"
)

// TestParseUserID_Invariants validates the parsing invariant:
// IDs must be valid, non-empty, non-nil UUIDs, and rejections carry the
// invalid_input code so transports answer 400 rather than 500.
func TestParseUserID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseUserID("")
		require.Error(t, err)
		assert.True(t, derrors.HasCode(err, derrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseUserID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, derrors.HasCode(err, derrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseUserID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, derrors.HasCode(err, derrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		valid := uuid.NewString()
		id, err := ParseUserID(valid)
		require.NoError(t, err)
		assert.Equal(t, UserID(valid), id)
	})
}

func TestNewIDs_Distinct(t *testing.T) {
	assert.NotEqual(t, NewUserID(), NewUserID())
	assert.NotEqual(t, NewAppointmentID().String(), NewRecordID().String())
}

func TestParseRole(t *testing.T) {
	for _, valid := range []string{"admin", "doctor", "patient"} {
		role, err := ParseRole(valid)
		require.NoError(t, err)
		assert.Equal(t, valid, role.String())
	}

	_, err := ParseRole("superuser")
	require.Error(t, err)
	_, err = ParseRole("")
	require.Error(t, err)
}

func TestParseGender(t *testing.T) {
	for _, valid := range []string{"male", "female", "other"} {
		_, err := ParseGender(valid)
		require.NoError(t, err)
	}
	_, err := ParseGender("unknown")
	require.Error(t, err)
}

func TestParseAppointmentStatus(t *testing.T) {
	for _, valid := range []string{"scheduled", "completed", "cancelled"} {
		_, err := ParseAppointmentStatus(valid)
		require.NoError(t, err)
	}
	_, err := ParseAppointmentStatus("pending")
	require.Error(t, err)
}
