package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medichart/pkg/domain"
	derrors "medichart/pkg/domain-errors"
)

func TestAssignDoctorToPatient(t *testing.T) {
	ctx := context.Background()

	t.Run("links both sides", func(t *testing.T) {
		s := newTestStore(t)
		doctor := mustDoctor(t, s, "Sarah Johnson", "sarah@example.com", "Cardiology")
		patient := mustPatient(t, s, "John Smith", "john@example.com")

		changed, err := s.AssignDoctorToPatient(ctx, doctor.ID, patient.ID)
		require.NoError(t, err)
		assert.True(t, changed)

		gotPatient, _ := s.PatientByID(patient.ID)
		gotDoctor, _ := s.DoctorByID(doctor.ID)
		assert.Equal(t, doctor.ID, gotPatient.AssignedDoctorID)
		assert.Equal(t, []domain.UserID{patient.ID}, gotDoctor.PatientIDs)
	})

	t.Run("idempotent on same pair", func(t *testing.T) {
		s := newTestStore(t)
		doctor := mustDoctor(t, s, "Sarah Johnson", "sarah@example.com", "Cardiology")
		patient := mustPatient(t, s, "John Smith", "john@example.com")

		_, err := s.AssignDoctorToPatient(ctx, doctor.ID, patient.ID)
		require.NoError(t, err)
		changed, err := s.AssignDoctorToPatient(ctx, doctor.ID, patient.ID)
		require.NoError(t, err)
		assert.False(t, changed)

		gotDoctor, _ := s.DoctorByID(doctor.ID)
		assert.Len(t, gotDoctor.PatientIDs, 1)
	})

	t.Run("reassignment detaches previous doctor", func(t *testing.T) {
		s := newTestStore(t)
		first := mustDoctor(t, s, "Sarah Johnson", "sarah@example.com", "Cardiology")
		second := mustDoctor(t, s, "Michael Chen", "michael@example.com", "Pediatrics")
		patient := mustPatient(t, s, "John Smith", "john@example.com")

		_, err := s.AssignDoctorToPatient(ctx, first.ID, patient.ID)
		require.NoError(t, err)
		changed, err := s.AssignDoctorToPatient(ctx, second.ID, patient.ID)
		require.NoError(t, err)
		assert.True(t, changed)

		gotFirst, _ := s.DoctorByID(first.ID)
		gotSecond, _ := s.DoctorByID(second.ID)
		gotPatient, _ := s.PatientByID(patient.ID)
		assert.Empty(t, gotFirst.PatientIDs)
		assert.Equal(t, []domain.UserID{patient.ID}, gotSecond.PatientIDs)
		assert.Equal(t, second.ID, gotPatient.AssignedDoctorID)
	})

	t.Run("unknown ids are not found", func(t *testing.T) {
		s := newTestStore(t)
		doctor := mustDoctor(t, s, "Sarah Johnson", "sarah@example.com", "Cardiology")
		patient := mustPatient(t, s, "John Smith", "john@example.com")

		_, err := s.AssignDoctorToPatient(ctx, doctor.ID, domain.NewUserID())
		require.Error(t, err)
		assert.True(t, derrors.HasCode(err, derrors.CodeNotFound))

		_, err = s.AssignDoctorToPatient(ctx, domain.NewUserID(), patient.ID)
		require.Error(t, err)
		assert.True(t, derrors.HasCode(err, derrors.CodeNotFound))
	})
}

func TestRemoveDoctorFromPatient(t *testing.T) {
	ctx := context.Background()

	t.Run("clears both sides", func(t *testing.T) {
		s := newTestStore(t)
		doctor := mustDoctor(t, s, "Sarah Johnson", "sarah@example.com", "Cardiology")
		patient := mustPatient(t, s, "John Smith", "john@example.com")

		_, err := s.AssignDoctorToPatient(ctx, doctor.ID, patient.ID)
		require.NoError(t, err)

		changed, err := s.RemoveDoctorFromPatient(ctx, patient.ID)
		require.NoError(t, err)
		assert.True(t, changed)

		gotPatient, _ := s.PatientByID(patient.ID)
		gotDoctor, _ := s.DoctorByID(doctor.ID)
		assert.Empty(t, gotPatient.AssignedDoctorID)
		assert.Empty(t, gotDoctor.PatientIDs)
	})

	t.Run("no-op without assignment", func(t *testing.T) {
		s := newTestStore(t)
		patient := mustPatient(t, s, "John Smith", "john@example.com")

		changed, err := s.RemoveDoctorFromPatient(ctx, patient.ID)
		require.NoError(t, err)
		assert.False(t, changed)
	})

	t.Run("no-op for unknown patient", func(t *testing.T) {
		s := newTestStore(t)
		changed, err := s.RemoveDoctorFromPatient(ctx, domain.NewUserID())
		require.NoError(t, err)
		assert.False(t, changed)
	})
}

func TestDanglingRefs(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	doctor := mustDoctor(t, s, "Sarah Johnson", "sarah@example.com", "Cardiology")
	patient := mustPatient(t, s, "John Smith", "john@example.com")
	appt := mustAppointment(t, s, patient.ID, doctor.ID)

	assert.Empty(t, s.DanglingRefs())

	_, err := s.DeletePatient(ctx, patient.ID)
	require.NoError(t, err)

	refs := s.DanglingRefs()
	require.Len(t, refs, 1)
	assert.Equal(t, DanglingRef{
		Collection: "appointments",
		ID:         string(appt.ID),
		Field:      "patientId",
		MissingID:  string(patient.ID),
	}, refs[0])
}
