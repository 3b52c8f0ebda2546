package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medichart/internal/records/models"
	"medichart/internal/snapshot"
	"medichart/pkg/domain"
)

// A store rebuilt from the same snapshot store must be indistinguishable
// from the one that wrote it: same rows, same order, same relationships.
func TestRehydration_RoundTrip(t *testing.T) {
	ctx := context.Background()
	snaps := snapshot.NewMemory()

	first, err := New(ctx, snaps)
	require.NoError(t, err)

	doctor, err := models.NewDoctor(domain.NewUserID(), "Sarah Johnson", "sarah@example.com", "Cardiology")
	require.NoError(t, err)
	require.NoError(t, first.AddDoctor(ctx, doctor))

	patient, err := models.NewPatient(domain.NewUserID(), "John Smith", "john@example.com", 42, domain.GenderMale, "123 Main St")
	require.NoError(t, err)
	require.NoError(t, first.AddPatient(ctx, patient))

	admin, err := models.NewAdmin(domain.NewUserID(), "Admin User", "admin@example.com")
	require.NoError(t, err)
	require.NoError(t, first.AddAdmin(ctx, admin))

	_, err = first.AssignDoctorToPatient(ctx, doctor.ID, patient.ID)
	require.NoError(t, err)

	appt, err := models.NewAppointment(domain.NewAppointmentID(), patient.ID, doctor.ID, "2026-09-01", "10:30", domain.AppointmentScheduled, "follow-up")
	require.NoError(t, err)
	require.NoError(t, first.AddAppointment(ctx, appt))

	record, err := models.NewMedicalRecord(domain.NewRecordID(), patient.ID, doctor.ID, "2026-08-20", "Hypertension", "monitor")
	require.NoError(t, err)
	require.NoError(t, first.AddMedicalRecord(ctx, record))

	meds := []models.Medication{{Name: "Lisinopril", Dosage: "10mg", Frequency: "Once daily", Duration: "30 days"}}
	rx, err := models.NewPrescription(domain.NewPrescriptionID(), patient.ID, doctor.ID, "2026-08-20", meds, "take with food")
	require.NoError(t, err)
	require.NoError(t, first.AddPrescription(ctx, rx))

	second, err := New(ctx, snaps)
	require.NoError(t, err)

	assert.Equal(t, first.Users(), second.Users())
	assert.Equal(t, first.Patients(), second.Patients())
	assert.Equal(t, first.Doctors(), second.Doctors())
	assert.Equal(t, first.Admins(), second.Admins())
	assert.Equal(t, first.Appointments(), second.Appointments())
	assert.Equal(t, first.MedicalRecords(), second.MedicalRecords())
	assert.Equal(t, first.Prescriptions(), second.Prescriptions())

	gotPatient, ok := second.PatientByID(patient.ID)
	require.True(t, ok)
	assert.Equal(t, doctor.ID, gotPatient.AssignedDoctorID)
	assert.Equal(t, []domain.RecordID{record.ID}, gotPatient.MedicalRecordIDs)
	assert.Equal(t, []domain.PrescriptionID{rx.ID}, gotPatient.PrescriptionIDs)

	gotDoctor, ok := second.DoctorByID(doctor.ID)
	require.True(t, ok)
	assert.Equal(t, []domain.UserID{patient.ID}, gotDoctor.PatientIDs)
	assert.Equal(t, []domain.AppointmentID{appt.ID}, gotDoctor.AppointmentIDs)
}

func TestNew_CorruptSnapshotFails(t *testing.T) {
	ctx := context.Background()
	snaps := snapshot.NewMemory()
	require.NoError(t, snaps.Save(ctx, snapshot.KeyUsers, []byte("{not json")))

	_, err := New(ctx, snaps)
	require.Error(t, err)
}

func TestNew_EmptySnapshotsYieldEmptyCollections(t *testing.T) {
	s, err := New(context.Background(), snapshot.NewMemory())
	require.NoError(t, err)
	for key, n := range s.Counts() {
		assert.Zero(t, n, key)
	}
}
