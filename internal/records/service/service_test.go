package service

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medichart/internal/changelog"
	"medichart/internal/platform/metrics"
	"medichart/internal/records/models"
	"medichart/internal/records/store"
	"medichart/internal/snapshot"
	"medichart/pkg/domain"
	derrors "medichart/pkg/domain-errors"
	"medichart/pkg/requestcontext"
	tu "medichart/pkg/testutil"
)

type recordingPublisher struct {
	events []changelog.Event
}

func (r *recordingPublisher) Publish(_ context.Context, event changelog.Event) error {
	r.events = append(r.events, event)
	return nil
}

type fixture struct {
	svc       *Service
	publisher *recordingPublisher
	registry  *prometheus.Registry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st, err := store.New(context.Background(), snapshot.NewMemory())
	require.NoError(t, err)
	registry := prometheus.NewRegistry()
	publisher := &recordingPublisher{}
	svc := New(st,
		WithMetrics(metrics.New(registry)),
		WithPublisher(publisher),
	)
	return &fixture{svc: svc, publisher: publisher, registry: registry}
}

func (f *fixture) createPatient(t *testing.T, name, email string) models.Patient {
	t.Helper()
	patient, err := f.svc.CreatePatient(context.Background(), CreatePatientInput{
		Name: name, Email: email, Age: 42, Gender: "male", Address: "123 Main St",
	})
	require.NoError(t, err)
	return patient
}

func (f *fixture) createDoctor(t *testing.T, name, email string) models.Doctor {
	t.Helper()
	doctor, err := f.svc.CreateDoctor(context.Background(), CreateDoctorInput{
		Name: name, Email: email, Specialization: "Cardiology",
	})
	require.NoError(t, err)
	return doctor
}

func TestCreatePatient_EmitsEventAndMetrics(t *testing.T) {
	f := newFixture(t)
	at := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithActor(tu.FrozenContext(at), requestcontext.ActorInfo{
		ID:   domain.UserID("admin-1"),
		Role: domain.RoleAdmin,
	})
	ctx = requestcontext.WithRequestID(ctx, "req-1")

	patient, err := f.svc.CreatePatient(ctx, CreatePatientInput{
		Name: "John Smith", Email: "john@example.com", Age: 42, Gender: "male", Address: "123 Main St",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, patient.ID)

	require.Len(t, f.publisher.events, 1)
	event := f.publisher.events[0]
	assert.Equal(t, "patients", event.Entity)
	assert.Equal(t, changelog.OpCreate, event.Op)
	assert.Equal(t, string(patient.ID), event.ID)
	assert.Equal(t, domain.UserID("admin-1"), event.ActorID)
	assert.Equal(t, at, event.At)
	assert.Equal(t, "req-1", event.RequestID)
	assert.Nil(t, event.Before)
	assert.NotNil(t, event.After)

	count := testutil.ToFloat64(f.svc.metrics.Mutations.WithLabelValues("patients", "create"))
	assert.Equal(t, 1.0, count)
}

func TestCreatePatient_RejectionsAreCounted(t *testing.T) {
	f := newFixture(t)
	f.createPatient(t, "John Smith", "john@example.com")

	_, err := f.svc.CreatePatient(context.Background(), CreatePatientInput{
		Name: "Impostor", Email: "JOHN@example.com", Age: 30, Gender: "female",
	})
	require.Error(t, err)
	assert.True(t, derrors.HasCode(err, derrors.CodeDuplicateEmail))
	assert.Empty(t, f.publisher.events[1:])

	count := testutil.ToFloat64(f.svc.metrics.Rejections.WithLabelValues(string(derrors.CodeDuplicateEmail)))
	assert.Equal(t, 1.0, count)
}

func TestCreatePatient_InvalidGender(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CreatePatient(context.Background(), CreatePatientInput{
		Name: "John", Email: "john@example.com", Age: 42, Gender: "robot",
	})
	require.Error(t, err)
	assert.True(t, derrors.HasCode(err, derrors.CodeInvalidInput))
}

func TestCreateAppointment_DefaultsToScheduled(t *testing.T) {
	f := newFixture(t)
	patient := f.createPatient(t, "John Smith", "john@example.com")
	doctor := f.createDoctor(t, "Sarah Johnson", "sarah@example.com")

	appt, err := f.svc.CreateAppointment(context.Background(), CreateAppointmentInput{
		PatientID: patient.ID, DoctorID: doctor.ID, Date: "2026-09-01", Time: "10:30",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.AppointmentScheduled, appt.Status)
}

func TestUpdate_NoEventForSilentNoOp(t *testing.T) {
	f := newFixture(t)
	f.createPatient(t, "John Smith", "john@example.com")
	emitted := len(f.publisher.events)

	name := "Ghost"
	change, err := f.svc.UpdateUser(context.Background(), domain.NewUserID(), models.UserPatch{Name: &name})
	require.NoError(t, err)
	assert.False(t, change.Applied)
	assert.Len(t, f.publisher.events, emitted)
}

func TestDeleteUser_EmitsDeleteWithBefore(t *testing.T) {
	f := newFixture(t)
	patient := f.createPatient(t, "John Smith", "john@example.com")

	change, err := f.svc.DeleteUser(context.Background(), patient.ID)
	require.NoError(t, err)
	require.True(t, change.Applied)

	event := f.publisher.events[len(f.publisher.events)-1]
	assert.Equal(t, changelog.OpDelete, event.Op)
	assert.NotNil(t, event.Before)
	assert.Nil(t, event.After)
}

func TestAssignDoctor_EventsFollowActualChanges(t *testing.T) {
	f := newFixture(t)
	patient := f.createPatient(t, "John Smith", "john@example.com")
	doctor := f.createDoctor(t, "Sarah Johnson", "sarah@example.com")
	ctx := context.Background()

	changed, err := f.svc.AssignDoctor(ctx, doctor.ID, patient.ID)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, changelog.OpAssign, f.publisher.events[len(f.publisher.events)-1].Op)
	emitted := len(f.publisher.events)

	changed, err = f.svc.AssignDoctor(ctx, doctor.ID, patient.ID)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Len(t, f.publisher.events, emitted)

	changed, err = f.svc.UnassignDoctor(ctx, patient.ID)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, changelog.OpUnassign, f.publisher.events[len(f.publisher.events)-1].Op)
}

func TestMarkPrescriptionViewed(t *testing.T) {
	f := newFixture(t)
	patient := f.createPatient(t, "John Smith", "john@example.com")
	doctor := f.createDoctor(t, "Sarah Johnson", "sarah@example.com")

	ctx := context.Background()
	rx, err := f.svc.CreatePrescription(ctx, CreatePrescriptionInput{
		PatientID:   patient.ID,
		DoctorID:    doctor.ID,
		Date:        "2026-08-28",
		Medications: []models.Medication{{Name: "Lisinopril", Dosage: "10mg"}},
	})
	require.NoError(t, err)
	assert.False(t, rx.IsViewed)

	change, err := f.svc.MarkPrescriptionViewed(ctx, rx.ID)
	require.NoError(t, err)
	require.True(t, change.Applied)
	assert.True(t, change.After.IsViewed)
}

func TestUsersByRole_RejectsUnknownRole(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.UsersByRole("nurse")
	require.Error(t, err)
	assert.True(t, derrors.HasCode(err, derrors.CodeInvalidInput))
}
