package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medichart/internal/records/models"
	"medichart/internal/records/service"
	"medichart/internal/records/store"
	"medichart/internal/snapshot"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	st, err := store.New(context.Background(), snapshot.NewMemory())
	require.NoError(t, err)
	svc := service.New(st)
	return New(svc, slog.New(slog.NewTextHandler(io.Discard, nil))).Routes()
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		blob, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(blob)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func createPatient(t *testing.T, router http.Handler, name, email string) models.Patient {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/patients", service.CreatePatientInput{
		Name: name, Email: email, Age: 42, Gender: "male", Address: "123 Main St",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody[models.Patient](t, rec)
}

func createDoctor(t *testing.T, router http.Handler, name, email string) models.Doctor {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/doctors", service.CreateDoctorInput{
		Name: name, Email: email, Specialization: "Cardiology",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody[models.Doctor](t, rec)
}

func TestCreatePatient(t *testing.T) {
	router := newTestRouter(t)

	t.Run("created", func(t *testing.T) {
		patient := createPatient(t, router, "John Smith", "john@example.com")
		assert.NotEmpty(t, patient.ID)
		assert.Equal(t, "patient", patient.Role.String())
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/patients", service.CreatePatientInput{
			Name: "Other", Email: "john@example.com", Age: 30, Gender: "female",
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
		body := decodeBody[map[string]string](t, rec)
		assert.Equal(t, "duplicate_email", body["code"])
	})

	t.Run("validation failure", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/patients", service.CreatePatientInput{
			Name: "", Email: "x@example.com", Age: 30, Gender: "male",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/patients", bytes.NewReader([]byte("{")))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestPatientLifecycle(t *testing.T) {
	router := newTestRouter(t)
	patient := createPatient(t, router, "John Smith", "john@example.com")

	rec := doJSON(t, router, http.MethodGet, "/patients/"+string(patient.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPatch, "/patients/"+string(patient.ID), map[string]any{"age": 43})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decodeBody[models.Patient](t, rec)
	assert.Equal(t, 43, updated.Age)
	assert.Equal(t, "John Smith", updated.Name)

	rec = doJSON(t, router, http.MethodDelete, "/patients/"+string(patient.ID), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/patients/"+string(patient.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// idempotent second delete
	rec = doJSON(t, router, http.MethodDelete, "/patients/"+string(patient.ID), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestPatchUnknownIDIs404(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodPatch, "/patients/00000000-0000-4000-8000-000000000000", map[string]any{"age": 50})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInvalidIDIs400(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/patients/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListUsersByRole(t *testing.T) {
	router := newTestRouter(t)
	createPatient(t, router, "John Smith", "john@example.com")
	createDoctor(t, router, "Sarah Johnson", "sarah@example.com")

	rec := doJSON(t, router, http.MethodGet, "/users?role=doctor", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	users := decodeBody[[]models.User](t, rec)
	require.Len(t, users, 1)
	assert.Equal(t, "Sarah Johnson", users[0].Name)

	rec = doJSON(t, router, http.MethodGet, "/users?role=nurse", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/users", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]models.User](t, rec), 2)
}

func TestAssignmentEndpoints(t *testing.T) {
	router := newTestRouter(t)
	patient := createPatient(t, router, "John Smith", "john@example.com")
	doctor := createDoctor(t, router, "Sarah Johnson", "sarah@example.com")

	rec := doJSON(t, router, http.MethodPost, "/patients/"+string(patient.ID)+"/doctor", map[string]string{"doctorId": string(doctor.ID)})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeBody[map[string]bool](t, rec)["assigned"])

	rec = doJSON(t, router, http.MethodPost, "/patients/"+string(patient.ID)+"/doctor", map[string]string{"doctorId": string(doctor.ID)})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decodeBody[map[string]bool](t, rec)["assigned"])

	rec = doJSON(t, router, http.MethodGet, "/doctors/"+string(doctor.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[models.Doctor](t, rec)
	require.Len(t, got.PatientIDs, 1)

	rec = doJSON(t, router, http.MethodDelete, "/patients/"+string(patient.ID)+"/doctor", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeBody[map[string]bool](t, rec)["removed"])

	rec = doJSON(t, router, http.MethodPost, "/patients/"+string(patient.ID)+"/doctor", map[string]string{"doctorId": "00000000-0000-4000-8000-000000000000"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAppointmentEndpoints(t *testing.T) {
	router := newTestRouter(t)
	patient := createPatient(t, router, "John Smith", "john@example.com")
	doctor := createDoctor(t, router, "Sarah Johnson", "sarah@example.com")

	rec := doJSON(t, router, http.MethodPost, "/appointments", service.CreateAppointmentInput{
		PatientID: patient.ID, DoctorID: doctor.ID, Date: "2026-09-01", Time: "10:30", Notes: "follow-up",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	appt := decodeBody[models.Appointment](t, rec)
	assert.Equal(t, "scheduled", appt.Status.String())

	rec = doJSON(t, router, http.MethodPatch, "/appointments/"+string(appt.ID), map[string]string{"status": "completed"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "completed", decodeBody[models.Appointment](t, rec).Status.String())

	rec = doJSON(t, router, http.MethodGet, "/patients/"+string(patient.ID)+"/appointments", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]models.Appointment](t, rec), 1)

	rec = doJSON(t, router, http.MethodGet, "/doctors/"+string(doctor.ID)+"/appointments", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]models.Appointment](t, rec), 1)

	rec = doJSON(t, router, http.MethodPost, "/appointments", service.CreateAppointmentInput{
		PatientID: patient.ID, DoctorID: "00000000-0000-4000-8000-000000000000", Date: "2026-09-01", Time: "10:30",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPrescriptionViewedEndpoint(t *testing.T) {
	router := newTestRouter(t)
	patient := createPatient(t, router, "John Smith", "john@example.com")
	doctor := createDoctor(t, router, "Sarah Johnson", "sarah@example.com")

	rec := doJSON(t, router, http.MethodPost, "/prescriptions", service.CreatePrescriptionInput{
		PatientID: patient.ID, DoctorID: doctor.ID, Date: "2026-08-28",
		Medications: []models.Medication{{Name: "Lisinopril", Dosage: "10mg"}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rx := decodeBody[models.Prescription](t, rec)
	assert.False(t, rx.IsViewed)

	rec = doJSON(t, router, http.MethodPost, "/prescriptions/"+string(rx.ID)+"/viewed", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeBody[models.Prescription](t, rec).IsViewed)
}

func TestDanglingRefsEndpoint(t *testing.T) {
	router := newTestRouter(t)
	patient := createPatient(t, router, "John Smith", "john@example.com")
	doctor := createDoctor(t, router, "Sarah Johnson", "sarah@example.com")

	rec := doJSON(t, router, http.MethodPost, "/medical-records", service.CreateMedicalRecordInput{
		PatientID: patient.ID, DoctorID: doctor.ID, Date: "2026-08-20", Diagnosis: "Hypertension",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/patients/"+string(patient.ID), nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/integrity/dangling", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	refs := decodeBody[[]store.DanglingRef](t, rec)
	require.Len(t, refs, 1)
	assert.Equal(t, "medicalRecords", refs[0].Collection)
	assert.Equal(t, string(patient.ID), refs[0].MissingID)
}
