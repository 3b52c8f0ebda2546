// Package handler exposes the record service over HTTP. Routes mirror the
// collections: /users, /patients, /doctors, /admins, /appointments,
// /medical-records, /prescriptions, plus the assignment sub-resource on
// patients and an integrity report.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"medichart/internal/records/service"
	derrors "medichart/pkg/domain-errors"
)

type Handler struct {
	svc *service.Service
	log *slog.Logger
}

func New(svc *service.Service, log *slog.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// Routes mounts every record endpoint on a fresh router. Authentication
// middleware is applied by the caller, which owns the composition.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/users", func(r chi.Router) {
		r.Get("/", h.listUsers)
		r.Post("/", h.createUser)
		r.Get("/{id}", h.getUser)
		r.Patch("/{id}", h.updateUser)
		r.Delete("/{id}", h.deleteUser)
	})

	r.Route("/patients", func(r chi.Router) {
		r.Get("/", h.listPatients)
		r.Post("/", h.createPatient)
		r.Get("/{id}", h.getPatient)
		r.Patch("/{id}", h.updatePatient)
		r.Delete("/{id}", h.deletePatient)
		r.Get("/{id}/appointments", h.patientAppointments)
		r.Get("/{id}/medical-records", h.patientMedicalRecords)
		r.Get("/{id}/prescriptions", h.patientPrescriptions)
		r.Post("/{id}/doctor", h.assignDoctor)
		r.Delete("/{id}/doctor", h.unassignDoctor)
	})

	r.Route("/doctors", func(r chi.Router) {
		r.Get("/", h.listDoctors)
		r.Post("/", h.createDoctor)
		r.Get("/{id}", h.getDoctor)
		r.Patch("/{id}", h.updateDoctor)
		r.Delete("/{id}", h.deleteDoctor)
		r.Get("/{id}/appointments", h.doctorAppointments)
	})

	r.Route("/admins", func(r chi.Router) {
		r.Get("/", h.listAdmins)
		r.Post("/", h.createAdmin)
	})

	r.Route("/appointments", func(r chi.Router) {
		r.Get("/", h.listAppointments)
		r.Post("/", h.createAppointment)
		r.Get("/{id}", h.getAppointment)
		r.Patch("/{id}", h.updateAppointment)
		r.Delete("/{id}", h.deleteAppointment)
	})

	r.Route("/medical-records", func(r chi.Router) {
		r.Get("/", h.listMedicalRecords)
		r.Post("/", h.createMedicalRecord)
		r.Get("/{id}", h.getMedicalRecord)
		r.Patch("/{id}", h.updateMedicalRecord)
		r.Delete("/{id}", h.deleteMedicalRecord)
	})

	r.Route("/prescriptions", func(r chi.Router) {
		r.Get("/", h.listPrescriptions)
		r.Post("/", h.createPrescription)
		r.Get("/{id}", h.getPrescription)
		r.Patch("/{id}", h.updatePrescription)
		r.Delete("/{id}", h.deletePrescription)
		r.Post("/{id}/viewed", h.markPrescriptionViewed)
	})

	r.Get("/integrity/dangling", h.danglingRefs)

	return r
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			h.log.Error("encode response", slog.Any("error", err))
		}
	}
}

type errorResponse struct {
	Error string       `json:"error"`
	Code  derrors.Code `json:"code"`
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	code := derrors.CodeOf(err)
	h.writeJSON(w, derrors.ToHTTPStatus(code), errorResponse{Error: err.Error(), Code: code})
}

func (h *Handler) notFound(w http.ResponseWriter, what string) {
	h.writeJSON(w, http.StatusNotFound, errorResponse{Error: what + " not found", Code: derrors.CodeNotFound})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.writeError(w, derrors.Wrap(err, derrors.CodeInvalidInput, "malformed request body"))
		return false
	}
	return true
}

func (h *Handler) danglingRefs(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.svc.DanglingRefs())
}
