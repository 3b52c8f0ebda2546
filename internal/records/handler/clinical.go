package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"medichart/internal/records/models"
	"medichart/internal/records/service"
	"medichart/pkg/domain"
)

func (h *Handler) listAppointments(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.svc.Appointments())
}

func (h *Handler) createAppointment(w http.ResponseWriter, r *http.Request) {
	var in service.CreateAppointmentInput
	if !h.decode(w, r, &in) {
		return
	}
	appt, err := h.svc.CreateAppointment(r.Context(), in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, appt)
}

func (h *Handler) getAppointment(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseAppointmentID(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	appt, ok := h.svc.AppointmentByID(id)
	if !ok {
		h.notFound(w, "appointment")
		return
	}
	h.writeJSON(w, http.StatusOK, appt)
}

func (h *Handler) updateAppointment(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseAppointmentID(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	var patch models.AppointmentPatch
	if !h.decode(w, r, &patch) {
		return
	}
	change, err := h.svc.UpdateAppointment(r.Context(), id, patch)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if !change.Applied {
		h.notFound(w, "appointment")
		return
	}
	h.writeJSON(w, http.StatusOK, change.After)
}

func (h *Handler) deleteAppointment(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseAppointmentID(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	if _, err := h.svc.DeleteAppointment(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) patientAppointments(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, h.svc.AppointmentsByPatient(id))
}

func (h *Handler) doctorAppointments(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, h.svc.AppointmentsByDoctor(id))
}

func (h *Handler) listMedicalRecords(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.svc.MedicalRecords())
}

func (h *Handler) createMedicalRecord(w http.ResponseWriter, r *http.Request) {
	var in service.CreateMedicalRecordInput
	if !h.decode(w, r, &in) {
		return
	}
	record, err := h.svc.CreateMedicalRecord(r.Context(), in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, record)
}

func (h *Handler) getMedicalRecord(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseRecordID(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	record, ok := h.svc.MedicalRecordByID(id)
	if !ok {
		h.notFound(w, "medical record")
		return
	}
	h.writeJSON(w, http.StatusOK, record)
}

func (h *Handler) updateMedicalRecord(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseRecordID(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	var patch models.MedicalRecordPatch
	if !h.decode(w, r, &patch) {
		return
	}
	change, err := h.svc.UpdateMedicalRecord(r.Context(), id, patch)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if !change.Applied {
		h.notFound(w, "medical record")
		return
	}
	h.writeJSON(w, http.StatusOK, change.After)
}

func (h *Handler) deleteMedicalRecord(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseRecordID(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	if _, err := h.svc.DeleteMedicalRecord(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) patientMedicalRecords(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, h.svc.MedicalRecordsByPatient(id))
}

func (h *Handler) listPrescriptions(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.svc.Prescriptions())
}

func (h *Handler) createPrescription(w http.ResponseWriter, r *http.Request) {
	var in service.CreatePrescriptionInput
	if !h.decode(w, r, &in) {
		return
	}
	rx, err := h.svc.CreatePrescription(r.Context(), in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, rx)
}

func (h *Handler) getPrescription(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParsePrescriptionID(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	rx, ok := h.svc.PrescriptionByID(id)
	if !ok {
		h.notFound(w, "prescription")
		return
	}
	h.writeJSON(w, http.StatusOK, rx)
}

func (h *Handler) updatePrescription(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParsePrescriptionID(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	var patch models.PrescriptionPatch
	if !h.decode(w, r, &patch) {
		return
	}
	change, err := h.svc.UpdatePrescription(r.Context(), id, patch)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if !change.Applied {
		h.notFound(w, "prescription")
		return
	}
	h.writeJSON(w, http.StatusOK, change.After)
}

func (h *Handler) deletePrescription(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParsePrescriptionID(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	if _, err := h.svc.DeletePrescription(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) markPrescriptionViewed(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParsePrescriptionID(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	change, err := h.svc.MarkPrescriptionViewed(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if !change.Applied {
		h.notFound(w, "prescription")
		return
	}
	h.writeJSON(w, http.StatusOK, change.After)
}

func (h *Handler) patientPrescriptions(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, h.svc.PrescriptionsByPatient(id))
}
