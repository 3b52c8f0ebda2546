package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"medichart/internal/records/models"
	"medichart/internal/records/service"
	"medichart/pkg/domain"
)

func (h *Handler) userID(w http.ResponseWriter, r *http.Request) (domain.UserID, bool) {
	id, err := domain.ParseUserID(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return "", false
	}
	return id, true
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	if role := r.URL.Query().Get("role"); role != "" {
		users, err := h.svc.UsersByRole(role)
		if err != nil {
			h.writeError(w, err)
			return
		}
		h.writeJSON(w, http.StatusOK, users)
		return
	}
	h.writeJSON(w, http.StatusOK, h.svc.Users())
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var in service.CreateUserInput
	if !h.decode(w, r, &in) {
		return
	}
	user, err := h.svc.CreateUser(r.Context(), in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, user)
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}
	user, ok := h.svc.UserByID(id)
	if !ok {
		h.notFound(w, "user")
		return
	}
	h.writeJSON(w, http.StatusOK, user)
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}
	var patch models.UserPatch
	if !h.decode(w, r, &patch) {
		return
	}
	change, err := h.svc.UpdateUser(r.Context(), id, patch)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if !change.Applied {
		h.notFound(w, "user")
		return
	}
	h.writeJSON(w, http.StatusOK, change.After)
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}
	if _, err := h.svc.DeleteUser(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listPatients(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.svc.Patients())
}

func (h *Handler) createPatient(w http.ResponseWriter, r *http.Request) {
	var in service.CreatePatientInput
	if !h.decode(w, r, &in) {
		return
	}
	patient, err := h.svc.CreatePatient(r.Context(), in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, patient)
}

func (h *Handler) getPatient(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}
	patient, ok := h.svc.PatientByID(id)
	if !ok {
		h.notFound(w, "patient")
		return
	}
	h.writeJSON(w, http.StatusOK, patient)
}

func (h *Handler) updatePatient(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}
	var patch models.PatientPatch
	if !h.decode(w, r, &patch) {
		return
	}
	change, err := h.svc.UpdatePatient(r.Context(), id, patch)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if !change.Applied {
		h.notFound(w, "patient")
		return
	}
	h.writeJSON(w, http.StatusOK, change.After)
}

func (h *Handler) deletePatient(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}
	if _, err := h.svc.DeletePatient(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listDoctors(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.svc.Doctors())
}

func (h *Handler) createDoctor(w http.ResponseWriter, r *http.Request) {
	var in service.CreateDoctorInput
	if !h.decode(w, r, &in) {
		return
	}
	doctor, err := h.svc.CreateDoctor(r.Context(), in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, doctor)
}

func (h *Handler) getDoctor(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}
	doctor, ok := h.svc.DoctorByID(id)
	if !ok {
		h.notFound(w, "doctor")
		return
	}
	h.writeJSON(w, http.StatusOK, doctor)
}

func (h *Handler) updateDoctor(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}
	var patch models.DoctorPatch
	if !h.decode(w, r, &patch) {
		return
	}
	change, err := h.svc.UpdateDoctor(r.Context(), id, patch)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if !change.Applied {
		h.notFound(w, "doctor")
		return
	}
	h.writeJSON(w, http.StatusOK, change.After)
}

func (h *Handler) deleteDoctor(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}
	if _, err := h.svc.DeleteDoctor(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listAdmins(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.svc.Admins())
}

func (h *Handler) createAdmin(w http.ResponseWriter, r *http.Request) {
	var in service.CreateAdminInput
	if !h.decode(w, r, &in) {
		return
	}
	admin, err := h.svc.CreateAdmin(r.Context(), in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, admin)
}

type assignDoctorRequest struct {
	DoctorID domain.UserID `json:"doctorId"`
}

func (h *Handler) assignDoctor(w http.ResponseWriter, r *http.Request) {
	patientID, ok := h.userID(w, r)
	if !ok {
		return
	}
	var req assignDoctorRequest
	if !h.decode(w, r, &req) {
		return
	}
	assigned, err := h.svc.AssignDoctor(r.Context(), req.DoctorID, patientID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]bool{"assigned": assigned})
}

func (h *Handler) unassignDoctor(w http.ResponseWriter, r *http.Request) {
	patientID, ok := h.userID(w, r)
	if !ok {
		return
	}
	removed, err := h.svc.UnassignDoctor(r.Context(), patientID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]bool{"removed": removed})
}
