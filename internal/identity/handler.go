package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"medichart/internal/records/models"
	"medichart/internal/records/service"
	"medichart/pkg/domain"
	derrors "medichart/pkg/domain-errors"
	"medichart/pkg/requestcontext"
)

// PatientRegistrar is the slice of the record service self-registration
// needs.
type PatientRegistrar interface {
	CreatePatient(ctx context.Context, in service.CreatePatientInput) (models.Patient, error)
}

type Handler struct {
	svc       *Service
	registrar PatientRegistrar
}

func NewHandler(svc *Service, registrar PatientRegistrar) *Handler {
	return &Handler{svc: svc, registrar: registrar}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/login", h.login)
	r.Post("/register", h.register)
	r.Post("/password", h.setPassword)
	return r
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  actorPayload `json:"user"`
}

type actorPayload struct {
	ID    domain.UserID `json:"id"`
	Name  string        `json:"name"`
	Email string        `json:"email"`
	Role  domain.Role   `json:"role"`
}

func toPayload(actor requestcontext.ActorInfo) actorPayload {
	return actorPayload{ID: actor.ID, Name: actor.Name, Email: actor.Email, Role: actor.Role}
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, derrors.Wrap(err, derrors.CodeInvalidInput, "malformed request body"))
		return
	}
	token, actor, err := h.svc.Login(r.Context(), req.Email, req.Password, req.Role)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: token, User: toPayload(actor)})
}

type registerRequest struct {
	service.CreatePatientInput
	Password string `json:"password"`
}

// register creates a patient account with credentials in one call. Only
// patients self-register; doctors and admins are provisioned by an admin.
func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, derrors.Wrap(err, derrors.CodeInvalidInput, "malformed request body"))
		return
	}
	if len(req.Password) < 8 {
		writeError(w, derrors.New(derrors.CodeInvalidInput, "password must be at least 8 characters"))
		return
	}
	patient, err := h.registrar.CreatePatient(r.Context(), req.CreatePatientInput)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.svc.SetPassword(r.Context(), patient.Email, req.Password); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, patient)
}

type setPasswordRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// setPassword provisions credentials for an existing user. Admins set
// anyone's password (how doctors and admins created through the records API
// get their logins); everyone else may only change their own.
func (h *Handler) setPassword(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestcontext.Actor(r.Context())
	if !ok {
		writeError(w, derrors.New(derrors.CodeUnauthorized, "authentication required"))
		return
	}
	var req setPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, derrors.Wrap(err, derrors.CodeInvalidInput, "malformed request body"))
		return
	}
	if actor.Role != domain.RoleAdmin && !strings.EqualFold(actor.Email, strings.TrimSpace(req.Email)) {
		writeError(w, derrors.New(derrors.CodeUnauthorized, "only admins may set another user's password"))
		return
	}
	if err := h.svc.SetPassword(r.Context(), req.Email, req.Password); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	code := derrors.CodeOf(err)
	writeJSON(w, derrors.ToHTTPStatus(code), map[string]string{"error": err.Error(), "code": string(code)})
}
