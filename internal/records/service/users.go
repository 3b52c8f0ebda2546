package service

import (
	"context"

	"medichart/internal/changelog"
	"medichart/internal/records/models"
	"medichart/internal/records/store"
	"medichart/pkg/domain"
	derrors "medichart/pkg/domain-errors"
)

type CreateUserInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type CreatePatientInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Age     int    `json:"age"`
	Gender  string `json:"gender"`
	Address string `json:"address"`
}

type CreateDoctorInput struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Specialization string `json:"specialization"`
}

type CreateAdminInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// CreateUser registers a bare user row. Role-specific records should go
// through CreatePatient, CreateDoctor, or CreateAdmin instead.
func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (models.User, error) {
	role, err := domain.ParseRole(in.Role)
	if err != nil {
		return models.User{}, s.reject(derrors.Wrap(err, derrors.CodeInvalidInput, "invalid role"))
	}
	user, err := models.NewUser(domain.NewUserID(), in.Name, in.Email, role)
	if err != nil {
		return models.User{}, s.reject(err)
	}
	if err := s.store.AddUser(ctx, user); err != nil {
		return models.User{}, s.reject(err)
	}
	s.emit(ctx, "users", changelog.OpCreate, string(user.ID), nil, user)
	return user, nil
}

func (s *Service) CreatePatient(ctx context.Context, in CreatePatientInput) (models.Patient, error) {
	gender, err := domain.ParseGender(in.Gender)
	if err != nil {
		return models.Patient{}, s.reject(derrors.Wrap(err, derrors.CodeInvalidInput, "invalid gender"))
	}
	patient, err := models.NewPatient(domain.NewUserID(), in.Name, in.Email, in.Age, gender, in.Address)
	if err != nil {
		return models.Patient{}, s.reject(err)
	}
	if err := s.store.AddPatient(ctx, patient); err != nil {
		return models.Patient{}, s.reject(err)
	}
	s.emit(ctx, "patients", changelog.OpCreate, string(patient.ID), nil, patient)
	return patient, nil
}

func (s *Service) CreateDoctor(ctx context.Context, in CreateDoctorInput) (models.Doctor, error) {
	doctor, err := models.NewDoctor(domain.NewUserID(), in.Name, in.Email, in.Specialization)
	if err != nil {
		return models.Doctor{}, s.reject(err)
	}
	if err := s.store.AddDoctor(ctx, doctor); err != nil {
		return models.Doctor{}, s.reject(err)
	}
	s.emit(ctx, "doctors", changelog.OpCreate, string(doctor.ID), nil, doctor)
	return doctor, nil
}

func (s *Service) CreateAdmin(ctx context.Context, in CreateAdminInput) (models.Admin, error) {
	admin, err := models.NewAdmin(domain.NewUserID(), in.Name, in.Email)
	if err != nil {
		return models.Admin{}, s.reject(err)
	}
	if err := s.store.AddAdmin(ctx, admin); err != nil {
		return models.Admin{}, s.reject(err)
	}
	s.emit(ctx, "admins", changelog.OpCreate, string(admin.ID), nil, admin)
	return admin, nil
}

func (s *Service) UpdateUser(ctx context.Context, id domain.UserID, patch models.UserPatch) (store.Change[models.User], error) {
	change, err := s.store.UpdateUser(ctx, id, patch)
	if err != nil {
		return change, s.reject(err)
	}
	if change.Applied {
		s.emit(ctx, "users", changelog.OpUpdate, string(id), change.Before, change.After)
	}
	return change, nil
}

func (s *Service) UpdatePatient(ctx context.Context, id domain.UserID, patch models.PatientPatch) (store.Change[models.Patient], error) {
	change, err := s.store.UpdatePatient(ctx, id, patch)
	if err != nil {
		return change, s.reject(err)
	}
	if change.Applied {
		s.emit(ctx, "patients", changelog.OpUpdate, string(id), change.Before, change.After)
	}
	return change, nil
}

func (s *Service) UpdateDoctor(ctx context.Context, id domain.UserID, patch models.DoctorPatch) (store.Change[models.Doctor], error) {
	change, err := s.store.UpdateDoctor(ctx, id, patch)
	if err != nil {
		return change, s.reject(err)
	}
	if change.Applied {
		s.emit(ctx, "doctors", changelog.OpUpdate, string(id), change.Before, change.After)
	}
	return change, nil
}

func (s *Service) DeleteUser(ctx context.Context, id domain.UserID) (store.Change[models.User], error) {
	change, err := s.store.DeleteUser(ctx, id)
	if err != nil {
		return change, s.reject(err)
	}
	if change.Applied {
		s.emit(ctx, "users", changelog.OpDelete, string(id), change.Before, nil)
	}
	return change, nil
}

func (s *Service) DeletePatient(ctx context.Context, id domain.UserID) (store.Change[models.Patient], error) {
	change, err := s.store.DeletePatient(ctx, id)
	if err != nil {
		return change, s.reject(err)
	}
	if change.Applied {
		s.emit(ctx, "patients", changelog.OpDelete, string(id), change.Before, nil)
	}
	return change, nil
}

func (s *Service) DeleteDoctor(ctx context.Context, id domain.UserID) (store.Change[models.Doctor], error) {
	change, err := s.store.DeleteDoctor(ctx, id)
	if err != nil {
		return change, s.reject(err)
	}
	if change.Applied {
		s.emit(ctx, "doctors", changelog.OpDelete, string(id), change.Before, nil)
	}
	return change, nil
}

// AssignDoctor links a doctor and patient bidirectionally. Already-linked
// pairs return without emitting an event.
func (s *Service) AssignDoctor(ctx context.Context, doctorID, patientID domain.UserID) (bool, error) {
	changed, err := s.store.AssignDoctorToPatient(ctx, doctorID, patientID)
	if err != nil {
		return false, s.reject(err)
	}
	if changed {
		patient, _ := s.store.PatientByID(patientID)
		s.emit(ctx, "patients", changelog.OpAssign, string(patientID), nil, patient)
	}
	return changed, nil
}

// UnassignDoctor clears a patient's doctor assignment.
func (s *Service) UnassignDoctor(ctx context.Context, patientID domain.UserID) (bool, error) {
	changed, err := s.store.RemoveDoctorFromPatient(ctx, patientID)
	if err != nil {
		return false, s.reject(err)
	}
	if changed {
		patient, _ := s.store.PatientByID(patientID)
		s.emit(ctx, "patients", changelog.OpUnassign, string(patientID), nil, patient)
	}
	return changed, nil
}
