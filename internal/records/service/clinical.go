package service

import (
	"context"

	"medichart/internal/changelog"
	"medichart/internal/records/models"
	"medichart/internal/records/store"
	"medichart/pkg/domain"
	derrors "medichart/pkg/domain-errors"
)

type CreateAppointmentInput struct {
	PatientID domain.UserID `json:"patientId"`
	DoctorID  domain.UserID `json:"doctorId"`
	Date      string        `json:"date"`
	Time      string        `json:"time"`
	Status    string        `json:"status"`
	Notes     string        `json:"notes"`
}

type CreateMedicalRecordInput struct {
	PatientID domain.UserID `json:"patientId"`
	DoctorID  domain.UserID `json:"doctorId"`
	Date      string        `json:"date"`
	Diagnosis string        `json:"diagnosis"`
	Notes     string        `json:"notes"`
}

type CreatePrescriptionInput struct {
	PatientID    domain.UserID       `json:"patientId"`
	DoctorID     domain.UserID       `json:"doctorId"`
	Date         string              `json:"date"`
	Medications  []models.Medication `json:"medications"`
	Instructions string              `json:"instructions"`
}

// CreateAppointment books an appointment. An empty status defaults to
// scheduled.
func (s *Service) CreateAppointment(ctx context.Context, in CreateAppointmentInput) (models.Appointment, error) {
	status := domain.AppointmentScheduled
	if in.Status != "" {
		parsed, err := domain.ParseAppointmentStatus(in.Status)
		if err != nil {
			return models.Appointment{}, s.reject(derrors.Wrap(err, derrors.CodeInvalidInput, "invalid status"))
		}
		status = parsed
	}
	appt, err := models.NewAppointment(domain.NewAppointmentID(), in.PatientID, in.DoctorID, in.Date, in.Time, status, in.Notes)
	if err != nil {
		return models.Appointment{}, s.reject(err)
	}
	if err := s.store.AddAppointment(ctx, appt); err != nil {
		return models.Appointment{}, s.reject(err)
	}
	s.emit(ctx, "appointments", changelog.OpCreate, string(appt.ID), nil, appt)
	return appt, nil
}

func (s *Service) UpdateAppointment(ctx context.Context, id domain.AppointmentID, patch models.AppointmentPatch) (store.Change[models.Appointment], error) {
	change, err := s.store.UpdateAppointment(ctx, id, patch)
	if err != nil {
		return change, s.reject(err)
	}
	if change.Applied {
		s.emit(ctx, "appointments", changelog.OpUpdate, string(id), change.Before, change.After)
	}
	return change, nil
}

func (s *Service) DeleteAppointment(ctx context.Context, id domain.AppointmentID) (store.Change[models.Appointment], error) {
	change, err := s.store.DeleteAppointment(ctx, id)
	if err != nil {
		return change, s.reject(err)
	}
	if change.Applied {
		s.emit(ctx, "appointments", changelog.OpDelete, string(id), change.Before, nil)
	}
	return change, nil
}

func (s *Service) CreateMedicalRecord(ctx context.Context, in CreateMedicalRecordInput) (models.MedicalRecord, error) {
	record, err := models.NewMedicalRecord(domain.NewRecordID(), in.PatientID, in.DoctorID, in.Date, in.Diagnosis, in.Notes)
	if err != nil {
		return models.MedicalRecord{}, s.reject(err)
	}
	if err := s.store.AddMedicalRecord(ctx, record); err != nil {
		return models.MedicalRecord{}, s.reject(err)
	}
	s.emit(ctx, "medicalRecords", changelog.OpCreate, string(record.ID), nil, record)
	return record, nil
}

func (s *Service) UpdateMedicalRecord(ctx context.Context, id domain.RecordID, patch models.MedicalRecordPatch) (store.Change[models.MedicalRecord], error) {
	change, err := s.store.UpdateMedicalRecord(ctx, id, patch)
	if err != nil {
		return change, s.reject(err)
	}
	if change.Applied {
		s.emit(ctx, "medicalRecords", changelog.OpUpdate, string(id), change.Before, change.After)
	}
	return change, nil
}

func (s *Service) DeleteMedicalRecord(ctx context.Context, id domain.RecordID) (store.Change[models.MedicalRecord], error) {
	change, err := s.store.DeleteMedicalRecord(ctx, id)
	if err != nil {
		return change, s.reject(err)
	}
	if change.Applied {
		s.emit(ctx, "medicalRecords", changelog.OpDelete, string(id), change.Before, nil)
	}
	return change, nil
}

func (s *Service) CreatePrescription(ctx context.Context, in CreatePrescriptionInput) (models.Prescription, error) {
	rx, err := models.NewPrescription(domain.NewPrescriptionID(), in.PatientID, in.DoctorID, in.Date, in.Medications, in.Instructions)
	if err != nil {
		return models.Prescription{}, s.reject(err)
	}
	if err := s.store.AddPrescription(ctx, rx); err != nil {
		return models.Prescription{}, s.reject(err)
	}
	s.emit(ctx, "prescriptions", changelog.OpCreate, string(rx.ID), nil, rx)
	return rx, nil
}

func (s *Service) UpdatePrescription(ctx context.Context, id domain.PrescriptionID, patch models.PrescriptionPatch) (store.Change[models.Prescription], error) {
	change, err := s.store.UpdatePrescription(ctx, id, patch)
	if err != nil {
		return change, s.reject(err)
	}
	if change.Applied {
		s.emit(ctx, "prescriptions", changelog.OpUpdate, string(id), change.Before, change.After)
	}
	return change, nil
}

func (s *Service) DeletePrescription(ctx context.Context, id domain.PrescriptionID) (store.Change[models.Prescription], error) {
	change, err := s.store.DeletePrescription(ctx, id)
	if err != nil {
		return change, s.reject(err)
	}
	if change.Applied {
		s.emit(ctx, "prescriptions", changelog.OpDelete, string(id), change.Before, nil)
	}
	return change, nil
}

// MarkPrescriptionViewed flips the patient-visible viewed flag.
func (s *Service) MarkPrescriptionViewed(ctx context.Context, id domain.PrescriptionID) (store.Change[models.Prescription], error) {
	viewed := true
	return s.UpdatePrescription(ctx, id, models.PrescriptionPatch{IsViewed: &viewed})
}

func (s *Service) Appointments() []models.Appointment {
	return s.store.Appointments()
}

func (s *Service) MedicalRecords() []models.MedicalRecord {
	return s.store.MedicalRecords()
}

func (s *Service) Prescriptions() []models.Prescription {
	return s.store.Prescriptions()
}

func (s *Service) AppointmentByID(id domain.AppointmentID) (models.Appointment, bool) {
	return s.store.AppointmentByID(id)
}

func (s *Service) MedicalRecordByID(id domain.RecordID) (models.MedicalRecord, bool) {
	return s.store.MedicalRecordByID(id)
}

func (s *Service) PrescriptionByID(id domain.PrescriptionID) (models.Prescription, bool) {
	return s.store.PrescriptionByID(id)
}

func (s *Service) AppointmentsByPatient(id domain.UserID) []models.Appointment {
	return s.store.AppointmentsByPatient(id)
}

func (s *Service) AppointmentsByDoctor(id domain.UserID) []models.Appointment {
	return s.store.AppointmentsByDoctor(id)
}

func (s *Service) MedicalRecordsByPatient(id domain.UserID) []models.MedicalRecord {
	return s.store.MedicalRecordsByPatient(id)
}

func (s *Service) PrescriptionsByPatient(id domain.UserID) []models.Prescription {
	return s.store.PrescriptionsByPatient(id)
}
