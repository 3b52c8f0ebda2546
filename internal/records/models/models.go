// Package models defines the health-record entities. Patient, Doctor, and
// Admin are role-tagged variants sharing a common User payload: every
// specialized record also exists as a User row in the store, and the two
// must never be mutated independently.
package models

import (
	"regexp"
	"strings"

	derrors "medichart/pkg/domain-errors"

	"medichart/pkg/domain"
)

// User is the base identity record.
type User struct {
	ID     domain.UserID `json:"id"`
	Name   string        `json:"name"`
	Email  string        `json:"email"`
	Role   domain.Role   `json:"role"`
	Active bool          `json:"active"`
}

// Patient is a User with role=patient. AssignedDoctorID is a weak reference;
// when set, the referenced doctor's PatientIDs must contain this patient's
// id (bidirectional invariant, maintained by the store).
type Patient struct {
	User
	Age              int                     `json:"age"`
	Gender           domain.Gender           `json:"gender"`
	Address          string                  `json:"address"`
	AssignedDoctorID domain.UserID           `json:"assignedDoctorId,omitempty"`
	MedicalRecordIDs []domain.RecordID       `json:"medicalRecordIds"`
	PrescriptionIDs  []domain.PrescriptionID `json:"prescriptionIds"`
}

// Doctor is a User with role=doctor. PatientIDs has set semantics but keeps
// insertion order.
type Doctor struct {
	User
	Specialization string                 `json:"specialization"`
	PatientIDs     []domain.UserID        `json:"patients"`
	AppointmentIDs []domain.AppointmentID `json:"appointments"`
}

// Admin is a User with role=admin and no extra attributes.
type Admin struct {
	User
}

type Appointment struct {
	ID        domain.AppointmentID     `json:"id"`
	PatientID domain.UserID            `json:"patientId"`
	DoctorID  domain.UserID            `json:"doctorId"`
	Date      string                   `json:"date"`
	Time      string                   `json:"time"`
	Status    domain.AppointmentStatus `json:"status"`
	Notes     string                   `json:"notes,omitempty"`
}

type MedicalRecord struct {
	ID        domain.RecordID `json:"id"`
	PatientID domain.UserID   `json:"patientId"`
	DoctorID  domain.UserID   `json:"doctorId"`
	Date      string          `json:"date"`
	Diagnosis string          `json:"diagnosis"`
	Notes     string          `json:"notes"`
}

type Prescription struct {
	ID           domain.PrescriptionID `json:"id"`
	PatientID    domain.UserID         `json:"patientId"`
	DoctorID     domain.UserID         `json:"doctorId"`
	Date         string                `json:"date"`
	Medications  []Medication          `json:"medications"`
	Instructions string                `json:"instructions"`
	IsViewed     bool                  `json:"isViewed"`
}

type Medication struct {
	Name      string `json:"name"`
	Dosage    string `json:"dosage"`
	Frequency string `json:"frequency"`
	Duration  string `json:"duration"`
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// NewUser validates and constructs a base identity record.
func NewUser(id domain.UserID, name, email string, role domain.Role) (User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if id == "" {
		return User{}, derrors.New(derrors.CodeInvalidInput, "user id is required")
	}
	if name == "" {
		return User{}, derrors.New(derrors.CodeInvalidInput, "name is required")
	}
	if !emailPattern.MatchString(email) {
		return User{}, derrors.New(derrors.CodeInvalidInput, "email is malformed")
	}
	if _, err := domain.ParseRole(role.String()); err != nil {
		return User{}, derrors.Wrap(err, derrors.CodeInvalidInput, "invalid role")
	}
	return User{ID: id, Name: name, Email: email, Role: role, Active: true}, nil
}

// NewPatient validates and constructs a patient. The record id lists start
// empty and are owned by the store from then on.
func NewPatient(id domain.UserID, name, email string, age int, gender domain.Gender, address string) (Patient, error) {
	user, err := NewUser(id, name, email, domain.RolePatient)
	if err != nil {
		return Patient{}, err
	}
	if age < 0 || age > 150 {
		return Patient{}, derrors.New(derrors.CodeInvalidInput, "age is out of range")
	}
	if _, err := domain.ParseGender(gender.String()); err != nil {
		return Patient{}, derrors.Wrap(err, derrors.CodeInvalidInput, "invalid gender")
	}
	return Patient{
		User:             user,
		Age:              age,
		Gender:           gender,
		Address:          strings.TrimSpace(address),
		MedicalRecordIDs: []domain.RecordID{},
		PrescriptionIDs:  []domain.PrescriptionID{},
	}, nil
}

func NewDoctor(id domain.UserID, name, email, specialization string) (Doctor, error) {
	user, err := NewUser(id, name, email, domain.RoleDoctor)
	if err != nil {
		return Doctor{}, err
	}
	specialization = strings.TrimSpace(specialization)
	if specialization == "" {
		return Doctor{}, derrors.New(derrors.CodeInvalidInput, "specialization is required")
	}
	return Doctor{
		User:           user,
		Specialization: specialization,
		PatientIDs:     []domain.UserID{},
		AppointmentIDs: []domain.AppointmentID{},
	}, nil
}

func NewAdmin(id domain.UserID, name, email string) (Admin, error) {
	user, err := NewUser(id, name, email, domain.RoleAdmin)
	if err != nil {
		return Admin{}, err
	}
	return Admin{User: user}, nil
}

// NewAppointment validates shape only; the store checks that the referenced
// patient and doctor exist at creation time.
func NewAppointment(id domain.AppointmentID, patientID, doctorID domain.UserID, date, clock string, status domain.AppointmentStatus, notes string) (Appointment, error) {
	if id == "" {
		return Appointment{}, derrors.New(derrors.CodeInvalidInput, "appointment id is required")
	}
	if patientID == "" || doctorID == "" {
		return Appointment{}, derrors.New(derrors.CodeInvalidInput, "patientId and doctorId are required")
	}
	if err := ValidateDate(date); err != nil {
		return Appointment{}, err
	}
	if err := ValidateClock(clock); err != nil {
		return Appointment{}, err
	}
	if _, err := domain.ParseAppointmentStatus(status.String()); err != nil {
		return Appointment{}, derrors.Wrap(err, derrors.CodeInvalidInput, "invalid status")
	}
	return Appointment{
		ID:        id,
		PatientID: patientID,
		DoctorID:  doctorID,
		Date:      date,
		Time:      clock,
		Status:    status,
		Notes:     strings.TrimSpace(notes),
	}, nil
}

func NewMedicalRecord(id domain.RecordID, patientID, doctorID domain.UserID, date, diagnosis, notes string) (MedicalRecord, error) {
	if id == "" {
		return MedicalRecord{}, derrors.New(derrors.CodeInvalidInput, "record id is required")
	}
	if patientID == "" || doctorID == "" {
		return MedicalRecord{}, derrors.New(derrors.CodeInvalidInput, "patientId and doctorId are required")
	}
	if err := ValidateDate(date); err != nil {
		return MedicalRecord{}, err
	}
	diagnosis = strings.TrimSpace(diagnosis)
	if diagnosis == "" {
		return MedicalRecord{}, derrors.New(derrors.CodeInvalidInput, "diagnosis is required")
	}
	return MedicalRecord{
		ID:        id,
		PatientID: patientID,
		DoctorID:  doctorID,
		Date:      date,
		Diagnosis: diagnosis,
		Notes:     notes,
	}, nil
}

func NewPrescription(id domain.PrescriptionID, patientID, doctorID domain.UserID, date string, medications []Medication, instructions string) (Prescription, error) {
	if id == "" {
		return Prescription{}, derrors.New(derrors.CodeInvalidInput, "prescription id is required")
	}
	if patientID == "" || doctorID == "" {
		return Prescription{}, derrors.New(derrors.CodeInvalidInput, "patientId and doctorId are required")
	}
	if err := ValidateDate(date); err != nil {
		return Prescription{}, err
	}
	if len(medications) == 0 {
		return Prescription{}, derrors.New(derrors.CodeInvalidInput, "at least one medication is required")
	}
	for _, med := range medications {
		if strings.TrimSpace(med.Name) == "" {
			return Prescription{}, derrors.New(derrors.CodeInvalidInput, "medication name is required")
		}
	}
	return Prescription{
		ID:           id,
		PatientID:    patientID,
		DoctorID:     doctorID,
		Date:         date,
		Medications:  medications,
		Instructions: instructions,
		IsViewed:     false,
	}, nil
}
