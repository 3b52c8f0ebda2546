package models

import (
	"strings"

	derrors "medichart/pkg/domain-errors"

	"medichart/pkg/domain"
)

// Patches carry partial updates with merge semantics: only non-nil fields
// change. They are typed per entity and validated field by field instead of
// spreading arbitrary maps onto records. Role and the relationship fields
// (assigned doctor, owned record ids) are deliberately not patchable; those
// move only through the dedicated store operations.

type UserPatch struct {
	Name   *string `json:"name,omitempty"`
	Email  *string `json:"email,omitempty"`
	Active *bool   `json:"active,omitempty"`
}

func (p UserPatch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return derrors.New(derrors.CodeInvalidInput, "name cannot be blank")
	}
	if p.Email != nil && !emailPattern.MatchString(strings.TrimSpace(*p.Email)) {
		return derrors.New(derrors.CodeInvalidInput, "email is malformed")
	}
	return nil
}

func (p UserPatch) Apply(u *User) {
	if p.Name != nil {
		u.Name = strings.TrimSpace(*p.Name)
	}
	if p.Email != nil {
		u.Email = strings.TrimSpace(*p.Email)
	}
	if p.Active != nil {
		u.Active = *p.Active
	}
}

// IsZero reports whether the patch changes nothing.
func (p UserPatch) IsZero() bool {
	return p.Name == nil && p.Email == nil && p.Active == nil
}

type PatientPatch struct {
	UserPatch
	Age     *int           `json:"age,omitempty"`
	Gender  *domain.Gender `json:"gender,omitempty"`
	Address *string        `json:"address,omitempty"`
}

func (p PatientPatch) Validate() error {
	if err := p.UserPatch.Validate(); err != nil {
		return err
	}
	if p.Age != nil && (*p.Age < 0 || *p.Age > 150) {
		return derrors.New(derrors.CodeInvalidInput, "age is out of range")
	}
	if p.Gender != nil {
		if _, err := domain.ParseGender(p.Gender.String()); err != nil {
			return derrors.Wrap(err, derrors.CodeInvalidInput, "invalid gender")
		}
	}
	return nil
}

func (p PatientPatch) Apply(patient *Patient) {
	p.UserPatch.Apply(&patient.User)
	if p.Age != nil {
		patient.Age = *p.Age
	}
	if p.Gender != nil {
		patient.Gender = *p.Gender
	}
	if p.Address != nil {
		patient.Address = strings.TrimSpace(*p.Address)
	}
}

type DoctorPatch struct {
	UserPatch
	Specialization *string `json:"specialization,omitempty"`
}

func (p DoctorPatch) Validate() error {
	if err := p.UserPatch.Validate(); err != nil {
		return err
	}
	if p.Specialization != nil && strings.TrimSpace(*p.Specialization) == "" {
		return derrors.New(derrors.CodeInvalidInput, "specialization cannot be blank")
	}
	return nil
}

func (p DoctorPatch) Apply(doctor *Doctor) {
	p.UserPatch.Apply(&doctor.User)
	if p.Specialization != nil {
		doctor.Specialization = strings.TrimSpace(*p.Specialization)
	}
}

type AppointmentPatch struct {
	Date   *string                   `json:"date,omitempty"`
	Time   *string                   `json:"time,omitempty"`
	Status *domain.AppointmentStatus `json:"status,omitempty"`
	Notes  *string                   `json:"notes,omitempty"`
}

func (p AppointmentPatch) Validate() error {
	if p.Date != nil {
		if err := ValidateDate(*p.Date); err != nil {
			return err
		}
	}
	if p.Time != nil {
		if err := ValidateClock(*p.Time); err != nil {
			return err
		}
	}
	if p.Status != nil {
		if _, err := domain.ParseAppointmentStatus(p.Status.String()); err != nil {
			return derrors.Wrap(err, derrors.CodeInvalidInput, "invalid status")
		}
	}
	return nil
}

func (p AppointmentPatch) Apply(a *Appointment) {
	if p.Date != nil {
		a.Date = *p.Date
	}
	if p.Time != nil {
		a.Time = *p.Time
	}
	if p.Status != nil {
		a.Status = *p.Status
	}
	if p.Notes != nil {
		a.Notes = strings.TrimSpace(*p.Notes)
	}
}

type MedicalRecordPatch struct {
	Date      *string `json:"date,omitempty"`
	Diagnosis *string `json:"diagnosis,omitempty"`
	Notes     *string `json:"notes,omitempty"`
}

func (p MedicalRecordPatch) Validate() error {
	if p.Date != nil {
		if err := ValidateDate(*p.Date); err != nil {
			return err
		}
	}
	if p.Diagnosis != nil && strings.TrimSpace(*p.Diagnosis) == "" {
		return derrors.New(derrors.CodeInvalidInput, "diagnosis cannot be blank")
	}
	return nil
}

func (p MedicalRecordPatch) Apply(r *MedicalRecord) {
	if p.Date != nil {
		r.Date = *p.Date
	}
	if p.Diagnosis != nil {
		r.Diagnosis = strings.TrimSpace(*p.Diagnosis)
	}
	if p.Notes != nil {
		r.Notes = *p.Notes
	}
}

type PrescriptionPatch struct {
	Date         *string       `json:"date,omitempty"`
	Medications  *[]Medication `json:"medications,omitempty"`
	Instructions *string       `json:"instructions,omitempty"`
	IsViewed     *bool         `json:"isViewed,omitempty"`
}

func (p PrescriptionPatch) Validate() error {
	if p.Date != nil {
		if err := ValidateDate(*p.Date); err != nil {
			return err
		}
	}
	if p.Medications != nil {
		if len(*p.Medications) == 0 {
			return derrors.New(derrors.CodeInvalidInput, "at least one medication is required")
		}
		for _, med := range *p.Medications {
			if strings.TrimSpace(med.Name) == "" {
				return derrors.New(derrors.CodeInvalidInput, "medication name is required")
			}
		}
	}
	return nil
}

func (p PrescriptionPatch) Apply(rx *Prescription) {
	if p.Date != nil {
		rx.Date = *p.Date
	}
	if p.Medications != nil {
		rx.Medications = *p.Medications
	}
	if p.Instructions != nil {
		rx.Instructions = *p.Instructions
	}
	if p.IsViewed != nil {
		rx.IsViewed = *p.IsViewed
	}
}
