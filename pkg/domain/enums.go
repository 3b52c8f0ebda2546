package domain

import "fmt"

// Role tags a User record as admin, doctor, or patient. Every specialized
// record (Patient, Doctor, Admin) carries the same role as its base User row.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

// ParseRole validates and returns a Role. Unknown roles are rejected at
// parse time so the store never holds an untagged user.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleDoctor, RolePatient:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role: %q", s)
}

func (r Role) String() string { return string(r) }

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

func ParseGender(s string) (Gender, error) {
	switch Gender(s) {
	case GenderMale, GenderFemale, GenderOther:
		return Gender(s), nil
	}
	return "", fmt.Errorf("unknown gender: %q", s)
}

func (g Gender) String() string { return string(g) }

type AppointmentStatus string

const (
	AppointmentScheduled AppointmentStatus = "scheduled"
	AppointmentCompleted AppointmentStatus = "completed"
	AppointmentCancelled AppointmentStatus = "cancelled"
)

func ParseAppointmentStatus(s string) (AppointmentStatus, error) {
	switch AppointmentStatus(s) {
	case AppointmentScheduled, AppointmentCompleted, AppointmentCancelled:
		return AppointmentStatus(s), nil
	}
	return "", fmt.Errorf("unknown appointment status: %q", s)
}

func (s AppointmentStatus) String() string { return string(s) }
