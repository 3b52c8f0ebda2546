package domain

import (
	"github.com/google/uuid"

	derrors "medichart/pkg/domain-errors"
)

// Typed identifiers keep references between collections from being mixed up
// at compile time. All IDs are opaque strings assigned at creation; patients,
// doctors, and admins share the User ID space.
type (
	UserID         string
	AppointmentID  string
	RecordID       string
	PrescriptionID string
)

func NewUserID() UserID                 { return UserID(uuid.NewString()) }
func NewAppointmentID() AppointmentID   { return AppointmentID(uuid.NewString()) }
func NewRecordID() RecordID             { return RecordID(uuid.NewString()) }
func NewPrescriptionID() PrescriptionID { return PrescriptionID(uuid.NewString()) }

func (id UserID) String() string         { return string(id) }
func (id AppointmentID) String() string  { return string(id) }
func (id RecordID) String() string       { return string(id) }
func (id PrescriptionID) String() string { return string(id) }

// ParseUserID validates an externally supplied user ID. IDs are minted as
// UUIDs, so anything else arriving at a trust boundary is rejected.
func ParseUserID(s string) (UserID, error) {
	if err := parseOpaque(s); err != nil {
		return "", err
	}
	return UserID(s), nil
}

func ParseAppointmentID(s string) (AppointmentID, error) {
	if err := parseOpaque(s); err != nil {
		return "", err
	}
	return AppointmentID(s), nil
}

func ParseRecordID(s string) (RecordID, error) {
	if err := parseOpaque(s); err != nil {
		return "", err
	}
	return RecordID(s), nil
}

func ParsePrescriptionID(s string) (PrescriptionID, error) {
	if err := parseOpaque(s); err != nil {
		return "", err
	}
	return PrescriptionID(s), nil
}

func parseOpaque(s string) error {
	if s == "" {
		return derrors.New(derrors.CodeInvalidInput, "id is empty")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return derrors.Newf(derrors.CodeInvalidInput, "malformed id %q", s)
	}
	if parsed == uuid.Nil {
		return derrors.New(derrors.CodeInvalidInput, "id is the nil UUID")
	}
	return nil
}
