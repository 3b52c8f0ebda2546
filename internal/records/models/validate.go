package models

import (
	"time"

	derrors "medichart/pkg/domain-errors"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

// ValidateDate checks the calendar-date wire format (YYYY-MM-DD).
func ValidateDate(s string) error {
	if _, err := time.Parse(dateLayout, s); err != nil {
		return derrors.Newf(derrors.CodeInvalidInput, "date %q must be YYYY-MM-DD", s)
	}
	return nil
}

// ValidateClock checks the hour:minute wire format (HH:MM, 24h).
func ValidateClock(s string) error {
	if _, err := time.Parse(clockLayout, s); err != nil {
		return derrors.Newf(derrors.CodeInvalidInput, "time %q must be HH:MM", s)
	}
	return nil
}
