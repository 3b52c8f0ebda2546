// Package store implements the domain store: the in-memory source of truth
// for all seven collections and the single point of mutation.
//
// Every operation runs under one coarse lock. That is deliberate: the
// assignment and mirror paths touch two collections (patients and doctors,
// or a variant collection and users) that must change together and read
// consistently, so per-collection locks would buy nothing but deadlock
// ordering rules. At the expected scale (tens to low hundreds of records per
// collection) contention is a non-issue.
//
// Mutations flush the affected collections to the snapshot store before
// returning, still under the lock, so no caller can observe a state that has
// not been offered to the persistence adapter.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"medichart/internal/records/models"
	"medichart/internal/snapshot"
	"medichart/pkg/domain"
	derrors "medichart/pkg/domain-errors"
	"medichart/pkg/platform/sentinel"
)

// Store owns the seven collections. Construct once per process with New,
// which hydrates from the snapshot store.
type Store struct {
	mu    sync.RWMutex
	snaps snapshot.Store

	users          *table[models.User]
	patients       *table[models.Patient]
	doctors        *table[models.Doctor]
	admins         *table[models.Admin]
	appointments   *table[models.Appointment]
	medicalRecords *table[models.MedicalRecord]
	prescriptions  *table[models.Prescription]
}

// Change reports a mutation's outcome to the caller: the entity before and
// after, and whether anything was applied at all. Update and delete are
// tolerant of missing ids (Applied=false, no error), matching the reference
// behavior; callers decide whether that deserves a 404.
type Change[T any] struct {
	Before  T
	After   T
	Applied bool
}

// New builds a Store hydrated from the snapshot store: one Load per
// collection, absent keys meaning an empty collection.
func New(ctx context.Context, snaps snapshot.Store) (*Store, error) {
	s := &Store{
		snaps:          snaps,
		users:          newTable(func(u models.User) string { return string(u.ID) }),
		patients:       newTable(func(p models.Patient) string { return string(p.ID) }),
		doctors:        newTable(func(d models.Doctor) string { return string(d.ID) }),
		admins:         newTable(func(a models.Admin) string { return string(a.ID) }),
		appointments:   newTable(func(a models.Appointment) string { return string(a.ID) }),
		medicalRecords: newTable(func(r models.MedicalRecord) string { return string(r.ID) }),
		prescriptions:  newTable(func(p models.Prescription) string { return string(p.ID) }),
	}
	if err := loadTable(ctx, snaps, snapshot.KeyUsers, s.users); err != nil {
		return nil, err
	}
	if err := loadTable(ctx, snaps, snapshot.KeyPatients, s.patients); err != nil {
		return nil, err
	}
	if err := loadTable(ctx, snaps, snapshot.KeyDoctors, s.doctors); err != nil {
		return nil, err
	}
	if err := loadTable(ctx, snaps, snapshot.KeyAdmins, s.admins); err != nil {
		return nil, err
	}
	if err := loadTable(ctx, snaps, snapshot.KeyAppointments, s.appointments); err != nil {
		return nil, err
	}
	if err := loadTable(ctx, snaps, snapshot.KeyMedicalRecords, s.medicalRecords); err != nil {
		return nil, err
	}
	if err := loadTable(ctx, snaps, snapshot.KeyPrescriptions, s.prescriptions); err != nil {
		return nil, err
	}
	return s, nil
}

// snapshotCode classifies a backend failure: unreachable backends are
// retryable (unavailable), anything else is an internal fault.
func snapshotCode(err error) derrors.Code {
	if errors.Is(err, sentinel.ErrUnavailable) {
		return derrors.CodeUnavailable
	}
	return derrors.CodeInternal
}

func loadTable[T any](ctx context.Context, snaps snapshot.Store, key string, tb *table[T]) error {
	blob, ok, err := snaps.Load(ctx, key)
	if err != nil {
		return derrors.Wrap(err, snapshotCode(err), "load "+key)
	}
	if !ok {
		return nil
	}
	var rows []T
	if err := json.Unmarshal(blob, &rows); err != nil {
		return derrors.Wrap(err, derrors.CodeInternal, fmt.Sprintf("corrupt snapshot %s", key))
	}
	for _, row := range rows {
		tb.add(row)
	}
	return nil
}

func saveTable[T any](ctx context.Context, snaps snapshot.Store, key string, tb *table[T]) error {
	blob, err := json.Marshal(tb.rows)
	if err != nil {
		return derrors.Wrap(err, derrors.CodeInternal, "encode "+key)
	}
	if err := snaps.Save(ctx, key, blob); err != nil {
		return derrors.Wrap(err, snapshotCode(err), "persist "+key)
	}
	return nil
}

// flush writes the named collections to the snapshot store. Must be called
// with the write lock held so the persisted blob matches what readers see.
func (s *Store) flush(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		var err error
		switch key {
		case snapshot.KeyUsers:
			err = saveTable(ctx, s.snaps, key, s.users)
		case snapshot.KeyPatients:
			err = saveTable(ctx, s.snaps, key, s.patients)
		case snapshot.KeyDoctors:
			err = saveTable(ctx, s.snaps, key, s.doctors)
		case snapshot.KeyAdmins:
			err = saveTable(ctx, s.snaps, key, s.admins)
		case snapshot.KeyAppointments:
			err = saveTable(ctx, s.snaps, key, s.appointments)
		case snapshot.KeyMedicalRecords:
			err = saveTable(ctx, s.snaps, key, s.medicalRecords)
		case snapshot.KeyPrescriptions:
			err = saveTable(ctx, s.snaps, key, s.prescriptions)
		default:
			err = derrors.Newf(derrors.CodeInternal, "unknown collection %q", key)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// emailInUse reports whether any user already holds the email. Uniqueness is
// checked case-insensitively and only at creation time.
func (s *Store) emailInUse(email string) bool {
	needle := strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.users.rows {
		if strings.ToLower(u.Email) == needle {
			return true
		}
	}
	return false
}

// Counts returns the current collection sizes, for gauges and diagnostics.
func (s *Store) Counts() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]int{
		snapshot.KeyUsers:          s.users.len(),
		snapshot.KeyPatients:       s.patients.len(),
		snapshot.KeyDoctors:        s.doctors.len(),
		snapshot.KeyAdmins:         s.admins.len(),
		snapshot.KeyAppointments:   s.appointments.len(),
		snapshot.KeyMedicalRecords: s.medicalRecords.len(),
		snapshot.KeyPrescriptions:  s.prescriptions.len(),
	}
}

// Users returns all users in insertion order.
func (s *Store) Users() []models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.users.list()
}

func (s *Store) Patients() []models.Patient {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.patients.list()
}

func (s *Store) Doctors() []models.Doctor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doctors.list()
}

func (s *Store) Admins() []models.Admin {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.admins.list()
}

func (s *Store) Appointments() []models.Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.appointments.list()
}

func (s *Store) MedicalRecords() []models.MedicalRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.medicalRecords.list()
}

func (s *Store) Prescriptions() []models.Prescription {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prescriptions.list()
}

// UsersByRole filters users by exact role match, in insertion order.
func (s *Store) UsersByRole(role domain.Role) []models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.users.filter(func(u models.User) bool { return u.Role == role })
}

// UserByEmail is the identity collaborator's lookup for login. Matching is
// case-insensitive, consistent with the uniqueness check.
func (s *Store) UserByEmail(email string) (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	needle := strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.users.rows {
		if strings.ToLower(u.Email) == needle {
			return u, true
		}
	}
	return models.User{}, false
}

func (s *Store) UserByID(id domain.UserID) (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.users.get(string(id))
}

func (s *Store) PatientByID(id domain.UserID) (models.Patient, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.patients.get(string(id))
}

func (s *Store) DoctorByID(id domain.UserID) (models.Doctor, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doctors.get(string(id))
}

func (s *Store) AppointmentByID(id domain.AppointmentID) (models.Appointment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.appointments.get(string(id))
}

func (s *Store) MedicalRecordByID(id domain.RecordID) (models.MedicalRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.medicalRecords.get(string(id))
}

func (s *Store) PrescriptionByID(id domain.PrescriptionID) (models.Prescription, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prescriptions.get(string(id))
}

func (s *Store) AppointmentsByPatient(patientID domain.UserID) []models.Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.appointments.filter(func(a models.Appointment) bool { return a.PatientID == patientID })
}

func (s *Store) AppointmentsByDoctor(doctorID domain.UserID) []models.Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.appointments.filter(func(a models.Appointment) bool { return a.DoctorID == doctorID })
}

func (s *Store) MedicalRecordsByPatient(patientID domain.UserID) []models.MedicalRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.medicalRecords.filter(func(r models.MedicalRecord) bool { return r.PatientID == patientID })
}

func (s *Store) PrescriptionsByPatient(patientID domain.UserID) []models.Prescription {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prescriptions.filter(func(p models.Prescription) bool { return p.PatientID == patientID })
}
