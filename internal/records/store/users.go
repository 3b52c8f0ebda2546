package store

import (
	"context"

	"medichart/internal/records/models"
	"medichart/internal/snapshot"
	"medichart/pkg/domain"
	derrors "medichart/pkg/domain-errors"
)

// AddUser appends a plain user record. For patients, doctors, and admins use
// the variant Add operations, which maintain the mirrored rows.
func (s *Store) AddUser(ctx context.Context, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.emailInUse(user.Email) {
		return derrors.Newf(derrors.CodeDuplicateEmail, "email %s is already registered", user.Email)
	}
	s.users.add(user)
	return s.flush(ctx, snapshot.KeyUsers)
}

// AddPatient appends the patient and its mirrored user row under the shared
// identity contract. Fails before any mutation on a duplicate email.
func (s *Store) AddPatient(ctx context.Context, patient models.Patient) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if patient.Role != domain.RolePatient {
		return derrors.New(derrors.CodeInvalidInput, "patient must carry role=patient")
	}
	if s.emailInUse(patient.Email) {
		return derrors.Newf(derrors.CodeDuplicateEmail, "email %s is already registered", patient.Email)
	}
	s.patients.add(patient)
	s.users.add(patient.User)
	return s.flush(ctx, snapshot.KeyPatients, snapshot.KeyUsers)
}

func (s *Store) AddDoctor(ctx context.Context, doctor models.Doctor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if doctor.Role != domain.RoleDoctor {
		return derrors.New(derrors.CodeInvalidInput, "doctor must carry role=doctor")
	}
	if s.emailInUse(doctor.Email) {
		return derrors.Newf(derrors.CodeDuplicateEmail, "email %s is already registered", doctor.Email)
	}
	s.doctors.add(doctor)
	s.users.add(doctor.User)
	return s.flush(ctx, snapshot.KeyDoctors, snapshot.KeyUsers)
}

func (s *Store) AddAdmin(ctx context.Context, admin models.Admin) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if admin.Role != domain.RoleAdmin {
		return derrors.New(derrors.CodeInvalidInput, "admin must carry role=admin")
	}
	if s.emailInUse(admin.Email) {
		return derrors.Newf(derrors.CodeDuplicateEmail, "email %s is already registered", admin.Email)
	}
	s.admins.add(admin)
	s.users.add(admin.User)
	return s.flush(ctx, snapshot.KeyAdmins, snapshot.KeyUsers)
}

// UpdateUser merges the patch into the user row and mirrors the shared
// fields into the role variant so base and variant never drift.
func (s *Store) UpdateUser(ctx context.Context, id domain.UserID, patch models.UserPatch) (Change[models.User], error) {
	if err := patch.Validate(); err != nil {
		return Change[models.User]{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	before, ok := s.users.get(string(id))
	if !ok {
		return Change[models.User]{}, nil
	}
	s.users.mutate(string(id), func(u *models.User) { patch.Apply(u) })
	after, _ := s.users.get(string(id))

	keys := []string{snapshot.KeyUsers}
	keys = append(keys, s.mirrorUserLocked(after)...)
	if err := s.flush(ctx, keys...); err != nil {
		return Change[models.User]{}, err
	}
	return Change[models.User]{Before: before, After: after, Applied: true}, nil
}

// mirrorUserLocked copies shared identity fields into the variant row for
// the user's role, returning the collections that changed.
func (s *Store) mirrorUserLocked(user models.User) []string {
	switch user.Role {
	case domain.RolePatient:
		if s.patients.mutate(string(user.ID), func(p *models.Patient) { p.User = user }) {
			return []string{snapshot.KeyPatients}
		}
	case domain.RoleDoctor:
		if s.doctors.mutate(string(user.ID), func(d *models.Doctor) { d.User = user }) {
			return []string{snapshot.KeyDoctors}
		}
	case domain.RoleAdmin:
		if s.admins.mutate(string(user.ID), func(a *models.Admin) { a.User = user }) {
			return []string{snapshot.KeyAdmins}
		}
	}
	return nil
}

// UpdatePatient merges the patch into the patient and mirrors the shared
// fields back into the user row.
func (s *Store) UpdatePatient(ctx context.Context, id domain.UserID, patch models.PatientPatch) (Change[models.Patient], error) {
	if err := patch.Validate(); err != nil {
		return Change[models.Patient]{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	before, ok := s.patients.get(string(id))
	if !ok {
		return Change[models.Patient]{}, nil
	}
	s.patients.mutate(string(id), func(p *models.Patient) { patch.Apply(p) })
	after, _ := s.patients.get(string(id))
	s.users.mutate(string(id), func(u *models.User) { *u = after.User })

	if err := s.flush(ctx, snapshot.KeyPatients, snapshot.KeyUsers); err != nil {
		return Change[models.Patient]{}, err
	}
	return Change[models.Patient]{Before: before, After: after, Applied: true}, nil
}

func (s *Store) UpdateDoctor(ctx context.Context, id domain.UserID, patch models.DoctorPatch) (Change[models.Doctor], error) {
	if err := patch.Validate(); err != nil {
		return Change[models.Doctor]{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	before, ok := s.doctors.get(string(id))
	if !ok {
		return Change[models.Doctor]{}, nil
	}
	s.doctors.mutate(string(id), func(d *models.Doctor) { patch.Apply(d) })
	after, _ := s.doctors.get(string(id))
	s.users.mutate(string(id), func(u *models.User) { *u = after.User })

	if err := s.flush(ctx, snapshot.KeyDoctors, snapshot.KeyUsers); err != nil {
		return Change[models.Doctor]{}, err
	}
	return Change[models.Doctor]{Before: before, After: after, Applied: true}, nil
}

// DeleteUser removes the user and, via the shared identity contract, its
// variant row. Silent no-op when the id is unknown. Dependent appointments,
// records, and prescriptions are intentionally left in place (no cascade);
// only the doctor/patient assignment back-references are cleaned so the
// bidirectional invariant cannot dangle.
func (s *Store) DeleteUser(ctx context.Context, id domain.UserID) (Change[models.User], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users.get(string(id))
	if !ok {
		return Change[models.User]{}, nil
	}

	var keys []string
	switch user.Role {
	case domain.RolePatient:
		keys = s.deletePatientLocked(id)
	case domain.RoleDoctor:
		keys = s.deleteDoctorLocked(id)
	case domain.RoleAdmin:
		s.admins.remove(string(id))
		s.users.remove(string(id))
		keys = []string{snapshot.KeyAdmins, snapshot.KeyUsers}
	default:
		s.users.remove(string(id))
		keys = []string{snapshot.KeyUsers}
	}
	if err := s.flush(ctx, keys...); err != nil {
		return Change[models.User]{}, err
	}
	return Change[models.User]{Before: user, Applied: true}, nil
}

// DeletePatient removes the patient and its mirrored user row.
func (s *Store) DeletePatient(ctx context.Context, id domain.UserID) (Change[models.Patient], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before, ok := s.patients.get(string(id))
	if !ok {
		return Change[models.Patient]{}, nil
	}
	keys := s.deletePatientLocked(id)
	if err := s.flush(ctx, keys...); err != nil {
		return Change[models.Patient]{}, err
	}
	return Change[models.Patient]{Before: before, Applied: true}, nil
}

func (s *Store) DeleteDoctor(ctx context.Context, id domain.UserID) (Change[models.Doctor], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before, ok := s.doctors.get(string(id))
	if !ok {
		return Change[models.Doctor]{}, nil
	}
	keys := s.deleteDoctorLocked(id)
	if err := s.flush(ctx, keys...); err != nil {
		return Change[models.Doctor]{}, err
	}
	return Change[models.Doctor]{Before: before, Applied: true}, nil
}

func (s *Store) deletePatientLocked(id domain.UserID) []string {
	patient, ok := s.patients.remove(string(id))
	s.users.remove(string(id))
	keys := []string{snapshot.KeyPatients, snapshot.KeyUsers}
	if ok && patient.AssignedDoctorID != "" {
		if s.doctors.mutate(string(patient.AssignedDoctorID), func(d *models.Doctor) {
			d.PatientIDs = removeID(d.PatientIDs, id)
		}) {
			keys = append(keys, snapshot.KeyDoctors)
		}
	}
	return keys
}

func (s *Store) deleteDoctorLocked(id domain.UserID) []string {
	s.doctors.remove(string(id))
	s.users.remove(string(id))
	keys := []string{snapshot.KeyDoctors, snapshot.KeyUsers}
	unassigned := false
	for i := range s.patients.rows {
		if s.patients.rows[i].AssignedDoctorID == id {
			s.patients.rows[i].AssignedDoctorID = ""
			unassigned = true
		}
	}
	if unassigned {
		keys = append(keys, snapshot.KeyPatients)
	}
	return keys
}

// removeID returns a fresh slice so rows handed to callers before the
// removal keep their contents; filtering in place would write through the
// backing array those copies still share.
func removeID[T ~string](ids []T, id T) []T {
	out := make([]T, 0, len(ids))
	for _, existing := range ids {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}
