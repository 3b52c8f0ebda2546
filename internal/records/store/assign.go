package store

import (
	"context"

	"medichart/internal/records/models"
	"medichart/internal/snapshot"
	"medichart/pkg/domain"
	derrors "medichart/pkg/domain-errors"
)

// AssignDoctorToPatient links both sides of the care relationship: the
// patient's assignedDoctorId and the doctor's patient list change together
// under the same lock. Reassignment detaches the patient from the previous
// doctor first. Returns false when the pair is already linked.
func (s *Store) AssignDoctorToPatient(ctx context.Context, doctorID, patientID domain.UserID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	patient, ok := s.patients.get(string(patientID))
	if !ok {
		return false, derrors.Newf(derrors.CodeNotFound, "patient %s not found", patientID)
	}
	if !s.doctors.has(string(doctorID)) {
		return false, derrors.Newf(derrors.CodeNotFound, "doctor %s not found", doctorID)
	}
	if patient.AssignedDoctorID == doctorID {
		return false, nil
	}

	if patient.AssignedDoctorID != "" {
		s.doctors.mutate(string(patient.AssignedDoctorID), func(d *models.Doctor) {
			d.PatientIDs = removeID(d.PatientIDs, patientID)
		})
	}
	s.patients.mutate(string(patientID), func(p *models.Patient) {
		p.AssignedDoctorID = doctorID
	})
	s.doctors.mutate(string(doctorID), func(d *models.Doctor) {
		d.PatientIDs = append(d.PatientIDs, patientID)
	})

	if err := s.flush(ctx, snapshot.KeyPatients, snapshot.KeyDoctors); err != nil {
		return false, err
	}
	return true, nil
}

// RemoveDoctorFromPatient clears the patient's assignment and pulls the
// patient from the doctor's list. No-op (false, nil) when the patient is
// unknown or has no doctor assigned.
func (s *Store) RemoveDoctorFromPatient(ctx context.Context, patientID domain.UserID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	patient, ok := s.patients.get(string(patientID))
	if !ok || patient.AssignedDoctorID == "" {
		return false, nil
	}

	keys := []string{snapshot.KeyPatients}
	if s.doctors.mutate(string(patient.AssignedDoctorID), func(d *models.Doctor) {
		d.PatientIDs = removeID(d.PatientIDs, patientID)
	}) {
		keys = append(keys, snapshot.KeyDoctors)
	}
	s.patients.mutate(string(patientID), func(p *models.Patient) {
		p.AssignedDoctorID = ""
	})

	if err := s.flush(ctx, keys...); err != nil {
		return false, err
	}
	return true, nil
}

// DanglingRef names a reference whose target no longer exists. Deletes do
// not cascade, so dependents can outlive the user they point at; this report
// makes that visible to operators instead of pretending it cannot happen.
type DanglingRef struct {
	Collection string `json:"collection"`
	ID         string `json:"id"`
	Field      string `json:"field"`
	MissingID  string `json:"missingId"`
}

// DanglingRefs scans every cross-collection reference and reports the ones
// pointing at deleted users. Assignment back-references are cleaned at
// delete time and should never appear here.
func (s *Store) DanglingRefs() []DanglingRef {
	s.mu.RLock()
	defer s.mu.RUnlock()

	refs := []DanglingRef{}
	for _, p := range s.patients.rows {
		if p.AssignedDoctorID != "" && !s.doctors.has(string(p.AssignedDoctorID)) {
			refs = append(refs, DanglingRef{"patients", string(p.ID), "assignedDoctorId", string(p.AssignedDoctorID)})
		}
	}
	for _, a := range s.appointments.rows {
		if !s.patients.has(string(a.PatientID)) {
			refs = append(refs, DanglingRef{"appointments", string(a.ID), "patientId", string(a.PatientID)})
		}
		if !s.doctors.has(string(a.DoctorID)) {
			refs = append(refs, DanglingRef{"appointments", string(a.ID), "doctorId", string(a.DoctorID)})
		}
	}
	for _, r := range s.medicalRecords.rows {
		if !s.patients.has(string(r.PatientID)) {
			refs = append(refs, DanglingRef{"medicalRecords", string(r.ID), "patientId", string(r.PatientID)})
		}
		if !s.doctors.has(string(r.DoctorID)) {
			refs = append(refs, DanglingRef{"medicalRecords", string(r.ID), "doctorId", string(r.DoctorID)})
		}
	}
	for _, rx := range s.prescriptions.rows {
		if !s.patients.has(string(rx.PatientID)) {
			refs = append(refs, DanglingRef{"prescriptions", string(rx.ID), "patientId", string(rx.PatientID)})
		}
		if !s.doctors.has(string(rx.DoctorID)) {
			refs = append(refs, DanglingRef{"prescriptions", string(rx.ID), "doctorId", string(rx.DoctorID)})
		}
	}
	return refs
}
