package store

import (
	"context"

	"medichart/internal/records/models"
	"medichart/internal/snapshot"
	"medichart/pkg/domain"
	derrors "medichart/pkg/domain-errors"
)

// AddAppointment requires both references to exist at creation time; they
// are not re-checked after later deletes. The appointment id is also
// registered on the doctor's appointment list.
func (s *Store) AddAppointment(ctx context.Context, appt models.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.patients.has(string(appt.PatientID)) {
		return derrors.Newf(derrors.CodeInvalidInput, "appointment references unknown patient %s", appt.PatientID)
	}
	if !s.doctors.has(string(appt.DoctorID)) {
		return derrors.Newf(derrors.CodeInvalidInput, "appointment references unknown doctor %s", appt.DoctorID)
	}
	s.appointments.add(appt)
	s.doctors.mutate(string(appt.DoctorID), func(d *models.Doctor) {
		d.AppointmentIDs = append(d.AppointmentIDs, appt.ID)
	})
	return s.flush(ctx, snapshot.KeyAppointments, snapshot.KeyDoctors)
}

func (s *Store) UpdateAppointment(ctx context.Context, id domain.AppointmentID, patch models.AppointmentPatch) (Change[models.Appointment], error) {
	if err := patch.Validate(); err != nil {
		return Change[models.Appointment]{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	before, ok := s.appointments.get(string(id))
	if !ok {
		return Change[models.Appointment]{}, nil
	}
	s.appointments.mutate(string(id), func(a *models.Appointment) { patch.Apply(a) })
	after, _ := s.appointments.get(string(id))

	if err := s.flush(ctx, snapshot.KeyAppointments); err != nil {
		return Change[models.Appointment]{}, err
	}
	return Change[models.Appointment]{Before: before, After: after, Applied: true}, nil
}

func (s *Store) DeleteAppointment(ctx context.Context, id domain.AppointmentID) (Change[models.Appointment], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed, ok := s.appointments.remove(string(id))
	if !ok {
		return Change[models.Appointment]{}, nil
	}
	keys := []string{snapshot.KeyAppointments}
	if s.doctors.mutate(string(removed.DoctorID), func(d *models.Doctor) {
		d.AppointmentIDs = removeID(d.AppointmentIDs, id)
	}) {
		keys = append(keys, snapshot.KeyDoctors)
	}
	if err := s.flush(ctx, keys...); err != nil {
		return Change[models.Appointment]{}, err
	}
	return Change[models.Appointment]{Before: removed, Applied: true}, nil
}

// AddMedicalRecord appends the record and registers its id on the owning
// patient's history list.
func (s *Store) AddMedicalRecord(ctx context.Context, record models.MedicalRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.patients.has(string(record.PatientID)) {
		return derrors.Newf(derrors.CodeInvalidInput, "medical record references unknown patient %s", record.PatientID)
	}
	if !s.doctors.has(string(record.DoctorID)) {
		return derrors.Newf(derrors.CodeInvalidInput, "medical record references unknown doctor %s", record.DoctorID)
	}
	s.medicalRecords.add(record)
	s.patients.mutate(string(record.PatientID), func(p *models.Patient) {
		p.MedicalRecordIDs = append(p.MedicalRecordIDs, record.ID)
	})
	return s.flush(ctx, snapshot.KeyMedicalRecords, snapshot.KeyPatients)
}

func (s *Store) UpdateMedicalRecord(ctx context.Context, id domain.RecordID, patch models.MedicalRecordPatch) (Change[models.MedicalRecord], error) {
	if err := patch.Validate(); err != nil {
		return Change[models.MedicalRecord]{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	before, ok := s.medicalRecords.get(string(id))
	if !ok {
		return Change[models.MedicalRecord]{}, nil
	}
	s.medicalRecords.mutate(string(id), func(r *models.MedicalRecord) { patch.Apply(r) })
	after, _ := s.medicalRecords.get(string(id))

	if err := s.flush(ctx, snapshot.KeyMedicalRecords); err != nil {
		return Change[models.MedicalRecord]{}, err
	}
	return Change[models.MedicalRecord]{Before: before, After: after, Applied: true}, nil
}

func (s *Store) DeleteMedicalRecord(ctx context.Context, id domain.RecordID) (Change[models.MedicalRecord], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed, ok := s.medicalRecords.remove(string(id))
	if !ok {
		return Change[models.MedicalRecord]{}, nil
	}
	keys := []string{snapshot.KeyMedicalRecords}
	if s.patients.mutate(string(removed.PatientID), func(p *models.Patient) {
		p.MedicalRecordIDs = removeID(p.MedicalRecordIDs, id)
	}) {
		keys = append(keys, snapshot.KeyPatients)
	}
	if err := s.flush(ctx, keys...); err != nil {
		return Change[models.MedicalRecord]{}, err
	}
	return Change[models.MedicalRecord]{Before: removed, Applied: true}, nil
}

// AddPrescription appends the prescription and registers its id on the
// owning patient.
func (s *Store) AddPrescription(ctx context.Context, rx models.Prescription) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.patients.has(string(rx.PatientID)) {
		return derrors.Newf(derrors.CodeInvalidInput, "prescription references unknown patient %s", rx.PatientID)
	}
	if !s.doctors.has(string(rx.DoctorID)) {
		return derrors.Newf(derrors.CodeInvalidInput, "prescription references unknown doctor %s", rx.DoctorID)
	}
	s.prescriptions.add(rx)
	s.patients.mutate(string(rx.PatientID), func(p *models.Patient) {
		p.PrescriptionIDs = append(p.PrescriptionIDs, rx.ID)
	})
	return s.flush(ctx, snapshot.KeyPrescriptions, snapshot.KeyPatients)
}

func (s *Store) UpdatePrescription(ctx context.Context, id domain.PrescriptionID, patch models.PrescriptionPatch) (Change[models.Prescription], error) {
	if err := patch.Validate(); err != nil {
		return Change[models.Prescription]{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	before, ok := s.prescriptions.get(string(id))
	if !ok {
		return Change[models.Prescription]{}, nil
	}
	s.prescriptions.mutate(string(id), func(r *models.Prescription) { patch.Apply(r) })
	after, _ := s.prescriptions.get(string(id))

	if err := s.flush(ctx, snapshot.KeyPrescriptions); err != nil {
		return Change[models.Prescription]{}, err
	}
	return Change[models.Prescription]{Before: before, After: after, Applied: true}, nil
}

func (s *Store) DeletePrescription(ctx context.Context, id domain.PrescriptionID) (Change[models.Prescription], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed, ok := s.prescriptions.remove(string(id))
	if !ok {
		return Change[models.Prescription]{}, nil
	}
	keys := []string{snapshot.KeyPrescriptions}
	if s.patients.mutate(string(removed.PatientID), func(p *models.Patient) {
		p.PrescriptionIDs = removeID(p.PrescriptionIDs, id)
	}) {
		keys = append(keys, snapshot.KeyPatients)
	}
	if err := s.flush(ctx, keys...); err != nil {
		return Change[models.Prescription]{}, err
	}
	return Change[models.Prescription]{Before: removed, Applied: true}, nil
}
