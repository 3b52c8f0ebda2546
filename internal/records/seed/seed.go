// Package seed loads the demo dataset on first boot: one admin, five
// doctors, seven patients with assignments, and a spread of appointments,
// medical records, and prescriptions. A bootstrap flag in the snapshot store
// makes seeding a one-time operation per data directory.
package seed

import (
	"context"
	"log/slog"
	"time"

	"medichart/internal/identity"
	"medichart/internal/records/models"
	"medichart/internal/records/store"
	"medichart/internal/snapshot"
	"medichart/pkg/domain"
	derrors "medichart/pkg/domain-errors"
)

// DemoPassword is the shared password for every seeded demo account.
const DemoPassword = "password123"

type doctorSeed struct {
	name           string
	email          string
	specialization string
}

type patientSeed struct {
	name    string
	email   string
	age     int
	gender  domain.Gender
	address string
	doctor  int
}

var doctorSeeds = []doctorSeed{
	{"Sarah Johnson", "sarah@example.com", "Cardiology"},
	{"Michael Chen", "michael@example.com", "Pediatrics"},
	{"Emily Rodriguez", "emily@example.com", "Neurology"},
	{"David Williams", "david@example.com", "Orthopedics"},
	{"Jennifer Lee", "jennifer@example.com", "Dermatology"},
}

var patientSeeds = []patientSeed{
	{"John Smith", "john@example.com", 42, domain.GenderMale, "123 Main St, Anytown, USA", 0},
	{"Alice Williams", "alice@example.com", 35, domain.GenderFemale, "456 Oak Ave, Somewhere, USA", 1},
	{"Robert Brown", "robert@example.com", 65, domain.GenderMale, "789 Pine Rd, Elsewhere, USA", 0},
	{"Maria Garcia", "maria@example.com", 28, domain.GenderFemale, "101 Cedar Lane, Nowhere, USA", 2},
	{"James Johnson", "james@example.com", 52, domain.GenderMale, "202 Maple Street, Anywhere, USA", 3},
	{"Sofia Rodriguez", "sofia@example.com", 31, domain.GenderFemale, "303 Birch Blvd, Someplace, USA", 4},
	{"Michael Thompson", "michael.t@example.com", 47, domain.GenderMale, "404 Elm Court, Othertown, USA", 1},
}

// Run seeds the demo dataset unless the bootstrap flag is already set.
// Credentials get DemoPassword so every demo account can log in.
func Run(ctx context.Context, st *store.Store, creds *identity.CredentialStore, snaps snapshot.Store, log *slog.Logger) error {
	if _, ok, err := snaps.Load(ctx, snapshot.KeyBootstrap); err != nil {
		return derrors.Wrap(err, derrors.CodeUnavailable, "check bootstrap flag")
	} else if ok {
		log.InfoContext(ctx, "demo data already seeded, skipping")
		return nil
	}

	admin, err := models.NewAdmin(domain.NewUserID(), "Admin User", "admin@example.com")
	if err != nil {
		return err
	}
	if err := st.AddAdmin(ctx, admin); err != nil {
		return err
	}

	doctors := make([]models.Doctor, len(doctorSeeds))
	for i, ds := range doctorSeeds {
		doctor, err := models.NewDoctor(domain.NewUserID(), ds.name, ds.email, ds.specialization)
		if err != nil {
			return err
		}
		if err := st.AddDoctor(ctx, doctor); err != nil {
			return err
		}
		doctors[i] = doctor
	}

	patients := make([]models.Patient, len(patientSeeds))
	for i, ps := range patientSeeds {
		patient, err := models.NewPatient(domain.NewUserID(), ps.name, ps.email, ps.age, ps.gender, ps.address)
		if err != nil {
			return err
		}
		if err := st.AddPatient(ctx, patient); err != nil {
			return err
		}
		if _, err := st.AssignDoctorToPatient(ctx, doctors[ps.doctor].ID, patient.ID); err != nil {
			return err
		}
		patients[i] = patient
	}

	if err := seedClinical(ctx, st, patients, doctors); err != nil {
		return err
	}

	for _, user := range st.Users() {
		if err := creds.SetPassword(ctx, user.Email, DemoPassword); err != nil {
			return err
		}
	}

	if err := snaps.Save(ctx, snapshot.KeyBootstrap, []byte("true")); err != nil {
		return derrors.Wrap(err, derrors.CodeUnavailable, "set bootstrap flag")
	}
	counts := st.Counts()
	log.InfoContext(ctx, "demo data seeded",
		slog.Int("users", counts[snapshot.KeyUsers]),
		slog.Int("appointments", counts[snapshot.KeyAppointments]),
	)
	return nil
}

func day(offset int) string {
	return time.Now().AddDate(0, 0, offset).Format("2006-01-02")
}

func seedClinical(ctx context.Context, st *store.Store, patients []models.Patient, doctors []models.Doctor) error {
	type apptSeed struct {
		patient, doctor int
		date, clock     string
		status          domain.AppointmentStatus
		notes           string
	}
	appts := []apptSeed{
		{0, 0, day(1), "10:00", domain.AppointmentScheduled, "Follow-up appointment for blood pressure check"},
		{0, 0, day(-7), "14:30", domain.AppointmentCompleted, "Initial consultation for heart palpitations"},
		{1, 1, day(7), "09:15", domain.AppointmentScheduled, "Annual check-up"},
		{1, 1, day(-30), "11:45", domain.AppointmentCompleted, "Vaccination appointment"},
		{2, 0, day(0), "16:00", domain.AppointmentScheduled, "Discuss test results"},
		{2, 0, day(-1), "13:30", domain.AppointmentCancelled, "Follow-up for arthritis treatment"},
		{3, 2, day(1), "15:30", domain.AppointmentScheduled, "Headache consultation"},
		{4, 3, day(7), "10:30", domain.AppointmentScheduled, "Knee pain evaluation"},
		{5, 4, day(0), "13:00", domain.AppointmentScheduled, "Skin rash examination"},
		{6, 1, day(-1), "09:00", domain.AppointmentCompleted, "Regular check-up"},
	}
	for _, a := range appts {
		appt, err := models.NewAppointment(domain.NewAppointmentID(), patients[a.patient].ID, doctors[a.doctor].ID, a.date, a.clock, a.status, a.notes)
		if err != nil {
			return err
		}
		if err := st.AddAppointment(ctx, appt); err != nil {
			return err
		}
	}

	type recordSeed struct {
		patient, doctor int
		date, diagnosis string
		notes           string
	}
	records := []recordSeed{
		{0, 0, day(-7), "Hypertension", "Elevated blood pressure (150/90). Recommended lifestyle changes and scheduled follow-up in one week."},
		{0, 0, day(-30), "Seasonal Allergies", "Nasal congestion and itchy eyes. Prescribed non-sedating antihistamine."},
		{1, 1, day(-30), "Upper Respiratory Infection", "Viral URI. Recommended rest, fluids, and symptom relief."},
		{2, 0, day(-7), "Arthritis", "Moderate osteoarthritis in knees and hands. Physical therapy twice weekly."},
		{2, 0, "2025-03-10", "Hypercholesterolemia", "Elevated LDL (162 mg/dL). Dietary changes; recheck lipid panel in 3 months."},
		{3, 2, "2025-04-05", "Migraine", "Recurring headaches with aura. Prescribed abortive medication and discussed triggers."},
		{4, 3, "2025-04-18", "Knee Osteoarthritis", "MRI confirms moderate osteoarthritis in right knee. Conservative management first."},
		{5, 4, "2025-04-20", "Contact Dermatitis", "Itchy rash from new cleaning product. Topical steroid cream prescribed."},
		{6, 1, day(-1), "Type 2 Diabetes", "Fasting glucose 142 mg/dL, HbA1c 7.2%. Started oral medication and education."},
	}
	for _, r := range records {
		record, err := models.NewMedicalRecord(domain.NewRecordID(), patients[r.patient].ID, doctors[r.doctor].ID, r.date, r.diagnosis, r.notes)
		if err != nil {
			return err
		}
		if err := st.AddMedicalRecord(ctx, record); err != nil {
			return err
		}
	}

	type rxSeed struct {
		patient, doctor int
		date            string
		medications     []models.Medication
		instructions    string
		viewed          bool
	}
	rxs := []rxSeed{
		{0, 0, day(-7), []models.Medication{{Name: "Lisinopril", Dosage: "10mg", Frequency: "Once daily", Duration: "30 days"}},
			"Take in the morning with food. Monitor blood pressure twice daily.", true},
		{0, 0, day(-30), []models.Medication{{Name: "Cetirizine", Dosage: "10mg", Frequency: "Once daily", Duration: "14 days"}},
			"Take as needed for allergy symptoms. May cause drowsiness.", true},
		{1, 1, day(-30), []models.Medication{{Name: "Amoxicillin", Dosage: "500mg", Frequency: "Three times daily", Duration: "7 days"}},
			"Take with food. Complete entire course even if symptoms improve.", false},
		{2, 0, day(-7), []models.Medication{
			{Name: "Ibuprofen", Dosage: "600mg", Frequency: "Three times daily", Duration: "14 days"},
			{Name: "Acetaminophen", Dosage: "500mg", Frequency: "Every 6 hours as needed", Duration: "14 days"},
		}, "Take ibuprofen with food. Do not exceed 4000mg acetaminophen daily.", true},
		{3, 2, "2025-04-05", []models.Medication{{Name: "Sumatriptan", Dosage: "50mg", Frequency: "As needed for migraine", Duration: "6 tablets"}},
			"Take one tablet at onset of migraine. No more than 2 tablets in 24 hours.", false},
		{4, 3, "2025-04-18", []models.Medication{{Name: "Naproxen", Dosage: "500mg", Frequency: "Twice daily", Duration: "30 days"}},
			"Take with food or milk. Rest and ice the affected knee.", true},
		{5, 4, "2025-04-20", []models.Medication{{Name: "Hydrocortisone Cream", Dosage: "1%", Frequency: "Apply twice daily", Duration: "7 days"}},
			"Apply a thin layer to affected areas. Avoid contact with eyes.", false},
		{6, 1, day(-1), []models.Medication{{Name: "Metformin", Dosage: "500mg", Frequency: "Twice daily", Duration: "30 days"}},
			"Take with meals. Monitor blood glucose daily and log readings.", true},
	}
	for _, r := range rxs {
		rx, err := models.NewPrescription(domain.NewPrescriptionID(), patients[r.patient].ID, doctors[r.doctor].ID, r.date, r.medications, r.instructions)
		if err != nil {
			return err
		}
		if err := st.AddPrescription(ctx, rx); err != nil {
			return err
		}
		if r.viewed {
			if _, err := st.UpdatePrescription(ctx, rx.ID, models.PrescriptionPatch{IsViewed: &r.viewed}); err != nil {
				return err
			}
		}
	}
	return nil
}
