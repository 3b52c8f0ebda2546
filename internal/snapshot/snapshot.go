// Package snapshot is the durability port for the domain store: a key-value
// interface keyed by collection name, holding one JSON blob per collection.
// The store loads each key once at construction and saves the affected keys
// after every mutation. Backends are interchangeable; the store never knows
// which one it is talking to.
package snapshot

import "context"

// Collection keys. The bootstrap key marks whether demo data has been
// generated; the credentials key holds the identity collaborator's password
// hashes.
const (
	KeyUsers          = "users"
	KeyPatients       = "patients"
	KeyDoctors        = "doctors"
	KeyAdmins         = "admins"
	KeyAppointments   = "appointments"
	KeyMedicalRecords = "medicalRecords"
	KeyPrescriptions  = "prescriptions"
	KeyBootstrap      = "dataInitialized"
	KeyCredentials    = "credentials"
)

// Store is the persistence adapter contract. Load reports absence via the
// boolean rather than an error so callers can treat an empty backend as a
// fresh install.
type Store interface {
	Load(ctx context.Context, key string) (blob []byte, ok bool, err error)
	Save(ctx context.Context, key string, blob []byte) error
}
