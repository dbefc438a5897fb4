package patient

import "context"

type Repository interface {
	// GetByID retrieves a patient by primary key. Returns ErrPatientNotFound if not found.
	GetByID(ctx context.Context, id int) (*Patient, error)

	// FindByNaturalKey returns ErrPatientNotFound when no patient matches exactly.
	FindByNaturalKey(ctx context.Context, key NaturalKey) (*Patient, error)

	// FindOrCreate resolves the patient for key, inserting it when absent.
	// created reports whether a new row was written.
	FindOrCreate(ctx context.Context, key NaturalKey) (p *Patient, created bool, err error)
}
