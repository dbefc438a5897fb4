package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dmehra2102/prod-golang-projects/rxclinic/internal/domain/patient"
)

type PatientRepository struct {
	db *gorm.DB
}

func NewPatientRepository(db *gorm.DB) *PatientRepository {
	return &PatientRepository{db: db}
}

func (r *PatientRepository) GetByID(ctx context.Context, id int) (*patient.Patient, error) {
	var p patient.Patient
	err := conn(ctx, r.db).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, patient.ErrPatientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting patient %d: %w", id, err)
	}
	return &p, nil
}

func (r *PatientRepository) FindByNaturalKey(ctx context.Context, key patient.NaturalKey) (*patient.Patient, error) {
	var p patient.Patient
	err := conn(ctx, r.db).
		Where("first_name = ? AND last_name = ? AND birthdate = ?", key.FirstName, key.LastName, key.Birthdate).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, patient.ErrPatientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("finding patient by natural key: %w", err)
	}
	return &p, nil
}

// FindOrCreate inserts with ON CONFLICT DO NOTHING against the natural-key
// unique index, so concurrent identical submissions resolve to one row.
func (r *PatientRepository) FindOrCreate(ctx context.Context, key patient.NaturalKey) (*patient.Patient, bool, error) {
	p := key.Patient()

	res := conn(ctx, r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "first_name"}, {Name: "last_name"}, {Name: "birthdate"}},
			DoNothing: true,
		}).
		Create(p)
	if res.Error != nil {
		return nil, false, fmt.Errorf("inserting patient: %w", res.Error)
	}
	if res.RowsAffected == 1 {
		return p, true, nil
	}

	existing, err := r.FindByNaturalKey(ctx, key)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}
