package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dmehra2102/prod-golang-projects/rxclinic/internal/domain/prescription"
)

type PrescriptionRepository struct {
	db *gorm.DB
}

func NewPrescriptionRepository(db *gorm.DB) *PrescriptionRepository {
	return &PrescriptionRepository{db: db}
}

func (r *PrescriptionRepository) Create(ctx context.Context, p *prescription.Prescription) error {
	if err := conn(ctx, r.db).Omit(clause.Associations).Create(p).Error; err != nil {
		return fmt.Errorf("inserting prescription: %w", err)
	}
	return nil
}

// AddLines writes a single multi-row INSERT. Associations are omitted so a
// duplicate (prescription, medicament) pair fails instead of being skipped.
func (r *PrescriptionRepository) AddLines(ctx context.Context, lines []prescription.PrescriptionMedicament) error {
	if len(lines) == 0 {
		return nil
	}
	if err := conn(ctx, r.db).Omit(clause.Associations).Create(&lines).Error; err != nil {
		return fmt.Errorf("inserting %d medicament lines: %w", len(lines), err)
	}
	return nil
}

func (r *PrescriptionRepository) ListByPatient(ctx context.Context, patientID int) ([]*prescription.Prescription, error) {
	var rxs []*prescription.Prescription
	err := conn(ctx, r.db).
		Preload("Doctor").
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("medicament_id")
		}).
		Preload("Lines.Medicament").
		Where("patient_id = ?", patientID).
		Order("id").
		Find(&rxs).Error
	if err != nil {
		return nil, fmt.Errorf("listing prescriptions for patient %d: %w", patientID, err)
	}
	return rxs, nil
}
