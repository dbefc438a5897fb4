package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/dmehra2102/prod-golang-projects/rxclinic/internal/domain/medicament"
)

type MedicamentRepository struct {
	db *gorm.DB
}

func NewMedicamentRepository(db *gorm.DB) *MedicamentRepository {
	return &MedicamentRepository{db: db}
}

func (r *MedicamentRepository) Exists(ctx context.Context, id int) (bool, error) {
	var count int64
	err := conn(ctx, r.db).Model(&medicament.Medicament{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("checking medicament %d: %w", id, err)
	}
	return count > 0, nil
}
