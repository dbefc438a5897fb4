package database

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dmehra2102/prod-golang-projects/rxclinic/internal/domain/doctor"
	"github.com/dmehra2102/prod-golang-projects/rxclinic/internal/domain/medicament"
	"github.com/dmehra2102/prod-golang-projects/rxclinic/internal/domain/patient"
)

var (
	seedDoctors = []doctor.Doctor{
		{ID: 1, FirstName: "Adam", LastName: "Nowak", Email: "adam.nowak@example.com"},
	}

	seedPatients = []patient.Patient{
		{ID: 1, FirstName: "Jan", LastName: "Kowalski", Birthdate: time.Date(1990, time.January, 1, 0, 0, 0, 0, time.UTC)},
	}

	seedMedicaments = []medicament.Medicament{
		{ID: 1, Name: "Paracetamol", Description: "Painkiller", Type: "Tablet"},
		{ID: 2, Name: "Ibuprofen", Description: "Anti-inflammatory", Type: "Tablet"},
	}
)

// Seed inserts the reference doctors, medicaments and the demo patient.
// Rows that already exist are left alone, so it is safe to run repeatedly.
func Seed(ctx context.Context, db *gorm.DB, log *zap.Logger) error {
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// A fresh statement per insert: a chained handle keeps the first model's table.
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seedDoctors).Error; err != nil {
			return fmt.Errorf("seeding doctors: %w", err)
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seedMedicaments).Error; err != nil {
			return fmt.Errorf("seeding medicaments: %w", err)
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seedPatients).Error; err != nil {
			return fmt.Errorf("seeding patients: %w", err)
		}

		// Explicit ids do not advance the serial sequences.
		for _, table := range []string{"clinical.doctors", "clinical.medicaments", "clinical.patients"} {
			q := fmt.Sprintf(
				"SELECT setval(pg_get_serial_sequence('%[1]s', 'id'), (SELECT COALESCE(MAX(id), 1) FROM %[1]s))",
				table,
			)
			if err := tx.Exec(q).Error; err != nil {
				return fmt.Errorf("resetting sequence for %s: %w", table, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Info("seed data ensured",
		zap.Int("doctors", len(seedDoctors)),
		zap.Int("medicaments", len(seedMedicaments)),
		zap.Int("patients", len(seedPatients)),
	)
	return nil
}
