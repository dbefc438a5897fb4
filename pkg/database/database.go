package database

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/dmehra2102/prod-golang-projects/rxclinic/internal/config"
	"github.com/dmehra2102/prod-golang-projects/rxclinic/internal/domain/doctor"
	"github.com/dmehra2102/prod-golang-projects/rxclinic/internal/domain/medicament"
	"github.com/dmehra2102/prod-golang-projects/rxclinic/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/rxclinic/internal/domain/prescription"
	"github.com/dmehra2102/prod-golang-projects/rxclinic/pkg/metrics"
)

func Connect(cfg config.DatabaseConfig, log *zap.Logger, m *metrics.Collector) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger:                                   NewGormLogger(log, cfg.SlowQueryThreshold),
		PrepareStmt:                              true,
		DisableForeignKeyConstraintWhenMigrating: false,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: false,
	}), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	if m != nil {
		if err := db.Use(NewMetricsPlugin(m)); err != nil {
			return nil, fmt.Errorf("registering metrics plugin: %w", err)
		}
	}

	// Configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return db, nil
}

func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Models lists every table owned by the service, in dependency order.
func Models() []any {
	return []any{
		&patient.Patient{},
		&doctor.Doctor{},
		&medicament.Medicament{},
		&prescription.Prescription{},
		&prescription.PrescriptionMedicament{},
	}
}

func Migrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("running database migrations")
	start := time.Now()

	if err := db.Exec("CREATE SCHEMA IF NOT EXISTS clinical").Error; err != nil {
		return fmt.Errorf("creating schema clinical: %w", err)
	}

	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto-migrating models: %w", err)
	}

	if err := createIndexes(db, log); err != nil {
		return fmt.Errorf("creating indexes: %w", err)
	}

	log.Info("migrations completed", zap.Duration("duration", time.Since(start)))
	return nil
}

func createIndexes(db *gorm.DB, log *zap.Logger) error {
	indexes := []struct {
		name  string
		query string
	}{
		{
			// Patient history read path: all prescriptions of one patient by due date.
			name:  "idx_prescriptions_patient_due",
			query: `CREATE INDEX IF NOT EXISTS idx_prescriptions_patient_due ON clinical.prescriptions (patient_id, due_date, id)`,
		},
		{
			name:  "idx_prescription_medicaments_medicament",
			query: `CREATE INDEX IF NOT EXISTS idx_prescription_medicaments_medicament ON clinical.prescription_medicaments (medicament_id)`,
		},
	}

	for _, idx := range indexes {
		if err := db.Exec(idx.query).Error; err != nil {
			return fmt.Errorf("%s: %w", idx.name, err)
		}
		log.Debug("index ensured", zap.String("index", idx.name))
	}

	return nil
}
