package prescription

import (
	"time"

	"github.com/dmehra2102/prod-golang-projects/rxclinic/internal/domain/doctor"
	"github.com/dmehra2102/prod-golang-projects/rxclinic/internal/domain/medicament"
	"github.com/dmehra2102/prod-golang-projects/rxclinic/internal/domain/patient"
)

const (
	MinLines = 1
	MaxLines = 10
)

type Prescription struct {
	ID      int       `gorm:"column:id;primaryKey;autoIncrement"`
	Date    time.Time `gorm:"column:date;not null"`
	DueDate time.Time `gorm:"column:due_date;not null;index;check:chk_prescriptions_due_date,due_date >= date"`

	PatientID int `gorm:"column:patient_id;not null;index"`
	DoctorID  int `gorm:"column:doctor_id;not null;index"`

	// Deleting a patient or doctor removes their prescriptions, and through
	// Lines, the medicament lines of those prescriptions.
	Patient *patient.Patient         `gorm:"foreignKey:PatientID;references:ID;constraint:OnDelete:CASCADE"`
	Doctor  *doctor.Doctor           `gorm:"foreignKey:DoctorID;references:ID;constraint:OnDelete:CASCADE"`
	Lines   []PrescriptionMedicament `gorm:"foreignKey:PrescriptionID;references:ID;constraint:OnDelete:CASCADE"`
}

func (Prescription) TableName() string {
	return "clinical.prescriptions"
}

// PrescriptionMedicament is one medicament line of a prescription, keyed by
// (PrescriptionID, MedicamentID).
type PrescriptionMedicament struct {
	PrescriptionID int    `gorm:"column:prescription_id;primaryKey;autoIncrement:false"`
	MedicamentID   int    `gorm:"column:medicament_id;primaryKey;autoIncrement:false"`
	Dose           int    `gorm:"column:dose;not null"`
	Details        string `gorm:"column:details;type:text"`

	Medicament *medicament.Medicament `gorm:"foreignKey:MedicamentID;references:ID"`
}

func (PrescriptionMedicament) TableName() string {
	return "clinical.prescription_medicaments"
}

type CreatePrescriptionCommand struct {
	Date        time.Time
	DueDate     time.Time
	DoctorID    int
	Patient     patient.NaturalKey
	Medicaments []LineInput
}

type LineInput struct {
	MedicamentID int
	Dose         int
	Details      string
}

// LinesFor builds the rows for the command's medicament lines, dose and
// details carried verbatim.
func (c *CreatePrescriptionCommand) LinesFor(prescriptionID int) []PrescriptionMedicament {
	lines := make([]PrescriptionMedicament, 0, len(c.Medicaments))
	for _, m := range c.Medicaments {
		lines = append(lines, PrescriptionMedicament{
			PrescriptionID: prescriptionID,
			MedicamentID:   m.MedicamentID,
			Dose:           m.Dose,
			Details:        m.Details,
		})
	}
	return lines
}
