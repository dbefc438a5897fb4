package prescription

import (
	"slices"
	"time"

	"github.com/dmehra2102/prod-golang-projects/rxclinic/internal/domain/patient"
)

// Issued is the result of a successful create.
type Issued struct {
	PrescriptionID int  `json:"prescriptionId"`
	PatientID      int  `json:"patientId"`
	PatientCreated bool `json:"patientCreated"`
}

// PatientHistory is the read-side aggregate: a patient and all of its
// prescriptions ordered by due date.
type PatientHistory struct {
	PatientID     int                `json:"patientId"`
	FirstName     string             `json:"firstName"`
	LastName      string             `json:"lastName"`
	Birthdate     time.Time          `json:"birthdate"`
	Prescriptions []PrescriptionView `json:"prescriptions"`
}

type PrescriptionView struct {
	PrescriptionID int                  `json:"prescriptionId"`
	Date           time.Time            `json:"date"`
	DueDate        time.Time            `json:"dueDate"`
	Doctor         DoctorSummary        `json:"doctor"`
	Medicaments    []MedicamentLineView `json:"medicaments"`
}

type DoctorSummary struct {
	ID        int    `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type MedicamentLineView struct {
	MedicamentID int    `json:"medicamentId"`
	Name         string `json:"name"`
	Dose         int    `json:"dose"`
	Description  string `json:"description"`
}

// NewPatientHistory assembles the aggregate. Prescriptions are sorted
// ascending by due date; equal due dates keep their input order.
func NewPatientHistory(p *patient.Patient, prescriptions []*Prescription) *PatientHistory {
	sorted := slices.Clone(prescriptions)
	slices.SortStableFunc(sorted, func(a, b *Prescription) int {
		return a.DueDate.Compare(b.DueDate)
	})

	views := make([]PrescriptionView, 0, len(sorted))
	for _, rx := range sorted {
		views = append(views, rx.view())
	}

	return &PatientHistory{
		PatientID:     p.ID,
		FirstName:     p.FirstName,
		LastName:      p.LastName,
		Birthdate:     p.Birthdate,
		Prescriptions: views,
	}
}

func (p *Prescription) view() PrescriptionView {
	v := PrescriptionView{
		PrescriptionID: p.ID,
		Date:           p.Date,
		DueDate:        p.DueDate,
		Doctor:         DoctorSummary{ID: p.DoctorID},
		Medicaments:    make([]MedicamentLineView, 0, len(p.Lines)),
	}
	if p.Doctor != nil {
		v.Doctor.FirstName = p.Doctor.FirstName
		v.Doctor.LastName = p.Doctor.LastName
	}
	for _, l := range p.Lines {
		line := MedicamentLineView{MedicamentID: l.MedicamentID, Dose: l.Dose}
		if l.Medicament != nil {
			line.Name = l.Medicament.Name
			line.Description = l.Medicament.Description
		}
		v.Medicaments = append(v.Medicaments, line)
	}
	return v
}
