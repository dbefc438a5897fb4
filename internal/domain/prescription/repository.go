package prescription

import "context"

type Repository interface {
	// Create inserts the prescription row only; p.ID is set on success.
	Create(ctx context.Context, p *Prescription) error

	// AddLines inserts all lines as one batch.
	AddLines(ctx context.Context, lines []PrescriptionMedicament) error

	// ListByPatient returns the patient's prescriptions with Doctor and
	// Lines.Medicament loaded, in ascending id order.
	ListByPatient(ctx context.Context, patientID int) ([]*Prescription, error)
}
