package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/rxclinic/internal/domain/doctor"
	"github.com/dmehra2102/prod-golang-projects/rxclinic/internal/domain/medicament"
	"github.com/dmehra2102/prod-golang-projects/rxclinic/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/rxclinic/internal/domain/prescription"
	"github.com/dmehra2102/prod-golang-projects/rxclinic/pkg/events"
	"github.com/dmehra2102/prod-golang-projects/rxclinic/pkg/metrics"
)

type Repositories struct {
	Patients      patient.Repository
	Doctors       doctor.Repository
	Medicaments   medicament.Repository
	Prescriptions prescription.Repository
}

type PrescriptionService struct {
	repos     Repositories
	tx        Transactor
	publisher events.Publisher
	metrics   *metrics.Collector
	log       *zap.Logger
	tracer    trace.Tracer
}

func NewPrescriptionService(
	repos Repositories,
	tx Transactor,
	publisher events.Publisher,
	m *metrics.Collector,
	log *zap.Logger,
) *PrescriptionService {
	return &PrescriptionService{
		repos:     repos,
		tx:        tx,
		publisher: publisher,
		metrics:   m,
		log:       log,
		tracer:    otel.Tracer("rxclinic/service"),
	}
}

// PrescriptionIssued is the payload of the prescription.issued event.
type PrescriptionIssued struct {
	PrescriptionID int       `json:"prescriptionId"`
	PatientID      int       `json:"patientId"`
	DoctorID       int       `json:"doctorId"`
	Date           time.Time `json:"date"`
	DueDate        time.Time `json:"dueDate"`
	MedicamentIDs  []int     `json:"medicamentIds"`
}

// AddPrescription validates cmd and, when every rule holds, resolves the
// patient by natural key and stores the prescription with its lines in a
// single transaction.
func (s *PrescriptionService) AddPrescription(ctx context.Context, cmd *prescription.CreatePrescriptionCommand) (*prescription.Issued, error) {
	ctx, span := s.tracer.Start(ctx, "PrescriptionService.AddPrescription", trace.WithAttributes(
		attribute.Int("doctor.id", cmd.DoctorID),
		attribute.Int("prescription.lines", len(cmd.Medicaments)),
	))
	defer span.End()

	// -------- Input Validation -----------
	if err := validateCommand(cmd); err != nil {
		return nil, s.rejected(span, err)
	}

	key := cmd.Patient.Normalize()
	var issued prescription.Issued

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.checkReferences(ctx, cmd); err != nil {
			return err
		}

		p, created, err := s.repos.Patients.FindOrCreate(ctx, key)
		if err != nil {
			return persistence("resolving patient", err)
		}

		rx := &prescription.Prescription{
			Date:      cmd.Date,
			DueDate:   cmd.DueDate,
			PatientID: p.ID,
			DoctorID:  cmd.DoctorID,
		}
		if err := s.repos.Prescriptions.Create(ctx, rx); err != nil {
			return persistence("creating prescription", err)
		}

		if err := s.repos.Prescriptions.AddLines(ctx, cmd.LinesFor(rx.ID)); err != nil {
			return persistence("adding medicament lines", err)
		}

		issued = prescription.Issued{
			PrescriptionID: rx.ID,
			PatientID:      p.ID,
			PatientCreated: created,
		}
		return nil
	})
	if err != nil {
		var validErr *ValidationError
		if errors.As(err, &validErr) {
			return nil, s.rejected(span, err)
		}

		err = persistence("committing prescription", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "persistence failure")
		s.log.Error("failed to add prescription",
			zap.Error(err),
			zap.Int("doctor_id", cmd.DoctorID),
			zap.Int("lines", len(cmd.Medicaments)),
		)
		return nil, err
	}

	s.metrics.PrescriptionsIssued.Inc()
	s.metrics.MedicamentLinesTotal.Add(float64(len(cmd.Medicaments)))
	if issued.PatientCreated {
		s.metrics.PatientsCreatedTotal.Inc()
	}

	span.SetAttributes(
		attribute.Int("prescription.id", issued.PrescriptionID),
		attribute.Int("patient.id", issued.PatientID),
	)

	s.log.Info("prescription issued",
		zap.Int("prescription_id", issued.PrescriptionID),
		zap.Int("patient_id", issued.PatientID),
		zap.Bool("patient_created", issued.PatientCreated),
		zap.Int("doctor_id", cmd.DoctorID),
	)

	s.publishIssued(ctx, cmd, issued)

	return &issued, nil
}

// GetPatientData returns the patient's prescription history ordered by due
// date, or patient.ErrPatientNotFound when the id is unknown.
func (s *PrescriptionService) GetPatientData(ctx context.Context, patientID int) (*prescription.PatientHistory, error) {
	ctx, span := s.tracer.Start(ctx, "PrescriptionService.GetPatientData", trace.WithAttributes(
		attribute.Int("patient.id", patientID),
	))
	defer span.End()

	var history *prescription.PatientHistory

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		p, err := s.repos.Patients.GetByID(ctx, patientID)
		if err != nil {
			if errors.Is(err, patient.ErrPatientNotFound) {
				return err
			}
			return persistence("loading patient", err)
		}

		rxs, err := s.repos.Prescriptions.ListByPatient(ctx, p.ID)
		if err != nil {
			return persistence("listing prescriptions", err)
		}

		history = prescription.NewPatientHistory(p, rxs)
		return nil
	})
	if err != nil {
		if errors.Is(err, patient.ErrPatientNotFound) {
			span.SetAttributes(attribute.Bool("patient.found", false))
			return nil, err
		}

		err = persistence("reading patient data", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "persistence failure")
		s.log.Error("failed to read patient data", zap.Error(err), zap.Int("patient_id", patientID))
		return nil, err
	}

	span.SetAttributes(attribute.Int("prescription.count", len(history.Prescriptions)))
	return history, nil
}

// validateCommand checks the rules that need no storage access.
func validateCommand(cmd *prescription.CreatePrescriptionCommand) error {
	switch n := len(cmd.Medicaments); {
	case n < prescription.MinLines:
		return invalid("medicament_count", prescription.ErrNoMedicaments,
			"Prescription must contain at least 1 medicament.")
	case n > prescription.MaxLines:
		return invalid("medicament_count", prescription.ErrTooManyMedicaments,
			"Prescription can contain at most 10 medicaments.")
	}

	if cmd.DueDate.Before(cmd.Date) {
		return invalid("due_date", prescription.ErrDueBeforeIssue,
			"DueDate must be after or equal to Date.")
	}

	return nil
}

// checkReferences verifies the doctor, then every medicament in line order.
// The first missing reference wins.
func (s *PrescriptionService) checkReferences(ctx context.Context, cmd *prescription.CreatePrescriptionCommand) error {
	if _, err := s.repos.Doctors.GetByID(ctx, cmd.DoctorID); err != nil {
		if errors.Is(err, doctor.ErrDoctorNotFound) {
			return invalid("doctor", err, fmt.Sprintf("Doctor with ID %d not found.", cmd.DoctorID))
		}
		return persistence("looking up doctor", err)
	}

	for _, line := range cmd.Medicaments {
		exists, err := s.repos.Medicaments.Exists(ctx, line.MedicamentID)
		if err != nil {
			return persistence("checking medicament", err)
		}
		if !exists {
			return invalid("medicament", medicament.ErrMedicamentNotFound,
				fmt.Sprintf("Medicament with ID %d not found.", line.MedicamentID))
		}
	}

	return nil
}

func (s *PrescriptionService) rejected(span trace.Span, err error) error {
	var validErr *ValidationError
	if errors.As(err, &validErr) {
		s.metrics.ValidationFailures.WithLabelValues(validErr.Rule).Inc()
		span.SetAttributes(attribute.String("validation.rule", validErr.Rule))
	}
	span.SetStatus(codes.Error, "validation failed")
	s.log.Debug("prescription rejected", zap.Error(err))
	return err
}

// publishIssued runs after commit. A failure here never fails the request.
func (s *PrescriptionService) publishIssued(ctx context.Context, cmd *prescription.CreatePrescriptionCommand, issued prescription.Issued) {
	ids := make([]int, 0, len(cmd.Medicaments))
	for _, m := range cmd.Medicaments {
		ids = append(ids, m.MedicamentID)
	}

	e := events.New(events.TypePrescriptionIssued, strconv.Itoa(issued.PatientID), PrescriptionIssued{
		PrescriptionID: issued.PrescriptionID,
		PatientID:      issued.PatientID,
		DoctorID:       cmd.DoctorID,
		Date:           cmd.Date,
		DueDate:        cmd.DueDate,
		MedicamentIDs:  ids,
	})

	if err := s.publisher.Publish(ctx, e); err != nil {
		s.metrics.EventsPublished.WithLabelValues("error").Inc()
		s.log.Warn("failed to publish prescription event",
			zap.Error(err),
			zap.Int("prescription_id", issued.PrescriptionID),
		)
		return
	}
	s.metrics.EventsPublished.WithLabelValues("ok").Inc()
}
