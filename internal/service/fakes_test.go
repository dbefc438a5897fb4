package service

import (
	"context"
	"errors"
	"maps"
	"slices"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmehra2102/prod-golang-projects/rxclinic/internal/domain/doctor"
	"github.com/dmehra2102/prod-golang-projects/rxclinic/internal/domain/medicament"
	"github.com/dmehra2102/prod-golang-projects/rxclinic/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/rxclinic/internal/domain/prescription"
	"github.com/dmehra2102/prod-golang-projects/rxclinic/pkg/events"
)

// memStore is an in-memory stand-in for the postgres repositories. WithinTx
// snapshots the tables and restores them when fn fails.
type memStore struct {
	patients      map[int]*patient.Patient
	doctors       map[int]*doctor.Doctor
	medicaments   map[int]*medicament.Medicament
	prescriptions map[int]*prescription.Prescription
	lines         []prescription.PrescriptionMedicament

	nextPatientID int
	nextRxID      int

	doctorErr   error
	addLinesErr error
	commitErr   error
	txCalls     int
}

var (
	_ patient.Repository      = (*memPatients)(nil)
	_ doctor.Repository       = (*memDoctors)(nil)
	_ medicament.Repository   = (*memMedicaments)(nil)
	_ prescription.Repository = (*memPrescriptions)(nil)
	_ Transactor              = (*memStore)(nil)
)

func newMemStore() *memStore {
	return &memStore{
		patients: make(map[int]*patient.Patient),
		doctors: map[int]*doctor.Doctor{
			1: {ID: 1, FirstName: "A", LastName: "B", Email: "a@b"},
		},
		medicaments: map[int]*medicament.Medicament{
			1: {ID: 1, Name: "X", Description: "D", Type: "T"},
			2: {ID: 2, Name: "Y", Description: "E", Type: "T"},
		},
		prescriptions: make(map[int]*prescription.Prescription),
		nextPatientID: 1,
		nextRxID:      1,
	}
}

func (s *memStore) repositories() Repositories {
	return Repositories{
		Patients:      &memPatients{s},
		Doctors:       &memDoctors{s},
		Medicaments:   &memMedicaments{s},
		Prescriptions: &memPrescriptions{s},
	}
}

func (s *memStore) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txCalls++

	patients := maps.Clone(s.patients)
	rxs := maps.Clone(s.prescriptions)
	lines := slices.Clone(s.lines)
	nextPatientID, nextRxID := s.nextPatientID, s.nextRxID

	err := fn(ctx)
	if err == nil {
		err = s.commitErr
	}
	if err != nil {
		s.patients, s.prescriptions, s.lines = patients, rxs, lines
		s.nextPatientID, s.nextRxID = nextPatientID, nextRxID
		return err
	}
	return nil
}

type memPatients struct{ s *memStore }

func (r *memPatients) GetByID(_ context.Context, id int) (*patient.Patient, error) {
	p, ok := r.s.patients[id]
	if !ok {
		return nil, patient.ErrPatientNotFound
	}
	return p, nil
}

func (r *memPatients) FindByNaturalKey(_ context.Context, key patient.NaturalKey) (*patient.Patient, error) {
	for _, id := range slices.Sorted(maps.Keys(r.s.patients)) {
		p := r.s.patients[id]
		if p.FirstName == key.FirstName && p.LastName == key.LastName && p.Birthdate.Equal(key.Birthdate) {
			return p, nil
		}
	}
	return nil, patient.ErrPatientNotFound
}

func (r *memPatients) FindOrCreate(ctx context.Context, key patient.NaturalKey) (*patient.Patient, bool, error) {
	p, err := r.FindByNaturalKey(ctx, key)
	if err == nil {
		return p, false, nil
	}
	if !errors.Is(err, patient.ErrPatientNotFound) {
		return nil, false, err
	}

	p = key.Patient()
	p.ID = r.s.nextPatientID
	r.s.nextPatientID++
	r.s.patients[p.ID] = p
	return p, true, nil
}

type memDoctors struct{ s *memStore }

func (r *memDoctors) GetByID(_ context.Context, id int) (*doctor.Doctor, error) {
	if r.s.doctorErr != nil {
		return nil, r.s.doctorErr
	}
	d, ok := r.s.doctors[id]
	if !ok {
		return nil, doctor.ErrDoctorNotFound
	}
	return d, nil
}

type memMedicaments struct{ s *memStore }

func (r *memMedicaments) Exists(_ context.Context, id int) (bool, error) {
	_, ok := r.s.medicaments[id]
	return ok, nil
}

type memPrescriptions struct{ s *memStore }

func (r *memPrescriptions) Create(_ context.Context, p *prescription.Prescription) error {
	p.ID = r.s.nextRxID
	r.s.nextRxID++
	stored := *p
	r.s.prescriptions[p.ID] = &stored
	return nil
}

func (r *memPrescriptions) AddLines(_ context.Context, lines []prescription.PrescriptionMedicament) error {
	if r.s.addLinesErr != nil {
		return r.s.addLinesErr
	}
	seen := make(map[[2]int]bool)
	for _, l := range r.s.lines {
		seen[[2]int{l.PrescriptionID, l.MedicamentID}] = true
	}
	for _, l := range lines {
		k := [2]int{l.PrescriptionID, l.MedicamentID}
		if seen[k] {
			return &pgconn.PgError{
				Code:    "23505",
				Message: `duplicate key value violates unique constraint "prescription_medicaments_pkey"`,
			}
		}
		seen[k] = true
	}
	r.s.lines = append(r.s.lines, lines...)
	return nil
}

func (r *memPrescriptions) ListByPatient(_ context.Context, patientID int) ([]*prescription.Prescription, error) {
	var out []*prescription.Prescription
	for _, id := range slices.Sorted(maps.Keys(r.s.prescriptions)) {
		rx := *r.s.prescriptions[id]
		if rx.PatientID != patientID {
			continue
		}
		rx.Doctor = r.s.doctors[rx.DoctorID]
		rx.Lines = nil
		for _, l := range r.s.lines {
			if l.PrescriptionID == rx.ID {
				l.Medicament = r.s.medicaments[l.MedicamentID]
				rx.Lines = append(rx.Lines, l)
			}
		}
		out = append(out, &rx)
	}
	return out, nil
}

type recordingPublisher struct {
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }
