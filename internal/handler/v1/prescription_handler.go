package v1

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/rxclinic/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/rxclinic/internal/domain/prescription"
)

type PrescriptionService interface {
	AddPrescription(ctx context.Context, cmd *prescription.CreatePrescriptionCommand) (*prescription.Issued, error)
	GetPatientData(ctx context.Context, patientID int) (*prescription.PatientHistory, error)
}

type PrescriptionHandler struct {
	svc PrescriptionService
	log *zap.Logger
}

func NewPrescriptionHandler(svc PrescriptionService, log *zap.Logger) *PrescriptionHandler {
	return &PrescriptionHandler{svc: svc, log: log.Named("prescriptions")}
}

func (h *PrescriptionHandler) Register(rg *gin.RouterGroup) {
	rx := rg.Group("/prescriptions")
	rx.POST("", h.Create)
	rx.GET("/patient/:id", h.GetPatientData)
}

// Binding tags check presence only. Line count, dates and references are
// validated by the service.
type DoctorRef struct {
	ID int `json:"id"`
}

type PatientInput struct {
	FirstName string    `json:"firstName" binding:"required"`
	LastName  string    `json:"lastName" binding:"required"`
	Birthdate time.Time `json:"birthdate" binding:"required"`
}

type MedicamentLineInput struct {
	MedicamentID int    `json:"medicamentId"`
	Dose         int    `json:"dose"`
	Details      string `json:"details"`
}

type CreatePrescriptionRequest struct {
	Date        time.Time             `json:"date" binding:"required"`
	DueDate     time.Time             `json:"dueDate" binding:"required"`
	Doctor      *DoctorRef            `json:"doctor" binding:"required"`
	Patient     *PatientInput         `json:"patient" binding:"required"`
	Medicaments []MedicamentLineInput `json:"medicaments" binding:"required"`
}

func (r *CreatePrescriptionRequest) toCommand() *prescription.CreatePrescriptionCommand {
	lines := make([]prescription.LineInput, 0, len(r.Medicaments))
	for _, m := range r.Medicaments {
		lines = append(lines, prescription.LineInput{
			MedicamentID: m.MedicamentID,
			Dose:         m.Dose,
			Details:      m.Details,
		})
	}

	return &prescription.CreatePrescriptionCommand{
		Date:     r.Date,
		DueDate:  r.DueDate,
		DoctorID: r.Doctor.ID,
		Patient: patient.NaturalKey{
			FirstName: r.Patient.FirstName,
			LastName:  r.Patient.LastName,
			Birthdate: r.Patient.Birthdate,
		},
		Medicaments: lines,
	}
}

// Create handles POST /api/v1/prescriptions.
func (h *PrescriptionHandler) Create(c *gin.Context) {
	var req CreatePrescriptionRequest
	if !bindJSON(c, &req) {
		return
	}

	issued, err := h.svc.AddPrescription(c.Request.Context(), req.toCommand())
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	respondCreated(c, issued)
}

// GetPatientData handles GET /api/v1/prescriptions/patient/:id.
func (h *PrescriptionHandler) GetPatientData(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	history, err := h.svc.GetPatientData(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	respondOK(c, history)
}
