package v1

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/rxclinic/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/rxclinic/internal/service"
)

type APIResponse[T any] struct {
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
}

type ErrorResponse struct {
	Error   string            `json:"error"`
	Code    string            `json:"code,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

const (
	codeValidation = "VALIDATION_FAILED"
	codeNotFound   = "NOT_FOUND"
	codeConflict   = "CONSTRAINT_VIOLATION"
	codeBadRequest = "BAD_REQUEST"
)

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, APIResponse[any]{Data: data})
}

func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, APIResponse[any]{Data: data})
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, ErrorResponse{Error: message, Code: code})
}

// respondServiceError maps service outcomes onto HTTP. Anything it does not
// recognise is logged and hidden behind a 500.
func respondServiceError(c *gin.Context, log *zap.Logger, err error) {
	var validErr *service.ValidationError
	if errors.As(err, &validErr) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   validErr.Reason,
			Code:    codeValidation,
			Details: map[string]string{"rule": validErr.Rule},
		})
		return
	}

	if errors.Is(err, patient.ErrPatientNotFound) {
		msg := "Patient not found."
		if id := c.Param("id"); id != "" {
			msg = fmt.Sprintf("Patient with id %s not found.", id)
		}
		respondError(c, http.StatusNotFound, codeNotFound, msg)
		return
	}

	fields := []zap.Field{
		zap.Error(err),
		zap.String("request_id", c.GetString("request_id")),
		zap.String("path", c.FullPath()),
	}

	var persistErr *service.PersistenceError
	if errors.As(err, &persistErr) {
		if persistErr.IsConstraintViolation() {
			respondError(c, http.StatusConflict, codeConflict, persistErr.StorageMessage())
			return
		}
		fields = append(fields,
			zap.String("op", persistErr.Op),
			zap.String("storage_message", persistErr.StorageMessage()),
		)
	}

	log.Error("request failed", fields...)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		respondError(c, http.StatusBadRequest, codeBadRequest, "invalid request: "+err.Error())
		return false
	}

	return true
}

func parseID(c *gin.Context, param string) (int, bool) {
	raw := c.Param(param)
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, codeBadRequest, "invalid "+param+": must be a positive integer")
		return 0, false
	}
	return id, true
}
