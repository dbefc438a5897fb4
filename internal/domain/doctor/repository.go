package doctor

import "context"

type Repository interface {
	// GetByID returns ErrDoctorNotFound if no doctor has the given id.
	GetByID(ctx context.Context, id int) (*Doctor, error)
}
