package prescription

import "errors"

var (
	ErrNoMedicaments      = errors.New("prescription must contain at least 1 medicament")
	ErrTooManyMedicaments = errors.New("prescription can contain at most 10 medicaments")
	ErrDueBeforeIssue     = errors.New("due date must be after or equal to date")
)
