package medicament

import "errors"

var ErrMedicamentNotFound = errors.New("medicament not found")
