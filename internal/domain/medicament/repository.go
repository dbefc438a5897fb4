package medicament

import "context"

type Repository interface {
	Exists(ctx context.Context, id int) (bool, error)
}
