package patient

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNaturalKey_Normalize(t *testing.T) {
	cet := time.FixedZone("CET", 3600)
	k := NaturalKey{
		FirstName: "  Maria ",
		LastName:  "Nowak\t",
		Birthdate: time.Date(1985, time.July, 15, 1, 0, 0, 0, cet),
	}

	n := k.Normalize()

	assert.Equal(t, "  Maria ", n.FirstName)
	assert.Equal(t, "Nowak\t", n.LastName)
	assert.Equal(t, time.UTC, n.Birthdate.Location())
	assert.True(t, n.Birthdate.Equal(time.Date(1985, time.July, 15, 0, 0, 0, 0, time.UTC)))
}

func TestNaturalKey_Patient(t *testing.T) {
	b := time.Date(1990, time.January, 1, 0, 0, 0, 0, time.UTC)
	k := NaturalKey{FirstName: "Jan", LastName: "Kowalski", Birthdate: b}

	p := k.Patient()

	assert.Zero(t, p.ID)
	assert.Equal(t, &Patient{FirstName: "Jan", LastName: "Kowalski", Birthdate: b}, p)
}
