package patient

import "time"

// Patient is identified beyond its surrogate id by the natural key
// (FirstName, LastName, Birthdate), enforced by a unique index.
type Patient struct {
	ID        int       `gorm:"column:id;primaryKey;autoIncrement"`
	FirstName string    `gorm:"column:first_name;type:varchar(100);not null;uniqueIndex:ux_patients_natural_key,priority:1"`
	LastName  string    `gorm:"column:last_name;type:varchar(100);not null;uniqueIndex:ux_patients_natural_key,priority:2"`
	Birthdate time.Time `gorm:"column:birthdate;not null;uniqueIndex:ux_patients_natural_key,priority:3"`
}

func (Patient) TableName() string {
	return "clinical.patients"
}

// NaturalKey is the dedup identity of a patient.
type NaturalKey struct {
	FirstName string
	LastName  string
	Birthdate time.Time
}

// Normalize returns the key in its stored form. Names are matched exactly as
// submitted; only the birthdate instant is moved to UTC.
func (k NaturalKey) Normalize() NaturalKey {
	return NaturalKey{
		FirstName: k.FirstName,
		LastName:  k.LastName,
		Birthdate: k.Birthdate.UTC(),
	}
}

// Patient returns a new, unsaved patient carrying the key.
func (k NaturalKey) Patient() *Patient {
	return &Patient{FirstName: k.FirstName, LastName: k.LastName, Birthdate: k.Birthdate}
}
