package medicament

type Medicament struct {
	ID          int    `gorm:"column:id;primaryKey;autoIncrement"`
	Name        string `gorm:"column:name;type:varchar(100);not null"`
	Description string `gorm:"column:description;type:text"`
	Type        string `gorm:"column:type;type:varchar(100)"`
}

func (Medicament) TableName() string {
	return "clinical.medicaments"
}
