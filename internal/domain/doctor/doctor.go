package doctor

// Doctor rows are managed outside this service; prescriptions only reference them.
type Doctor struct {
	ID        int    `gorm:"column:id;primaryKey;autoIncrement"`
	FirstName string `gorm:"column:first_name;type:varchar(100);not null"`
	LastName  string `gorm:"column:last_name;type:varchar(100);not null"`
	Email     string `gorm:"column:email;type:varchar(255);uniqueIndex;not null"`
}

func (Doctor) TableName() string {
	return "clinical.doctors"
}
