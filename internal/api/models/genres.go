package models

type Genre struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	SluggedFields
}

func (Genre) TableName() string {
	return "genres"
}
