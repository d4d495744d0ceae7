package models

type Category struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	SluggedFields
}

func (Category) TableName() string {
	return "categories"
}
