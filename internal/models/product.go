package models

import "time"

// Image holds the metadata of an uploaded product image. A zero-valued
// Image means the product has no image attached.
type Image struct {
	FileName string `json:"fileName"`
	FilePath string `json:"filePath"`
	FileType string `json:"fileType"`
	FileSize string `json:"fileSize"`
}

// IsZero reports whether no image is attached.
func (i Image) IsZero() bool {
	return i == Image{}
}

// Product represents an inventory item owned by a single user.
// The owner is set at creation and never reassigned.
type Product struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	UserID      string    `json:"user" gorm:"index;type:varchar(36)" validate:"required"`
	Name        string    `json:"name" validate:"required"`
	SKU         string    `json:"sku"`
	Category    string    `json:"category" validate:"required"`
	Quantity    int       `json:"quantity" validate:"required"`
	Price       float64   `json:"price" validate:"required"`
	Description string    `json:"description" validate:"required"`
	Image       Image     `json:"image" gorm:"embedded;embeddedPrefix:image_"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
