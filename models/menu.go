package models

import "time"

type MenuItem struct {
	ID                     uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Name                   string    `json:"name" gorm:"not null"`
	Description            string    `json:"description"`
	Price                  float64   `json:"price" gorm:"not null"`
	Category               string    `json:"category" gorm:"index"`
	ImageURL               string    `json:"image_url,omitempty"`
	IsAvailable            bool      `json:"is_available" gorm:"not null"`
	PreparationTimeMinutes int       `json:"preparation_time_minutes" gorm:"not null"`
	Ingredients            []string  `json:"ingredients" gorm:"serializer:json"`
	CreatedAt              time.Time `json:"created_at" gorm:"autoCreateTime:false"`
	UpdatedAt              time.Time `json:"updated_at" gorm:"autoUpdateTime:false"`
}

// MenuCategory groups available items under a category name
type MenuCategory struct {
	Name  string     `json:"name"`
	Items []MenuItem `json:"items"`
}
