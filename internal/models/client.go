package models

import "time"

// Cliente simples, sem login, vinculado ao salão
type Client struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	SalonID uint `json:"salon_id"`

	Name  string `gorm:"size:100;not null" json:"name"`
	Phone string `gorm:"size:20" json:"phone"`
	Email string `gorm:"size:100" json:"email"`

	// Agregados de histórico, atualizados apenas na liquidação do atendimento.
	TotalVisits int        `gorm:"default:0" json:"total_visits"`
	TotalSpent  float64    `gorm:"default:0" json:"total_spent"`
	LastVisit   *time.Time `json:"last_visit"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
