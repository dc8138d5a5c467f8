package models

import "time"

const (
	SubscriptionStatusActive   = "active"
	SubscriptionStatusCanceled = "canceled"
	SubscriptionStatusExpired  = "expired"
)

type SubscriptionPlan struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	SalonID uint `json:"salon_id"`

	Name     string  `gorm:"size:100;not null" json:"name"`
	Price    float64 `json:"price"`
	IsActive bool    `gorm:"default:true" json:"is_active"`

	// Serviços cobertos pelo plano (membership fixa, não por cliente).
	Services []Service `gorm:"many2many:subscription_plan_services;" json:"services"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ClientSubscription struct {
	ID uint `gorm:"primaryKey" json:"id"`

	ClientID uint   `json:"client_id"`
	Client   Client `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"client"`

	PlanID uint             `json:"plan_id"`
	Plan   SubscriptionPlan `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"plan"`

	Status    string    `gorm:"size:20;default:'active'" json:"status"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
