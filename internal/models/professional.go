package models

import "time"

// Tipos de comissão específicos para atendimentos via assinatura.
const (
	SubscriptionCommissionFixed      = "fixed"
	SubscriptionCommissionPercentage = "percentage"
)

type Professional struct {
	ID      uint  `gorm:"primaryKey" json:"id"`
	SalonID uint  `json:"salon_id"`
	Salon   Salon `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"salon"`

	Name  string `gorm:"size:100;not null" json:"name"`
	Phone string `gorm:"size:20" json:"phone"`

	// Fração, ex: 0.4 = 40% sobre o valor do atendimento.
	DefaultCommissionPercentage float64 `json:"default_commission_percentage"`

	// Override aplicado apenas quando o atendimento é coberto por assinatura.
	// Vazio = sem override (usa o percentual padrão).
	SubscriptionCommissionType  string  `gorm:"size:20" json:"subscription_commission_type"`
	SubscriptionCommissionValue float64 `json:"subscription_commission_value"`

	Active bool `gorm:"default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
