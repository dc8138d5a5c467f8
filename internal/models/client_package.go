package models

import "time"

type ClientPackage struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	SalonID uint `json:"salon_id"`

	ClientID uint   `json:"client_id"`
	Client   Client `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"client"`

	Name string `gorm:"size:100" json:"name"`

	PurchasedAt time.Time  `json:"purchased_at"`
	ExpiresAt   *time.Time `json:"expires_at"`

	// Invariante: 0 <= used_credits <= credits_total. Cada crédito
	// autoriza uma ocorrência do combo do pacote.
	CreditsTotal int `json:"credits_total"`
	UsedCredits  int `gorm:"default:0" json:"used_credits"`

	// Snapshot imutável do combo, congelado na compra.
	Services []Service `gorm:"many2many:client_package_services;" json:"services"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ClientPackageCredit é a estrutura legada de créditos por serviço,
// anterior aos pacotes por combo. Mantida apenas como fallback de
// compatibilidade na resolução de liquidação.
type ClientPackageCredit struct {
	ID uint `gorm:"primaryKey" json:"id"`

	ClientPackageID uint          `json:"client_package_id"`
	ClientPackage   ClientPackage `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"client_package"`

	ServiceID uint `json:"service_id"`

	TotalCredits int `json:"total_credits"`
	UsedCredits  int `gorm:"default:0" json:"used_credits"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
