package models

import "time"

const (
	FinancialRecordIncome  = "income"
	FinancialRecordExpense = "expense"
)

// FinancialRecord é um lançamento contábil append-only: criado uma única
// vez na liquidação e nunca atualizado.
type FinancialRecord struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	SalonID uint `json:"salon_id"`

	Type   string  `gorm:"size:20;not null" json:"type"`
	Amount float64 `json:"amount"`

	// Uma referência por evento de liquidação (ex: "appointment:42").
	Reference   string `gorm:"size:100;uniqueIndex" json:"reference"`
	Description string `gorm:"size:255" json:"description"`

	Date time.Time `json:"date"`

	CreatedAt time.Time `json:"created_at"`
}
