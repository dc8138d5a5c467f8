package models

import "time"

// Formas de pagamento direto. "prepaid" nunca é gravado: indica apenas
// que o cliente quer consumir assinatura ou pacote.
const (
	PaymentMethodCash = "cash"
	PaymentMethodPix  = "pix"
	PaymentMethodCard = "card"
)

const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
)

const (
	PaymentSourceSubscription = "subscription"
	PaymentSourcePackage      = "package"
)

type Appointment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	SalonID uint  `json:"salon_id"`
	Salon   Salon `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"salon"`

	ProfessionalID uint         `json:"professional_id"`
	Professional   Professional `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"professional"`

	ClientID uint   `json:"client_id"`
	Client   Client `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"client"`

	// Combo do atendimento: conjunto de serviços realizados juntos.
	Services []Service `gorm:"many2many:appointment_services;" json:"services"`

	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`

	Status string `gorm:"size:20;default:'scheduled'" json:"status"`

	PaymentMethod *string `gorm:"size:20" json:"payment_method"`
	PaymentStatus string  `gorm:"size:20;default:'pending'" json:"payment_status"`

	// Origem da liquidação quando pré-paga (subscription/package).
	// Nulo = pagamento direto. Única fonte de verdade do estado de
	// liquidação; nunca inferido de texto livre.
	PaymentSource *string `gorm:"size:20" json:"payment_source"`

	TotalPrice       float64  `json:"total_price"`
	CommissionEarned *float64 `json:"commission_earned"`
	DiscountApplied  float64  `json:"discount_applied"`

	Notes       string     `gorm:"size:255" json:"notes"`
	CancelledAt *time.Time `json:"cancelled_at"`
	CompletedAt *time.Time `json:"completed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
