package settlement

import (
	"context"
	"time"
)

// ===============================
// Leitura de entitlements
// ===============================

// SubscriptionGrant é uma assinatura vigente do cliente com o conjunto
// de serviços coberto pelo plano.
type SubscriptionGrant struct {
	SubscriptionID uint
	PlanID         uint
	ServiceIDs     []uint
}

// PackageGrant é um pacote do cliente com saldo e snapshot do combo.
type PackageGrant struct {
	PackageID    uint
	ServiceIDs   []uint
	CreditsTotal int
	UsedCredits  int
	ExpiresAt    *time.Time
	PurchasedAt  time.Time
}

func (p PackageGrant) Remaining() int {
	return p.CreditsTotal - p.UsedCredits
}

// LegacyCredit é uma linha da estrutura antiga de créditos por serviço.
type LegacyCredit struct {
	CreditID  uint
	PackageID uint
	Remaining int
	ExpiresAt *time.Time
}

// EntitlementStore é o lado de leitura da resolução. Implementações
// devem consultar dentro da MESMA transação da liquidação: decisões
// nunca são cacheadas entre requisições.
type EntitlementStore interface {
	// ActiveSubscriptions retorna assinaturas ACTIVE cujo plano está
	// ativo e cuja janela de validade contém now.
	ActiveSubscriptions(ctx context.Context, clientID, salonID uint, now time.Time) ([]SubscriptionGrant, error)

	// UsablePackages retorna pacotes não expirados com saldo > 0.
	UsablePackages(ctx context.Context, clientID uint, now time.Time) ([]PackageGrant, error)

	// CreditsForService retorna créditos legados com saldo para um
	// serviço, em pacotes não expirados, vencimento mais próximo primeiro.
	CreditsForService(ctx context.Context, clientID, serviceID uint, now time.Time) ([]LegacyCredit, error)
}

// ===============================
// Débito de créditos
// ===============================

// CreditLedger consome uma unidade de crédito. O check-then-increment
// precisa ser atômico frente a liquidações concorrentes sobre o mesmo
// pacote (UPDATE condicional conferindo linhas afetadas).
type CreditLedger interface {
	DebitPackage(ctx context.Context, packageID uint) error
	DebitLegacyCredit(ctx context.Context, creditID uint) error
}
