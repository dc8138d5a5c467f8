package settlement

import (
	"context"
	"time"

	"github.com/SalaoVivo/salon-scheduler/internal/models"
)

// Store é a fronteira de persistência da liquidação. Todas as escritas
// de uma liquidação acontecem dentro de UMA transação: ou commitam
// juntas ou nada é observável.
type Store interface {
	EntitlementStore
	CreditLedger

	// GetAppointment carrega o atendimento com serviços, cliente e
	// profissional, restrito ao tenant.
	GetAppointment(ctx context.Context, appointmentID, salonID uint) (*models.Appointment, error)

	// CompleteAppointment persiste o estado final condicionado ao
	// atendimento ainda não estar em estado terminal. Perdedor de
	// corrida recebe already_completed.
	CompleteAppointment(ctx context.Context, ap *models.Appointment) error

	// IncrementClientStats soma visita e gasto e atualiza last_visit.
	IncrementClientStats(ctx context.Context, clientID uint, spent float64, visitedAt time.Time) error

	// CreateIncomeRecord insere exatamente um lançamento de receita.
	CreateIncomeRecord(ctx context.Context, rec *models.FinancialRecord) error

	// GetProfessional relê o profissional (passo de reconciliação).
	GetProfessional(ctx context.Context, professionalID uint) (*models.Professional, error)

	// InTx executa fn dentro de uma transação; qualquer erro desfaz
	// todas as escritas.
	InTx(ctx context.Context, fn func(Store) error) error
}
