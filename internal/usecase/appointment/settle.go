package appointment

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/SalaoVivo/salon-scheduler/internal/audit"
	domain "github.com/SalaoVivo/salon-scheduler/internal/domain/appointment"
	"github.com/SalaoVivo/salon-scheduler/internal/domain/settlement"
	"github.com/SalaoVivo/salon-scheduler/internal/httperr"
	"github.com/SalaoVivo/salon-scheduler/internal/metrics"
	"github.com/SalaoVivo/salon-scheduler/internal/models"
	"github.com/SalaoVivo/salon-scheduler/internal/notify"
	"github.com/SalaoVivo/salon-scheduler/internal/timezone"
)

// ======================================================
// INPUT
// ======================================================

const PaymentMethodPrepaid = "prepaid"

type SettleInput struct {
	SalonID       uint
	UserID        uint
	AppointmentID uint

	// cash | pix | card | prepaid
	PaymentMethod string
}

// Marcadores antigos de estado gravados em texto livre pelo sistema
// anterior. São removidos na liquidação; payment_source é a única
// fonte de verdade.
var legacyNoteMarker = regexp.MustCompile(`\[(ASSINATURA|PACOTE|PLANO)[^\]]*\]\s*`)

// ======================================================
// USE CASE
// ======================================================

// SettleAppointment é a fronteira transacional da liquidação: resolve
// o entitlement, debita crédito quando for o caso, congela a comissão,
// grava o estado final, atualiza agregados do cliente e reconhece
// receita — tudo ou nada.
type SettleAppointment struct {
	store    settlement.Store
	audit    *audit.Dispatcher
	notifier *notify.Publisher
}

func NewSettleAppointment(
	store settlement.Store,
	audit *audit.Dispatcher,
	notifier *notify.Publisher,
) *SettleAppointment {
	return &SettleAppointment{
		store:    store,
		audit:    audit,
		notifier: notifier,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *SettleAppointment) Execute(
	ctx context.Context,
	in SettleInput,
) (*models.Appointment, error) {

	method := strings.ToLower(strings.TrimSpace(in.PaymentMethod))
	switch method {
	case models.PaymentMethodCash, models.PaymentMethodPix, models.PaymentMethodCard, PaymentMethodPrepaid:
	default:
		return nil, httperr.ErrBusiness("invalid_payment_method")
	}

	wantsPrepaid := method == PaymentMethodPrepaid

	var settled *models.Appointment

	err := uc.store.InTx(ctx, func(s settlement.Store) error {

		ap, err := s.GetAppointment(ctx, in.AppointmentID, in.SalonID)
		if err != nil {
			return err
		}

		if err := domain.CanComplete(domain.Status(ap.Status)); err != nil {
			return err
		}

		now := timezone.NowIn(ap.Salon.Timezone)
		total := domain.TotalPrice(ap)

		// A decisão é sempre recalculada dentro da transação para
		// nunca agir sobre saldo velho.
		resolver := settlement.NewResolver(s)
		decision, err := resolver.Resolve(ctx, settlement.Query{
			SalonID:      in.SalonID,
			ClientID:     ap.ClientID,
			ServiceIDs:   domain.ServiceIDs(ap),
			WantsPrepaid: wantsPrepaid,
			Now:          now,
		})
		if err != nil {
			return err
		}

		if decision.Source == settlement.SourcePackage {
			if decision.CreditID > 0 {
				err = s.DebitLegacyCredit(ctx, decision.CreditID)
			} else {
				err = s.DebitPackage(ctx, decision.PackageID)
			}
			if err != nil {
				return err
			}
		}

		commission := settlement.Calculate(total, decision.Source, settlement.CommissionConfig{
			DefaultPercentage: ap.Professional.DefaultCommissionPercentage,
			SubscriptionType:  ap.Professional.SubscriptionCommissionType,
			SubscriptionValue: ap.Professional.SubscriptionCommissionValue,
		})

		var discount float64
		if decision.Prepaid() {
			// Serviço integralmente pré-pago.
			discount = total
		}

		ap.Status = string(domain.StatusCompleted)
		ap.PaymentStatus = models.PaymentStatusPaid
		ap.TotalPrice = total
		ap.CommissionEarned = commission
		ap.DiscountApplied = discount
		ap.CompletedAt = &now
		ap.Notes = strings.TrimSpace(legacyNoteMarker.ReplaceAllString(ap.Notes, ""))

		if wantsPrepaid {
			// "prepaid" não é instrumento de pagamento: não fica gravado.
			ap.PaymentMethod = nil
		} else {
			ap.PaymentMethod = &method
		}

		switch decision.Source {
		case settlement.SourceSubscription:
			src := models.PaymentSourceSubscription
			ap.PaymentSource = &src
		case settlement.SourcePackage:
			src := models.PaymentSourcePackage
			ap.PaymentSource = &src
		default:
			ap.PaymentSource = nil
		}

		if err := s.CompleteAppointment(ctx, ap); err != nil {
			return err
		}

		if err := s.IncrementClientStats(ctx, ap.ClientID, total, now); err != nil {
			return err
		}

		// Receita só é reconhecida em pagamento direto: assinatura e
		// pacote já entraram no caixa quando foram vendidos.
		if decision.Source == settlement.SourceNone {
			rec := &models.FinancialRecord{
				SalonID:     in.SalonID,
				Type:        models.FinancialRecordIncome,
				Amount:      total,
				Reference:   fmt.Sprintf("appointment:%d", ap.ID),
				Description: "Atendimento concluído",
				Date:        now,
			}
			if err := s.CreateIncomeRecord(ctx, rec); err != nil {
				return err
			}
		}

		settled = ap
		return nil
	})

	if err != nil {
		if be, ok := httperr.AsBusiness(err); ok {
			metrics.SettlementErrorsTotal.WithLabelValues(be.Code).Inc()
		}
		return nil, err
	}

	uc.afterCommit(ctx, in, settled)

	return settled, nil
}

// afterCommit roda os passos secundários não-críticos: métricas,
// reconciliação de comissão, auditoria e evento. Falha aqui é logada e
// engolida — nunca invalida uma liquidação já commitada.
func (uc *SettleAppointment) afterCommit(
	ctx context.Context,
	in SettleInput,
	ap *models.Appointment,
) {
	source := "none"
	if ap.PaymentSource != nil {
		source = *ap.PaymentSource
	}

	metrics.SettlementsTotal.WithLabelValues(source).Inc()
	if ap.PaymentSource == nil {
		metrics.RevenueRecordedTotal.Add(ap.TotalPrice)
	}

	uc.reconcileCommission(ctx, ap)

	uc.audit.Dispatch(audit.Event{
		SalonID:  in.SalonID,
		UserID:   &in.UserID,
		Action:   "appointment_settled",
		Entity:   "appointment",
		EntityID: &ap.ID,
		Metadata: map[string]any{
			"payment_source": ap.PaymentSource,
			"total_price":    ap.TotalPrice,
		},
	})

	completedAt := ""
	if ap.CompletedAt != nil {
		completedAt = ap.CompletedAt.Format(time.RFC3339)
	}

	uc.notifier.Publish(notify.SettlementEvent{
		SalonID:       in.SalonID,
		AppointmentID: ap.ID,
		PaymentSource: ap.PaymentSource,
		TotalPrice:    ap.TotalPrice,
		Commission:    ap.CommissionEarned,
		CompletedAt:   completedAt,
	})
}

// reconcileCommission refaz o cálculo com o registro final do
// profissional e loga divergência. Passo redundante de conferência;
// o valor congelado na liquidação permanece o oficial.
func (uc *SettleAppointment) reconcileCommission(
	ctx context.Context,
	ap *models.Appointment,
) {
	pro, err := uc.store.GetProfessional(ctx, ap.ProfessionalID)
	if err != nil {
		log.Println("commission reconciliation skipped:", err)
		return
	}

	source := settlement.SourceNone
	if ap.PaymentSource != nil {
		source = settlement.Source(*ap.PaymentSource)
	}

	check := settlement.Calculate(ap.TotalPrice, source, settlement.CommissionConfig{
		DefaultPercentage: pro.DefaultCommissionPercentage,
		SubscriptionType:  pro.SubscriptionCommissionType,
		SubscriptionValue: pro.SubscriptionCommissionValue,
	})

	stored, recomputed := 0.0, 0.0
	if ap.CommissionEarned != nil {
		stored = *ap.CommissionEarned
	}
	if check != nil {
		recomputed = *check
	}

	if stored != recomputed {
		log.Printf(
			"commission mismatch on appointment %d: stored=%.2f recomputed=%.2f",
			ap.ID, stored, recomputed,
		)
	}
}
