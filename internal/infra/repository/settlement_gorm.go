package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/SalaoVivo/salon-scheduler/internal/domain/settlement"
	"github.com/SalaoVivo/salon-scheduler/internal/httperr"
	"github.com/SalaoVivo/salon-scheduler/internal/models"
)

type SettlementGormRepository struct {
	db *gorm.DB
}

func NewSettlementGormRepository(db *gorm.DB) *SettlementGormRepository {
	return &SettlementGormRepository{db: db}
}

// InTx roda fn em uma transação; o Store recebido opera sobre o tx.
func (r *SettlementGormRepository) InTx(
	ctx context.Context,
	fn func(settlement.Store) error,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&SettlementGormRepository{db: tx})
	})
}

// --------------------------------------------------
// Appointment
// --------------------------------------------------

func (r *SettlementGormRepository) GetAppointment(
	ctx context.Context,
	appointmentID uint,
	salonID uint,
) (*models.Appointment, error) {

	var ap models.Appointment
	err := r.db.WithContext(ctx).
		Preload("Salon").
		Preload("Services").
		Preload("Client").
		Preload("Professional").
		Where("id = ? AND salon_id = ?", appointmentID, salonID).
		First(&ap).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.ErrBusiness(httperr.CodeAppointmentNotFound)
		}
		return nil, httperr.ErrSystem("get appointment", err)
	}

	return &ap, nil
}

// CompleteAppointment grava o estado final com guarda contra dupla
// liquidação: o UPDATE só afeta linhas fora de estado terminal.
func (r *SettlementGormRepository) CompleteAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {

	res := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where(
			"id = ? AND status NOT IN ?",
			ap.ID,
			[]string{"completed", "cancelled"},
		).
		Updates(map[string]any{
			"status":            ap.Status,
			"payment_method":    ap.PaymentMethod,
			"payment_status":    ap.PaymentStatus,
			"payment_source":    ap.PaymentSource,
			"total_price":       ap.TotalPrice,
			"commission_earned": ap.CommissionEarned,
			"discount_applied":  ap.DiscountApplied,
			"completed_at":      ap.CompletedAt,
			"notes":             ap.Notes,
		})

	if res.Error != nil {
		return httperr.ErrSystem("complete appointment", res.Error)
	}

	if res.RowsAffected == 0 {
		return httperr.ErrBusiness(httperr.CodeAlreadyCompleted)
	}

	return nil
}

// --------------------------------------------------
// Entitlements (leitura)
// --------------------------------------------------

func (r *SettlementGormRepository) ActiveSubscriptions(
	ctx context.Context,
	clientID uint,
	salonID uint,
	now time.Time,
) ([]settlement.SubscriptionGrant, error) {

	var subs []models.ClientSubscription
	err := r.db.WithContext(ctx).
		Preload("Plan.Services").
		Joins("JOIN subscription_plans ON subscription_plans.id = client_subscriptions.plan_id").
		Where("client_subscriptions.client_id = ?", clientID).
		Where("client_subscriptions.status = ?", models.SubscriptionStatusActive).
		Where("subscription_plans.salon_id = ? AND subscription_plans.is_active = true", salonID).
		Where("client_subscriptions.start_date <= ? AND client_subscriptions.end_date >= ?", now, now).
		Order("client_subscriptions.start_date ASC, client_subscriptions.id ASC").
		Find(&subs).Error

	if err != nil {
		return nil, httperr.ErrSystem("list active subscriptions", err)
	}

	grants := make([]settlement.SubscriptionGrant, 0, len(subs))
	for _, sub := range subs {
		ids := make([]uint, 0, len(sub.Plan.Services))
		for _, svc := range sub.Plan.Services {
			ids = append(ids, svc.ID)
		}
		grants = append(grants, settlement.SubscriptionGrant{
			SubscriptionID: sub.ID,
			PlanID:         sub.PlanID,
			ServiceIDs:     ids,
		})
	}

	return grants, nil
}

func (r *SettlementGormRepository) UsablePackages(
	ctx context.Context,
	clientID uint,
	now time.Time,
) ([]settlement.PackageGrant, error) {

	var pkgs []models.ClientPackage
	err := r.db.WithContext(ctx).
		Preload("Services").
		Where("client_id = ?", clientID).
		Where("used_credits < credits_total").
		Where("expires_at IS NULL OR expires_at > ?", now).
		Find(&pkgs).Error

	if err != nil {
		return nil, httperr.ErrSystem("list usable packages", err)
	}

	grants := make([]settlement.PackageGrant, 0, len(pkgs))
	for _, pkg := range pkgs {
		ids := make([]uint, 0, len(pkg.Services))
		for _, svc := range pkg.Services {
			ids = append(ids, svc.ID)
		}
		grants = append(grants, settlement.PackageGrant{
			PackageID:    pkg.ID,
			ServiceIDs:   ids,
			CreditsTotal: pkg.CreditsTotal,
			UsedCredits:  pkg.UsedCredits,
			ExpiresAt:    pkg.ExpiresAt,
			PurchasedAt:  pkg.PurchasedAt,
		})
	}

	return grants, nil
}

func (r *SettlementGormRepository) CreditsForService(
	ctx context.Context,
	clientID uint,
	serviceID uint,
	now time.Time,
) ([]settlement.LegacyCredit, error) {

	type creditRow struct {
		CreditID  uint
		PackageID uint
		Remaining int
		ExpiresAt *time.Time
	}

	var rows []creditRow
	err := r.db.WithContext(ctx).
		Model(&models.ClientPackageCredit{}).
		Select(
			"client_package_credits.id AS credit_id, " +
				"client_package_credits.client_package_id AS package_id, " +
				"client_package_credits.total_credits - client_package_credits.used_credits AS remaining, " +
				"client_packages.expires_at AS expires_at",
		).
		Joins("JOIN client_packages ON client_packages.id = client_package_credits.client_package_id").
		Where("client_packages.client_id = ?", clientID).
		Where("client_package_credits.service_id = ?", serviceID).
		Where("client_package_credits.used_credits < client_package_credits.total_credits").
		Where("client_packages.expires_at IS NULL OR client_packages.expires_at > ?", now).
		Order("client_packages.expires_at ASC NULLS LAST").
		Scan(&rows).Error

	if err != nil {
		return nil, httperr.ErrSystem("list legacy credits", err)
	}

	credits := make([]settlement.LegacyCredit, 0, len(rows))
	for _, row := range rows {
		credits = append(credits, settlement.LegacyCredit{
			CreditID:  row.CreditID,
			PackageID: row.PackageID,
			Remaining: row.Remaining,
			ExpiresAt: row.ExpiresAt,
		})
	}

	return credits, nil
}

// --------------------------------------------------
// Débito (check-then-increment atômico)
// --------------------------------------------------

func (r *SettlementGormRepository) DebitPackage(
	ctx context.Context,
	packageID uint,
) error {

	res := r.db.WithContext(ctx).
		Model(&models.ClientPackage{}).
		Where("id = ? AND used_credits < credits_total", packageID).
		UpdateColumn("used_credits", gorm.Expr("used_credits + 1"))

	if res.Error != nil {
		return httperr.ErrSystem("debit package", res.Error)
	}

	if res.RowsAffected == 0 {
		return httperr.ErrBusiness(httperr.CodeInsufficientBalance)
	}

	return nil
}

func (r *SettlementGormRepository) DebitLegacyCredit(
	ctx context.Context,
	creditID uint,
) error {

	res := r.db.WithContext(ctx).
		Model(&models.ClientPackageCredit{}).
		Where("id = ? AND used_credits < total_credits", creditID).
		UpdateColumn("used_credits", gorm.Expr("used_credits + 1"))

	if res.Error != nil {
		return httperr.ErrSystem("debit legacy credit", res.Error)
	}

	if res.RowsAffected == 0 {
		return httperr.ErrBusiness(httperr.CodeInsufficientBalance)
	}

	return nil
}

// --------------------------------------------------
// Agregados + ledger
// --------------------------------------------------

func (r *SettlementGormRepository) IncrementClientStats(
	ctx context.Context,
	clientID uint,
	spent float64,
	visitedAt time.Time,
) error {

	res := r.db.WithContext(ctx).
		Model(&models.Client{}).
		Where("id = ?", clientID).
		Updates(map[string]any{
			"total_visits": gorm.Expr("total_visits + 1"),
			"total_spent":  gorm.Expr("total_spent + ?", spent),
			"last_visit":   visitedAt,
		})

	if res.Error != nil {
		return httperr.ErrSystem("increment client stats", res.Error)
	}

	return nil
}

func (r *SettlementGormRepository) CreateIncomeRecord(
	ctx context.Context,
	rec *models.FinancialRecord,
) error {

	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		// Referência duplicada = outra liquidação já reconheceu a
		// receita deste atendimento.
		if httperr.IsExclusionConflict(err) {
			return httperr.ErrBusiness(httperr.CodeAlreadyCompleted)
		}
		return httperr.ErrSystem("create income record", err)
	}

	return nil
}

func (r *SettlementGormRepository) GetProfessional(
	ctx context.Context,
	professionalID uint,
) (*models.Professional, error) {

	var pro models.Professional
	if err := r.db.WithContext(ctx).First(&pro, professionalID).Error; err != nil {
		return nil, httperr.ErrSystem("get professional", err)
	}

	return &pro, nil
}

// Compile-time check
var _ settlement.Store = (*SettlementGormRepository)(nil)
