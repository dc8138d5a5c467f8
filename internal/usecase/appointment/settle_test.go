package appointment

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/SalaoVivo/salon-scheduler/internal/audit"
	domain "github.com/SalaoVivo/salon-scheduler/internal/domain/appointment"
	"github.com/SalaoVivo/salon-scheduler/internal/domain/settlement"
	"github.com/SalaoVivo/salon-scheduler/internal/httperr"
	"github.com/SalaoVivo/salon-scheduler/internal/models"
	"github.com/SalaoVivo/salon-scheduler/internal/notify"
)

// ======================================================
// FAKE STORE
// ======================================================

// fakeStore emula a fronteira transacional em memória: InTx tira um
// snapshot das escritas e restaura tudo quando fn devolve erro.
type fakeStore struct {
	ap *models.Appointment

	subs    []settlement.SubscriptionGrant
	pkgs    []settlement.PackageGrant
	credits []settlement.LegacyCredit

	// saldo disponível no ledger, por id
	pkgBalance    map[uint]int
	creditBalance map[uint]int

	records []*models.FinancialRecord

	statsVisits int
	statsSpent  float64
}

func (f *fakeStore) InTx(ctx context.Context, fn func(settlement.Store) error) error {
	apBefore := *f.ap
	recordsBefore := len(f.records)
	visitsBefore := f.statsVisits
	spentBefore := f.statsSpent
	pkgBefore := map[uint]int{}
	for k, v := range f.pkgBalance {
		pkgBefore[k] = v
	}
	creditBefore := map[uint]int{}
	for k, v := range f.creditBalance {
		creditBefore[k] = v
	}

	if err := fn(f); err != nil {
		*f.ap = apBefore
		f.records = f.records[:recordsBefore]
		f.statsVisits = visitsBefore
		f.statsSpent = spentBefore
		f.pkgBalance = pkgBefore
		f.creditBalance = creditBefore
		return err
	}
	return nil
}

func (f *fakeStore) GetAppointment(ctx context.Context, appointmentID, salonID uint) (*models.Appointment, error) {
	if f.ap == nil || f.ap.ID != appointmentID || f.ap.SalonID != salonID {
		return nil, httperr.ErrBusiness(httperr.CodeAppointmentNotFound)
	}
	return f.ap, nil
}

func (f *fakeStore) CompleteAppointment(ctx context.Context, ap *models.Appointment) error {
	return nil
}

func (f *fakeStore) IncrementClientStats(ctx context.Context, clientID uint, spent float64, visitedAt time.Time) error {
	f.statsVisits++
	f.statsSpent += spent
	return nil
}

func (f *fakeStore) CreateIncomeRecord(ctx context.Context, rec *models.FinancialRecord) error {
	for _, r := range f.records {
		if r.Reference == rec.Reference {
			return httperr.ErrBusiness(httperr.CodeAlreadyCompleted)
		}
	}
	f.records = append(f.records, rec)
	return nil
}

func (f *fakeStore) GetProfessional(ctx context.Context, professionalID uint) (*models.Professional, error) {
	return &f.ap.Professional, nil
}

func (f *fakeStore) ActiveSubscriptions(ctx context.Context, clientID, salonID uint, now time.Time) ([]settlement.SubscriptionGrant, error) {
	return f.subs, nil
}

func (f *fakeStore) UsablePackages(ctx context.Context, clientID uint, now time.Time) ([]settlement.PackageGrant, error) {
	return f.pkgs, nil
}

func (f *fakeStore) CreditsForService(ctx context.Context, clientID, serviceID uint, now time.Time) ([]settlement.LegacyCredit, error) {
	return f.credits, nil
}

func (f *fakeStore) DebitPackage(ctx context.Context, packageID uint) error {
	if f.pkgBalance[packageID] <= 0 {
		return httperr.ErrBusiness(httperr.CodeInsufficientBalance)
	}
	f.pkgBalance[packageID]--
	return nil
}

func (f *fakeStore) DebitLegacyCredit(ctx context.Context, creditID uint) error {
	if f.creditBalance[creditID] <= 0 {
		return httperr.ErrBusiness(httperr.CodeInsufficientBalance)
	}
	f.creditBalance[creditID]--
	return nil
}

var _ settlement.Store = (*fakeStore)(nil)

// ======================================================
// FIXTURES
// ======================================================

func newTestStore() *fakeStore {
	return &fakeStore{
		ap: &models.Appointment{
			ID:       1,
			SalonID:  1,
			Salon:    models.Salon{ID: 1, Timezone: "America/Sao_Paulo"},
			ClientID: 7,
			Professional: models.Professional{
				ID:                          2,
				DefaultCommissionPercentage: 0.4,
			},
			Services: []models.Service{
				{ID: 10, Price: 60},
				{ID: 20, Price: 40},
			},
			Status: "scheduled",
			Notes:  "[ASSINATURA] cliente de quinta",
		},
		pkgBalance:    map[uint]int{},
		creditBalance: map[uint]int{},
	}
}

func newSettleUC(store *fakeStore) *SettleAppointment {
	dispatcher := audit.NewDispatcher(audit.New(nil))
	notifier := notify.NewPublisher("")
	return NewSettleAppointment(store, dispatcher, notifier)
}

func settleInput(method string) SettleInput {
	return SettleInput{
		SalonID:       1,
		UserID:        3,
		AppointmentID: 1,
		PaymentMethod: method,
	}
}

// ======================================================
// TESTS
// ======================================================

func TestSettleCashCreatesIncomeRecord(t *testing.T) {
	store := newTestStore()
	uc := newSettleUC(store)

	ap, err := uc.Execute(context.Background(), settleInput("cash"))
	require.NoError(t, err)

	require.Equal(t, string(domain.StatusCompleted), ap.Status)
	require.Equal(t, models.PaymentStatusPaid, ap.PaymentStatus)
	require.NotNil(t, ap.PaymentMethod)
	require.Equal(t, "cash", *ap.PaymentMethod)
	require.Nil(t, ap.PaymentSource)
	require.Equal(t, 100.0, ap.TotalPrice)
	require.Equal(t, 0.0, ap.DiscountApplied)
	require.NotNil(t, ap.CommissionEarned)
	require.Equal(t, 40.0, *ap.CommissionEarned)
	require.NotNil(t, ap.CompletedAt)

	require.Len(t, store.records, 1)
	rec := store.records[0]
	require.Equal(t, models.FinancialRecordIncome, rec.Type)
	require.Equal(t, 100.0, rec.Amount)
	require.Equal(t, fmt.Sprintf("appointment:%d", ap.ID), rec.Reference)

	require.Equal(t, 1, store.statsVisits)
	require.Equal(t, 100.0, store.statsSpent)
}

func TestSettlePrepaidSubscription(t *testing.T) {
	store := newTestStore()
	store.ap.Professional.SubscriptionCommissionType = models.SubscriptionCommissionFixed
	store.ap.Professional.SubscriptionCommissionValue = 10
	store.subs = []settlement.SubscriptionGrant{
		{SubscriptionID: 4, PlanID: 9, ServiceIDs: []uint{10, 20, 30}},
	}
	uc := newSettleUC(store)

	ap, err := uc.Execute(context.Background(), settleInput("prepaid"))
	require.NoError(t, err)

	require.NotNil(t, ap.PaymentSource)
	require.Equal(t, models.PaymentSourceSubscription, *ap.PaymentSource)
	// "prepaid" sinaliza, mas não é instrumento de pagamento.
	require.Nil(t, ap.PaymentMethod)
	require.Equal(t, 100.0, ap.DiscountApplied)
	require.NotNil(t, ap.CommissionEarned)
	require.Equal(t, 10.0, *ap.CommissionEarned)

	// Receita já foi reconhecida na venda da assinatura.
	require.Empty(t, store.records)
	require.Equal(t, 1, store.statsVisits)
}

func TestSettlePrepaidPackageDebitsCredit(t *testing.T) {
	store := newTestStore()
	store.pkgs = []settlement.PackageGrant{
		{PackageID: 5, ServiceIDs: []uint{10, 20}, CreditsTotal: 4, UsedCredits: 3, PurchasedAt: time.Now()},
	}
	store.pkgBalance[5] = 1
	uc := newSettleUC(store)

	ap, err := uc.Execute(context.Background(), settleInput("prepaid"))
	require.NoError(t, err)

	require.NotNil(t, ap.PaymentSource)
	require.Equal(t, models.PaymentSourcePackage, *ap.PaymentSource)
	require.Equal(t, 0, store.pkgBalance[5])
	require.Empty(t, store.records)
	// Comissão de pacote usa o percentual padrão, sem override.
	require.NotNil(t, ap.CommissionEarned)
	require.Equal(t, 40.0, *ap.CommissionEarned)
}

func TestSettleLegacyCreditPath(t *testing.T) {
	store := newTestStore()
	store.credits = []settlement.LegacyCredit{
		{CreditID: 12, PackageID: 8, Remaining: 2},
	}
	store.creditBalance[12] = 2
	uc := newSettleUC(store)

	ap, err := uc.Execute(context.Background(), settleInput("prepaid"))
	require.NoError(t, err)

	require.NotNil(t, ap.PaymentSource)
	require.Equal(t, models.PaymentSourcePackage, *ap.PaymentSource)
	require.Equal(t, 1, store.creditBalance[12])
	require.Equal(t, 0, store.pkgBalance[8])
}

func TestSettleInsufficientBalanceRollsBack(t *testing.T) {
	store := newTestStore()
	// O resolver vê saldo no snapshot, mas o ledger já foi consumido por
	// uma liquidação concorrente.
	store.pkgs = []settlement.PackageGrant{
		{PackageID: 5, ServiceIDs: []uint{10, 20}, CreditsTotal: 4, UsedCredits: 3, PurchasedAt: time.Now()},
	}
	store.pkgBalance[5] = 0
	uc := newSettleUC(store)

	_, err := uc.Execute(context.Background(), settleInput("prepaid"))
	require.True(t, httperr.IsBusiness(err, httperr.CodeInsufficientBalance))

	require.Equal(t, "scheduled", store.ap.Status)
	require.Empty(t, store.records)
	require.Equal(t, 0, store.statsVisits)
}

func TestSettlePrepaidWithoutEntitlement(t *testing.T) {
	store := newTestStore()
	uc := newSettleUC(store)

	_, err := uc.Execute(context.Background(), settleInput("prepaid"))
	require.True(t, httperr.IsBusiness(err, httperr.CodeNoEligibleEntitlement))

	require.Equal(t, "scheduled", store.ap.Status)
	require.Equal(t, 0, store.statsVisits)
}

func TestSettleAlreadyCompleted(t *testing.T) {
	store := newTestStore()
	store.ap.Status = string(domain.StatusCompleted)
	uc := newSettleUC(store)

	_, err := uc.Execute(context.Background(), settleInput("cash"))
	require.True(t, httperr.IsBusiness(err, httperr.CodeAlreadyCompleted))
	require.Empty(t, store.records)
}

func TestSettleCancelledAppointment(t *testing.T) {
	store := newTestStore()
	store.ap.Status = string(domain.StatusCancelled)
	uc := newSettleUC(store)

	_, err := uc.Execute(context.Background(), settleInput("pix"))
	require.True(t, httperr.IsBusiness(err, httperr.CodeInvalidState))
}

func TestSettleRejectsUnknownMethod(t *testing.T) {
	store := newTestStore()
	uc := newSettleUC(store)

	_, err := uc.Execute(context.Background(), settleInput("bitcoin"))
	require.True(t, httperr.IsBusiness(err, "invalid_payment_method"))
}

func TestSettleSanitizesLegacyNotes(t *testing.T) {
	store := newTestStore()
	uc := newSettleUC(store)

	ap, err := uc.Execute(context.Background(), settleInput("pix"))
	require.NoError(t, err)
	require.Equal(t, "cliente de quinta", ap.Notes)
}
