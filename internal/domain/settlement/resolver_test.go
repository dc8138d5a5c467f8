package settlement

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/SalaoVivo/salon-scheduler/internal/httperr"
)

// fakeEntitlements devolve dados fixos e registra o serviço consultado
// no caminho legado.
type fakeEntitlements struct {
	subs    []SubscriptionGrant
	pkgs    []PackageGrant
	credits []LegacyCredit

	subsErr error
	pkgsErr error

	creditServiceID uint
}

func (f *fakeEntitlements) ActiveSubscriptions(ctx context.Context, clientID, salonID uint, now time.Time) ([]SubscriptionGrant, error) {
	return f.subs, f.subsErr
}

func (f *fakeEntitlements) UsablePackages(ctx context.Context, clientID uint, now time.Time) ([]PackageGrant, error) {
	return f.pkgs, f.pkgsErr
}

func (f *fakeEntitlements) CreditsForService(ctx context.Context, clientID, serviceID uint, now time.Time) ([]LegacyCredit, error) {
	f.creditServiceID = serviceID
	return f.credits, nil
}

func prepaidQuery(serviceIDs ...uint) Query {
	return Query{
		SalonID:      1,
		ClientID:     7,
		ServiceIDs:   serviceIDs,
		WantsPrepaid: true,
		Now:          time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC),
	}
}

func TestResolveDirectPaymentShortCircuits(t *testing.T) {
	store := &fakeEntitlements{
		subs: []SubscriptionGrant{{SubscriptionID: 1, PlanID: 1, ServiceIDs: []uint{10}}},
	}

	q := prepaidQuery(10)
	q.WantsPrepaid = false

	d, err := NewResolver(store).Resolve(context.Background(), q)
	require.NoError(t, err)
	require.Equal(t, SourceNone, d.Source)
	require.False(t, d.Prepaid())
}

func TestResolveSubscriptionCoversSubset(t *testing.T) {
	store := &fakeEntitlements{
		subs: []SubscriptionGrant{
			{SubscriptionID: 3, PlanID: 9, ServiceIDs: []uint{10, 20, 30}},
		},
	}

	d, err := NewResolver(store).Resolve(context.Background(), prepaidQuery(10, 30))
	require.NoError(t, err)
	require.Equal(t, SourceSubscription, d.Source)
	require.Equal(t, uint(3), d.SubscriptionID)
	require.Equal(t, uint(9), d.PlanID)
	require.True(t, d.Prepaid())
}

func TestResolveSubscriptionRejectsPartialCoverage(t *testing.T) {
	// O plano cobre 10 mas o combo pede 10+40: assinatura não se aplica.
	store := &fakeEntitlements{
		subs: []SubscriptionGrant{
			{SubscriptionID: 3, PlanID: 9, ServiceIDs: []uint{10, 20}},
		},
		pkgs: []PackageGrant{
			{PackageID: 5, ServiceIDs: []uint{10, 40}, CreditsTotal: 4, UsedCredits: 1, PurchasedAt: time.Now()},
		},
	}

	d, err := NewResolver(store).Resolve(context.Background(), prepaidQuery(10, 40))
	require.NoError(t, err)
	require.Equal(t, SourcePackage, d.Source)
	require.Equal(t, uint(5), d.PackageID)
}

func TestResolveSubscriptionWinsOverPackage(t *testing.T) {
	store := &fakeEntitlements{
		subs: []SubscriptionGrant{
			{SubscriptionID: 3, PlanID: 9, ServiceIDs: []uint{10}},
		},
		pkgs: []PackageGrant{
			{PackageID: 5, ServiceIDs: []uint{10}, CreditsTotal: 4, PurchasedAt: time.Now()},
		},
	}

	d, err := NewResolver(store).Resolve(context.Background(), prepaidQuery(10))
	require.NoError(t, err)
	require.Equal(t, SourceSubscription, d.Source)
}

func TestResolvePackageRequiresExactCombo(t *testing.T) {
	// Pacote de {10,20} não liquida combo {10}: igualdade de conjuntos,
	// não subconjunto.
	store := &fakeEntitlements{
		pkgs: []PackageGrant{
			{PackageID: 5, ServiceIDs: []uint{10, 20}, CreditsTotal: 4, PurchasedAt: time.Now()},
		},
	}

	_, err := NewResolver(store).Resolve(context.Background(), prepaidQuery(10))
	require.True(t, httperr.IsBusiness(err, httperr.CodeNoEligibleEntitlement))
}

func TestResolvePackageOrdering(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	soon := base.AddDate(0, 1, 0)
	later := base.AddDate(0, 6, 0)

	store := &fakeEntitlements{
		pkgs: []PackageGrant{
			{PackageID: 1, ServiceIDs: []uint{10}, CreditsTotal: 4, ExpiresAt: nil, PurchasedAt: base},
			{PackageID: 2, ServiceIDs: []uint{10}, CreditsTotal: 4, ExpiresAt: &later, PurchasedAt: base},
			{PackageID: 3, ServiceIDs: []uint{10}, CreditsTotal: 4, ExpiresAt: &soon, PurchasedAt: base.AddDate(0, 0, 2)},
			{PackageID: 4, ServiceIDs: []uint{10}, CreditsTotal: 4, ExpiresAt: &soon, PurchasedAt: base},
		},
	}

	// Vence antes primeiro; empate no vencimento decide pela compra mais
	// antiga; sem vencimento fica por último.
	d, err := NewResolver(store).Resolve(context.Background(), prepaidQuery(10))
	require.NoError(t, err)
	require.Equal(t, uint(4), d.PackageID)
}

func TestResolvePackageSkipsExhausted(t *testing.T) {
	exp := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	store := &fakeEntitlements{
		pkgs: []PackageGrant{
			{PackageID: 1, ServiceIDs: []uint{10}, CreditsTotal: 4, UsedCredits: 4, ExpiresAt: &exp, PurchasedAt: exp.AddDate(-1, 0, 0)},
			{PackageID: 2, ServiceIDs: []uint{10}, CreditsTotal: 4, UsedCredits: 3, PurchasedAt: exp.AddDate(-1, 0, 0)},
		},
	}

	d, err := NewResolver(store).Resolve(context.Background(), prepaidQuery(10))
	require.NoError(t, err)
	require.Equal(t, uint(2), d.PackageID)
}

func TestResolveLegacyCreditFallback(t *testing.T) {
	store := &fakeEntitlements{
		credits: []LegacyCredit{
			{CreditID: 0, PackageID: 8, Remaining: 0},
			{CreditID: 12, PackageID: 8, Remaining: 2},
		},
	}

	// O caminho legado consulta apenas o primeiro serviço do combo.
	d, err := NewResolver(store).Resolve(context.Background(), prepaidQuery(10, 20))
	require.NoError(t, err)
	require.Equal(t, SourcePackage, d.Source)
	require.Equal(t, uint(8), d.PackageID)
	require.Equal(t, uint(12), d.CreditID)
	require.Equal(t, uint(10), store.creditServiceID)
}

func TestResolveNothingEligible(t *testing.T) {
	store := &fakeEntitlements{}

	_, err := NewResolver(store).Resolve(context.Background(), prepaidQuery(10))
	require.True(t, httperr.IsBusiness(err, httperr.CodeNoEligibleEntitlement))
}

func TestResolvePropagatesStoreError(t *testing.T) {
	boom := errors.New("connection reset")
	store := &fakeEntitlements{subsErr: boom}

	_, err := NewResolver(store).Resolve(context.Background(), prepaidQuery(10))
	require.ErrorIs(t, err, boom)
}

func TestSameSetIgnoresOrderAndDuplicates(t *testing.T) {
	require.True(t, sameSet([]uint{10, 20}, []uint{20, 10}))
	require.True(t, sameSet([]uint{10, 10, 20}, []uint{20, 10}))
	require.False(t, sameSet([]uint{10, 20}, []uint{10}))
	require.False(t, sameSet([]uint{10}, []uint{10, 20}))
}
