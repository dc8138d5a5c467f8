package settlement

import (
	"context"
	"sort"
	"time"

	"github.com/SalaoVivo/salon-scheduler/internal/httperr"
)

// Query descreve o atendimento a liquidar.
type Query struct {
	SalonID  uint
	ClientID uint

	// Combo solicitado: conjunto de ids de serviço do atendimento.
	ServiceIDs []uint

	// true quando o método de pagamento sinaliza consumo de direito
	// pré-pago em vez de pagamento direto.
	WantsPrepaid bool

	Now time.Time
}

// strategy tenta resolver a query. (nil, nil) = não aplicável, segue
// para a próxima da cadeia. Erro de infraestrutura propaga: "não achei"
// e "falhou a consulta" nunca se confundem.
type strategy interface {
	resolve(ctx context.Context, q Query) (*Decision, error)
}

// Resolver decide a origem da liquidação percorrendo as estratégias em
// ordem de prioridade: assinatura, pacote por combo, crédito legado.
type Resolver struct {
	chain []strategy
}

func NewResolver(store EntitlementStore) *Resolver {
	return &Resolver{
		chain: []strategy{
			subscriptionStrategy{store: store},
			packageComboStrategy{store: store},
			legacyCreditStrategy{store: store},
		},
	}
}

func (r *Resolver) Resolve(ctx context.Context, q Query) (Decision, error) {
	if !q.WantsPrepaid {
		return Decision{Source: SourceNone}, nil
	}

	for _, s := range r.chain {
		d, err := s.resolve(ctx, q)
		if err != nil {
			return Decision{}, err
		}
		if d != nil {
			return *d, nil
		}
	}

	return Decision{}, httperr.ErrBusiness(httperr.CodeNoEligibleEntitlement)
}

// ===============================
// Assinatura (subset match)
// ===============================

// Uma assinatura cobre o atendimento quando TODOS os serviços do combo
// pertencem ao plano (R ⊆ A). Entre planos elegíveis vale o primeiro
// retornado pelo store; não há ordenação secundária definida.
type subscriptionStrategy struct {
	store EntitlementStore
}

func (s subscriptionStrategy) resolve(ctx context.Context, q Query) (*Decision, error) {
	grants, err := s.store.ActiveSubscriptions(ctx, q.ClientID, q.SalonID, q.Now)
	if err != nil {
		return nil, err
	}

	for _, g := range grants {
		if isSubset(q.ServiceIDs, g.ServiceIDs) {
			return &Decision{
				Source:         SourceSubscription,
				SubscriptionID: g.SubscriptionID,
				PlanID:         g.PlanID,
			}, nil
		}
	}

	return nil, nil
}

// ===============================
// Pacote (combo exato)
// ===============================

// O snapshot do pacote precisa ser EXATAMENTE o combo solicitado
// (igualdade de conjuntos, não subconjunto). Pacotes elegíveis são
// consumidos na ordem: vencimento mais próximo primeiro (sem vencimento
// por último), desempate pela compra mais antiga.
type packageComboStrategy struct {
	store EntitlementStore
}

func (s packageComboStrategy) resolve(ctx context.Context, q Query) (*Decision, error) {
	grants, err := s.store.UsablePackages(ctx, q.ClientID, q.Now)
	if err != nil {
		return nil, err
	}

	var eligible []PackageGrant
	for _, g := range grants {
		if g.Remaining() <= 0 {
			continue
		}
		if sameSet(q.ServiceIDs, g.ServiceIDs) {
			eligible = append(eligible, g)
		}
	}

	if len(eligible) == 0 {
		return nil, nil
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		a, b := eligible[i], eligible[j]
		switch {
		case a.ExpiresAt == nil && b.ExpiresAt == nil:
			return a.PurchasedAt.Before(b.PurchasedAt)
		case a.ExpiresAt == nil:
			return false
		case b.ExpiresAt == nil:
			return true
		case a.ExpiresAt.Equal(*b.ExpiresAt):
			return a.PurchasedAt.Before(b.PurchasedAt)
		default:
			return a.ExpiresAt.Before(*b.ExpiresAt)
		}
	})

	return &Decision{
		Source:    SourcePackage,
		PackageID: eligible[0].PackageID,
	}, nil
}

// ===============================
// Crédito legado por serviço
// ===============================

// Fallback de compatibilidade anterior aos pacotes por combo: procura
// crédito avulso apenas para o PRIMEIRO serviço do combo. Os demais
// serviços do combo não são validados neste caminho.
type legacyCreditStrategy struct {
	store EntitlementStore
}

func (s legacyCreditStrategy) resolve(ctx context.Context, q Query) (*Decision, error) {
	if len(q.ServiceIDs) == 0 {
		return nil, nil
	}

	credits, err := s.store.CreditsForService(ctx, q.ClientID, q.ServiceIDs[0], q.Now)
	if err != nil {
		return nil, err
	}

	for _, cr := range credits {
		if cr.Remaining > 0 {
			return &Decision{
				Source:    SourcePackage,
				PackageID: cr.PackageID,
				CreditID:  cr.CreditID,
			}, nil
		}
	}

	return nil, nil
}

// ===============================
// Conjuntos
// ===============================

func toSet(ids []uint) map[uint]struct{} {
	set := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// isSubset: todo elemento de requested pertence a allowed.
func isSubset(requested, allowed []uint) bool {
	allowedSet := toSet(allowed)
	for _, id := range requested {
		if _, ok := allowedSet[id]; !ok {
			return false
		}
	}
	return true
}

// sameSet: igualdade de conjuntos (duplicatas ignoradas).
func sameSet(a, b []uint) bool {
	sa, sb := toSet(a), toSet(b)
	if len(sa) != len(sb) {
		return false
	}
	for id := range sa {
		if _, ok := sb[id]; !ok {
			return false
		}
	}
	return true
}
