package settlement

// Source identifica como um atendimento foi pago.
type Source string

const (
	// SourceNone: pagamento direto (cash/pix/card).
	SourceNone Source = ""
	// SourceSubscription: coberto por assinatura ativa.
	SourceSubscription Source = "subscription"
	// SourcePackage: consumiu um crédito de pacote.
	SourcePackage Source = "package"
)

// Decision é o resultado da resolução de entitlement: qual origem
// liquida o atendimento e, quando aplicável, qual instância consumir.
type Decision struct {
	Source Source

	// Preenchido quando Source == SourceSubscription.
	SubscriptionID uint
	PlanID         uint

	// Preenchido quando Source == SourcePackage.
	PackageID uint

	// CreditID > 0 indica o caminho legado por serviço: o débito ocorre
	// na linha de crédito específica, não no saldo do pacote.
	CreditID uint
}

// Prepaid informa se a decisão consome um direito pré-pago.
func (d Decision) Prepaid() bool {
	return d.Source != SourceNone
}
