package settlement

import "math"

// CommissionConfig é o recorte da configuração do profissional usado
// no cálculo, congelado no momento da liquidação.
type CommissionConfig struct {
	// Fração (0.4 = 40%).
	DefaultPercentage float64

	// Override aplicado apenas a liquidações por assinatura.
	// "fixed" ou "percentage"; vazio = sem override.
	SubscriptionType  string
	SubscriptionValue float64
}

// Calculate retorna a comissão do profissional para um atendimento.
// Função pura e total: mesmo input, mesmo output.
//
// Assinatura com override: fixed → valor do override; percentage →
// totalPrice * valor/100. Qualquer outro caso (pacote, assinatura sem
// override, pagamento direto) usa o percentual padrão; percentual zero
// significa comissão não registrada (nil).
//
// Pacote nunca tem override próprio — assimetria intencional com o
// caminho de assinatura.
func Calculate(totalPrice float64, source Source, cfg CommissionConfig) *float64 {
	if source == SourceSubscription && cfg.SubscriptionType != "" {
		switch cfg.SubscriptionType {
		case "fixed":
			v := Round2(cfg.SubscriptionValue)
			return &v
		case "percentage":
			v := Round2(totalPrice * cfg.SubscriptionValue / 100)
			return &v
		}
	}

	if cfg.DefaultPercentage > 0 {
		v := Round2(totalPrice * cfg.DefaultPercentage)
		return &v
	}

	return nil
}

// Round2 arredonda para 2 casas decimais (meio para longe do zero).
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
