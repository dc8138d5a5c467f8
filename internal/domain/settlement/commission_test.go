package settlement

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCalculateFixedOverrideOnSubscription(t *testing.T) {
	cfg := CommissionConfig{
		DefaultPercentage: 0.4,
		SubscriptionType:  "fixed",
		SubscriptionValue: 10,
	}

	// Valor fixo independe do preço do atendimento.
	got := Calculate(55, SourceSubscription, cfg)
	require.NotNil(t, got)
	require.Equal(t, 10.0, *got)

	got = Calculate(300, SourceSubscription, cfg)
	require.NotNil(t, got)
	require.Equal(t, 10.0, *got)
}

func TestCalculatePercentageOverrideOnSubscription(t *testing.T) {
	cfg := CommissionConfig{
		DefaultPercentage: 0.4,
		SubscriptionType:  "percentage",
		SubscriptionValue: 15,
	}

	got := Calculate(200, SourceSubscription, cfg)
	require.NotNil(t, got)
	require.Equal(t, 30.0, *got)
}

func TestCalculateOverrideIgnoredOutsideSubscription(t *testing.T) {
	cfg := CommissionConfig{
		DefaultPercentage: 0.5,
		SubscriptionType:  "fixed",
		SubscriptionValue: 10,
	}

	// Pacote e pagamento direto caem no percentual padrão.
	got := Calculate(100, SourcePackage, cfg)
	require.NotNil(t, got)
	require.Equal(t, 50.0, *got)

	got = Calculate(100, SourceNone, cfg)
	require.NotNil(t, got)
	require.Equal(t, 50.0, *got)
}

func TestCalculateDefaultPercentage(t *testing.T) {
	cfg := CommissionConfig{DefaultPercentage: 0.4}

	got := Calculate(99.9, SourceSubscription, cfg)
	require.NotNil(t, got)
	require.Equal(t, 39.96, *got)
}

func TestCalculateNilWhenUnconfigured(t *testing.T) {
	require.Nil(t, Calculate(100, SourceNone, CommissionConfig{}))
	require.Nil(t, Calculate(100, SourcePackage, CommissionConfig{DefaultPercentage: 0}))
}

func TestRound2(t *testing.T) {
	require.Equal(t, 10.35, Round2(10.345000001))
	require.Equal(t, 10.0, Round2(9.999))
	require.Equal(t, 0.0, Round2(0))
}
