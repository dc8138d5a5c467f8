package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SettlementsTotal conta liquidações por origem (none/subscription/package).
	SettlementsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "salon_settlements_total",
			Help: "Appointments settled, by payment source.",
		},
		[]string{"source"},
	)

	SettlementErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "salon_settlement_errors_total",
			Help: "Settlement attempts rejected, by business error code.",
		},
		[]string{"code"},
	)

	RevenueRecordedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "salon_revenue_recorded_total",
			Help: "Sum of income amounts recognized at settlement.",
		},
	)
)
