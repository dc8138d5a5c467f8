package appointment

import (
	"time"

	"github.com/SalaoVivo/salon-scheduler/internal/models"
)

// ===============================
// Domain Actions
// ===============================

func Cancel(ap *models.Appointment, now time.Time) error {
	if err := CanCancel(Status(ap.Status)); err != nil {
		return err
	}

	ap.Status = string(StatusCancelled)
	ap.CancelledAt = &now
	return nil
}

// ServiceIDs extrai o combo do atendimento.
func ServiceIDs(ap *models.Appointment) []uint {
	ids := make([]uint, 0, len(ap.Services))
	for _, s := range ap.Services {
		ids = append(ids, s.ID)
	}
	return ids
}

// TotalPrice usa o total congelado quando positivo; caso contrário
// recalcula somando os preços dos serviços (fallback defensivo para
// registros antigos sem snapshot).
func TotalPrice(ap *models.Appointment) float64 {
	if ap.TotalPrice > 0 {
		return ap.TotalPrice
	}

	var total float64
	for _, s := range ap.Services {
		total += s.Price
	}
	return total
}
