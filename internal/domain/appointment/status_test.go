package appointment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/SalaoVivo/salon-scheduler/internal/httperr"
	"github.com/SalaoVivo/salon-scheduler/internal/models"
)

func TestCanComplete(t *testing.T) {
	require.NoError(t, CanComplete(StatusScheduled))
	require.NoError(t, CanComplete(StatusConfirmed))
	require.NoError(t, CanComplete(StatusInProgress))

	// Dupla liquidação tem código próprio; cancelado é só estado inválido.
	err := CanComplete(StatusCompleted)
	require.True(t, httperr.IsBusiness(err, httperr.CodeAlreadyCompleted))

	err = CanComplete(StatusCancelled)
	require.True(t, httperr.IsBusiness(err, httperr.CodeInvalidState))
}

func TestCanCancel(t *testing.T) {
	require.NoError(t, CanCancel(StatusScheduled))
	require.NoError(t, CanCancel(StatusInProgress))

	require.Error(t, CanCancel(StatusCompleted))
	require.Error(t, CanCancel(StatusCancelled))
}

func TestCancelSetsTerminalState(t *testing.T) {
	now := time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)
	ap := &models.Appointment{Status: string(StatusConfirmed)}

	require.NoError(t, Cancel(ap, now))
	require.Equal(t, string(StatusCancelled), ap.Status)
	require.NotNil(t, ap.CancelledAt)
	require.True(t, ap.CancelledAt.Equal(now))

	// Cancelar duas vezes não passa.
	require.Error(t, Cancel(ap, now))
}

func TestTotalPriceFallsBackToServiceSum(t *testing.T) {
	ap := &models.Appointment{
		Services: []models.Service{
			{Price: 30},
			{Price: 45.5},
		},
	}

	require.Equal(t, 75.5, TotalPrice(ap))

	ap.TotalPrice = 70 // snapshot congelado vence
	require.Equal(t, 70.0, TotalPrice(ap))
}

func TestServiceIDs(t *testing.T) {
	ap := &models.Appointment{
		Services: []models.Service{{ID: 4}, {ID: 9}},
	}

	require.Equal(t, []uint{4, 9}, ServiceIDs(ap))
}
