package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/SalaoVivo/salon-scheduler/internal/httperr"
	"github.com/SalaoVivo/salon-scheduler/internal/middleware"
	"github.com/SalaoVivo/salon-scheduler/internal/models"
)

// ======================================================
// HANDLER
// ======================================================

type FinancialHandler struct {
	db *gorm.DB
}

func NewFinancialHandler(db *gorm.DB) *FinancialHandler {
	return &FinancialHandler{db: db}
}

// List devolve os lançamentos do período com o total por tipo. O extrato
// é append-only: nada aqui altera registro.
func (h *FinancialHandler) List(c *gin.Context) {
	salonID := c.MustGet(middleware.ContextSalonID).(uint)

	fromStr := c.Query("from")
	toStr := c.Query("to")

	q := h.db.
		Model(&models.FinancialRecord{}).
		Where("salon_id = ?", salonID)

	if fromStr != "" {
		from, err := time.Parse("2006-01-02", fromStr)
		if err != nil {
			httperr.BadRequest(c, "invalid_period", "Data inicial inválida.")
			return
		}
		q = q.Where("date >= ?", from)
	}

	if toStr != "" {
		to, err := time.Parse("2006-01-02", toStr)
		if err != nil {
			httperr.BadRequest(c, "invalid_period", "Data final inválida.")
			return
		}
		q = q.Where("date < ?", to.Add(24*time.Hour))
	}

	var records []models.FinancialRecord
	if err := q.Order("date DESC, id DESC").Find(&records).Error; err != nil {
		httperr.Internal(c, "failed_to_list_records", "Erro ao listar lançamentos.")
		return
	}

	var totalIncome, totalExpense float64
	for _, r := range records {
		switch r.Type {
		case models.FinancialRecordIncome:
			totalIncome += r.Amount
		case models.FinancialRecordExpense:
			totalExpense += r.Amount
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"total_income":  totalIncome,
		"total_expense": totalExpense,
		"records":       records,
	})
}
