package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SalaoVivo/salon-scheduler/internal/httperr"
	"github.com/SalaoVivo/salon-scheduler/internal/middleware"
	usecase "github.com/SalaoVivo/salon-scheduler/internal/usecase/appointment"
)

// ======================================================
// HANDLER
// ======================================================

type AppointmentHandler struct {
	createUC      *usecase.CreatePrivateAppointment
	listByDateUC  *usecase.ListAppointmentsByDate
	listByMonthUC *usecase.ListAppointmentsByMonth
	cancelUC      *usecase.CancelAppointment
	settleUC      *usecase.SettleAppointment
}

func NewAppointmentHandler(
	createUC *usecase.CreatePrivateAppointment,
	listByDateUC *usecase.ListAppointmentsByDate,
	listByMonthUC *usecase.ListAppointmentsByMonth,
	cancelUC *usecase.CancelAppointment,
	settleUC *usecase.SettleAppointment,
) *AppointmentHandler {
	return &AppointmentHandler{
		createUC:      createUC,
		listByDateUC:  listByDateUC,
		listByMonthUC: listByMonthUC,
		cancelUC:      cancelUC,
		settleUC:      settleUC,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateAppointmentRequest struct {
	ProfessionalID uint   `json:"professional_id" binding:"required"`
	ClientName     string `json:"client_name" binding:"required"`
	ClientPhone    string `json:"client_phone" binding:"required"`
	ClientEmail    string `json:"client_email"`
	ServiceIDs     []uint `json:"service_ids" binding:"required,min=1"`
	Date           string `json:"date" binding:"required"` // YYYY-MM-DD
	Time           string `json:"time" binding:"required"` // HH:MM
	Notes          string `json:"notes"`
}

// Aceita CASH/PIX/CARD/PREPAID em qualquer caixa; o use case normaliza
// e valida.
type CompleteAppointmentRequest struct {
	PaymentMethod string `json:"payment_method" binding:"required"`
}

// ======================================================
// CREATE
// ======================================================

func (h *AppointmentHandler) Create(c *gin.Context) {
	salonID := c.MustGet(middleware.ContextSalonID).(uint)
	userID := c.MustGet(middleware.ContextUserID).(uint)

	var req CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	ap, err := h.createUC.Execute(c.Request.Context(), usecase.CreatePrivateAppointmentInput{
		SalonID:        salonID,
		UserID:         userID,
		ProfessionalID: req.ProfessionalID,
		ClientName:     req.ClientName,
		ClientPhone:    req.ClientPhone,
		ClientEmail:    req.ClientEmail,
		ServiceIDs:     req.ServiceIDs,
		Date:           req.Date,
		Time:           req.Time,
		Notes:          req.Notes,
	})
	if err != nil {
		mapCreateErrors(c, err)
		return
	}

	c.JSON(http.StatusCreated, ap)
}

// ======================================================
// LIST
// ======================================================

func (h *AppointmentHandler) ListByDate(c *gin.Context) {
	salonID := c.MustGet(middleware.ContextSalonID).(uint)

	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "Data inválida. Use YYYY-MM-DD.")
		return
	}

	out, err := h.listByDateUC.Execute(c.Request.Context(), salonID, date)
	if err != nil {
		httperr.Internal(c, "failed_to_list_appointments", "Erro ao listar agendamentos.")
		return
	}

	c.JSON(http.StatusOK, out)
}

func (h *AppointmentHandler) ListByMonth(c *gin.Context) {
	salonID := c.MustGet(middleware.ContextSalonID).(uint)

	year, err1 := strconv.Atoi(c.Query("year"))
	month, err2 := strconv.Atoi(c.Query("month"))
	if err1 != nil || err2 != nil || month < 1 || month > 12 {
		httperr.BadRequest(c, "invalid_month", "Ano/mês inválidos.")
		return
	}

	out, err := h.listByMonthUC.Execute(c.Request.Context(), salonID, year, month)
	if err != nil {
		httperr.Internal(c, "failed_to_list_appointments", "Erro ao listar agendamentos.")
		return
	}

	c.JSON(http.StatusOK, out)
}

// ======================================================
// CANCEL
// ======================================================

func (h *AppointmentHandler) Cancel(c *gin.Context) {
	salonID := c.MustGet(middleware.ContextSalonID).(uint)
	userID := c.MustGet(middleware.ContextUserID).(uint)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Identificador inválido.")
		return
	}

	ap, err := h.cancelUC.Execute(c.Request.Context(), salonID, userID, uint(id))
	if err != nil {
		mapSettleErrors(c, err)
		return
	}

	c.JSON(http.StatusOK, ap)
}

// ======================================================
// COMPLETE
// ======================================================

func (h *AppointmentHandler) Complete(c *gin.Context) {
	salonID := c.MustGet(middleware.ContextSalonID).(uint)
	userID := c.MustGet(middleware.ContextUserID).(uint)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Identificador inválido.")
		return
	}

	var req CompleteAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_payment_method", "Forma de pagamento inválida.")
		return
	}

	ap, err := h.settleUC.Execute(c.Request.Context(), usecase.SettleInput{
		SalonID:       salonID,
		UserID:        userID,
		AppointmentID: uint(id),
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		mapSettleErrors(c, err)
		return
	}

	c.JSON(http.StatusOK, ap)
}

// ======================================================
// ERROR MAPPING
// ======================================================

var createErrorMessages = map[string]string{
	"invalid_date_or_time":  "Data ou horário inválidos.",
	"too_soon":              "O agendamento precisa de mais antecedência.",
	"service_not_found":     "Serviço não encontrado.",
	"outside_working_hours": "Horário fora do expediente do profissional.",
	"time_conflict":         "Já existe um agendamento nesse horário.",
}

func mapCreateErrors(c *gin.Context, err error) {
	if be, ok := httperr.AsBusiness(err); ok {
		msg := createErrorMessages[be.Code]
		if msg == "" {
			msg = "Não foi possível criar o agendamento."
		}
		if be.Code == "time_conflict" {
			httperr.Conflict(c, be.Code, msg)
			return
		}
		httperr.BadRequest(c, be.Code, msg)
		return
	}

	httperr.Internal(c, "failed_to_create_appointment", "Erro ao criar agendamento.")
}

var settleErrorMessages = map[string]string{
	httperr.CodeAppointmentNotFound:   "Agendamento não encontrado.",
	httperr.CodeAlreadyCompleted:      "Agendamento já liquidado.",
	httperr.CodeInvalidState:          "Agendamento não está em estado válido para a operação.",
	httperr.CodeNoEligibleEntitlement: "Nenhuma assinatura ou pacote elegível.",
	httperr.CodeInsufficientBalance:   "Saldo de créditos insuficiente.",
	"invalid_payment_method":          "Forma de pagamento inválida.",
}

func mapSettleErrors(c *gin.Context, err error) {
	if be, ok := httperr.AsBusiness(err); ok {
		msg := settleErrorMessages[be.Code]
		if msg == "" {
			msg = "Operação não permitida."
		}

		switch be.Code {
		case httperr.CodeAppointmentNotFound:
			httperr.NotFound(c, be.Code, msg)
		case httperr.CodeAlreadyCompleted:
			httperr.Conflict(c, be.Code, msg)
		default:
			httperr.BadRequest(c, be.Code, msg)
		}
		return
	}

	httperr.Internal(c, "settlement_failed", "Erro ao processar a operação.")
}
