package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/SalaoVivo/salon-scheduler/internal/httperr"
	"github.com/SalaoVivo/salon-scheduler/internal/httpresp"
	"github.com/SalaoVivo/salon-scheduler/internal/middleware"
	"github.com/SalaoVivo/salon-scheduler/internal/models"
	"github.com/SalaoVivo/salon-scheduler/internal/timezone"
)

// ======================================================
// HANDLER
// ======================================================

// EntitlementHandler provisiona assinaturas e pacotes. A venda em si
// (cobrança) acontece fora daqui; este handler só registra o direito.
type EntitlementHandler struct {
	db *gorm.DB
}

func NewEntitlementHandler(db *gorm.DB) *EntitlementHandler {
	return &EntitlementHandler{db: db}
}

// ======================================================
// REQUESTS
// ======================================================

type CreatePlanRequest struct {
	Name       string  `json:"name" binding:"required"`
	Price      float64 `json:"price"`
	ServiceIDs []uint  `json:"service_ids" binding:"required,min=1"`
}

type CreateClientSubscriptionRequest struct {
	ClientID  uint   `json:"client_id" binding:"required"`
	PlanID    uint   `json:"plan_id" binding:"required"`
	StartDate string `json:"start_date" binding:"required"` // YYYY-MM-DD
	EndDate   string `json:"end_date" binding:"required"`   // YYYY-MM-DD
}

type CreateClientPackageRequest struct {
	ClientID     uint    `json:"client_id" binding:"required"`
	Name         string  `json:"name"`
	ServiceIDs   []uint  `json:"service_ids" binding:"required,min=1"`
	CreditsTotal int     `json:"credits_total" binding:"required,min=1"`
	ExpiresAt    *string `json:"expires_at"` // YYYY-MM-DD, nulo = sem vencimento
}

// ======================================================
// PLANS
// ======================================================

func (h *EntitlementHandler) ListPlans(c *gin.Context) {
	salonID := c.MustGet(middleware.ContextSalonID).(uint)

	var plans []models.SubscriptionPlan
	if err := h.db.
		Preload("Services").
		Where("salon_id = ?", salonID).
		Order("id ASC").
		Find(&plans).Error; err != nil {

		httperr.Internal(c, "failed_to_list_plans", "Erro ao listar planos.")
		return
	}

	httpresp.OK(c, plans)
}

func (h *EntitlementHandler) CreatePlan(c *gin.Context) {
	salonID := c.MustGet(middleware.ContextSalonID).(uint)

	var req CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	services, ok := h.loadServices(c, salonID, req.ServiceIDs)
	if !ok {
		return
	}

	plan := models.SubscriptionPlan{
		SalonID:  salonID,
		Name:     req.Name,
		Price:    req.Price,
		IsActive: true,
		Services: services,
	}

	if err := h.db.Create(&plan).Error; err != nil {
		httperr.Internal(c, "failed_to_create_plan", "Erro ao criar plano.")
		return
	}

	httpresp.Created(c, plan)
}

// ======================================================
// CLIENT SUBSCRIPTIONS
// ======================================================

func (h *EntitlementHandler) CreateClientSubscription(c *gin.Context) {
	salonID := c.MustGet(middleware.ContextSalonID).(uint)

	var req CreateClientSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	var plan models.SubscriptionPlan
	if err := h.db.
		Where("id = ? AND salon_id = ?", req.PlanID, salonID).
		First(&plan).Error; err != nil {
		httperr.BadRequest(c, "plan_not_found", "Plano não encontrado.")
		return
	}

	client, ok := h.loadClient(c, salonID, req.ClientID)
	if !ok {
		return
	}

	start, err1 := time.Parse("2006-01-02", req.StartDate)
	end, err2 := time.Parse("2006-01-02", req.EndDate)
	if err1 != nil || err2 != nil || end.Before(start) {
		httperr.BadRequest(c, "invalid_period", "Período de vigência inválido.")
		return
	}

	sub := models.ClientSubscription{
		ClientID:  client.ID,
		PlanID:    plan.ID,
		Status:    models.SubscriptionStatusActive,
		StartDate: start,
		EndDate:   end.Add(24*time.Hour - time.Second),
	}

	if err := h.db.Create(&sub).Error; err != nil {
		httperr.Internal(c, "failed_to_create_subscription", "Erro ao registrar assinatura.")
		return
	}

	httpresp.Created(c, sub)
}

// ======================================================
// CLIENT PACKAGES
// ======================================================

func (h *EntitlementHandler) CreateClientPackage(c *gin.Context) {
	salonID := c.MustGet(middleware.ContextSalonID).(uint)

	var req CreateClientPackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	client, ok := h.loadClient(c, salonID, req.ClientID)
	if !ok {
		return
	}

	services, ok := h.loadServices(c, salonID, req.ServiceIDs)
	if !ok {
		return
	}

	var expiresAt *time.Time
	if req.ExpiresAt != nil && *req.ExpiresAt != "" {
		t, err := time.Parse("2006-01-02", *req.ExpiresAt)
		if err != nil {
			httperr.BadRequest(c, "invalid_expiration", "Vencimento inválido.")
			return
		}
		exp := t.Add(24*time.Hour - time.Second)
		expiresAt = &exp
	}

	pkg := models.ClientPackage{
		SalonID:      salonID,
		ClientID:     client.ID,
		Name:         req.Name,
		PurchasedAt:  timezone.Now(),
		ExpiresAt:    expiresAt,
		CreditsTotal: req.CreditsTotal,
		Services:     services, // snapshot do combo, congelado aqui
	}

	if err := h.db.Create(&pkg).Error; err != nil {
		httperr.Internal(c, "failed_to_create_package", "Erro ao registrar pacote.")
		return
	}

	httpresp.Created(c, pkg)
}

func (h *EntitlementHandler) ListClientEntitlements(c *gin.Context) {
	salonID := c.MustGet(middleware.ContextSalonID).(uint)

	client, ok := h.loadClient(c, salonID, 0)
	if !ok {
		return
	}

	var subs []models.ClientSubscription
	if err := h.db.
		Preload("Plan.Services").
		Where("client_id = ?", client.ID).
		Order("id ASC").
		Find(&subs).Error; err != nil {

		httperr.Internal(c, "failed_to_list_subscriptions", "Erro ao listar assinaturas.")
		return
	}

	var pkgs []models.ClientPackage
	if err := h.db.
		Preload("Services").
		Where("client_id = ?", client.ID).
		Order("id ASC").
		Find(&pkgs).Error; err != nil {

		httperr.Internal(c, "failed_to_list_packages", "Erro ao listar pacotes.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"subscriptions": subs,
		"packages":      pkgs,
	})
}

// ======================================================
// HELPERS
// ======================================================

// loadClient busca o cliente do tenant. clientID zero usa o parâmetro
// de rota :id.
func (h *EntitlementHandler) loadClient(c *gin.Context, salonID uint, clientID uint) (*models.Client, bool) {
	var client models.Client

	q := h.db.Where("salon_id = ?", salonID)
	if clientID > 0 {
		q = q.Where("id = ?", clientID)
	} else {
		q = q.Where("id = ?", c.Param("id"))
	}

	if err := q.First(&client).Error; err != nil {
		httperr.BadRequest(c, "client_not_found", "Cliente não encontrado.")
		return nil, false
	}

	return &client, true
}

func (h *EntitlementHandler) loadServices(c *gin.Context, salonID uint, serviceIDs []uint) ([]models.Service, bool) {
	var services []models.Service
	if err := h.db.
		Where("salon_id = ? AND id IN ?", salonID, serviceIDs).
		Find(&services).Error; err != nil || len(services) != len(serviceIDs) {

		httperr.BadRequest(c, "service_not_found", "Serviço não encontrado.")
		return nil, false
	}

	return services, true
}
