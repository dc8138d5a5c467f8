package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/SalaoVivo/salon-scheduler/internal/httpresp"
	"github.com/SalaoVivo/salon-scheduler/internal/middleware"
	"github.com/SalaoVivo/salon-scheduler/internal/models"
)

type ProfessionalHandler struct {
	db *gorm.DB
}

func NewProfessionalHandler(db *gorm.DB) *ProfessionalHandler {
	return &ProfessionalHandler{db: db}
}

// --------- Requests ---------

type CreateProfessionalRequest struct {
	Name  string `json:"name" binding:"required"`
	Phone string `json:"phone"`

	DefaultCommissionPercentage float64 `json:"default_commission_percentage" binding:"min=0,max=1"`

	SubscriptionCommissionType  string  `json:"subscription_commission_type" binding:"omitempty,oneof=fixed percentage"`
	SubscriptionCommissionValue float64 `json:"subscription_commission_value"`
}

type UpdateProfessionalRequest struct {
	Name  *string `json:"name,omitempty"`
	Phone *string `json:"phone,omitempty"`

	DefaultCommissionPercentage *float64 `json:"default_commission_percentage,omitempty"`

	SubscriptionCommissionType  *string  `json:"subscription_commission_type,omitempty"`
	SubscriptionCommissionValue *float64 `json:"subscription_commission_value,omitempty"`

	Active *bool `json:"active,omitempty"`
}

// --------- Handlers ---------

func (h *ProfessionalHandler) List(c *gin.Context) {
	salonID := c.MustGet(middleware.ContextSalonID).(uint)

	var pros []models.Professional
	if err := h.db.
		Where("salon_id = ?", salonID).
		Order("id ASC").
		Find(&pros).Error; err != nil {

		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_list_professionals"})
		return
	}

	httpresp.List(c, pros)
}

func (h *ProfessionalHandler) Create(c *gin.Context) {
	salonID := c.MustGet(middleware.ContextSalonID).(uint)

	var req CreateProfessionalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	pro := models.Professional{
		SalonID:                     salonID,
		Name:                        req.Name,
		Phone:                       req.Phone,
		DefaultCommissionPercentage: req.DefaultCommissionPercentage,
		SubscriptionCommissionType:  req.SubscriptionCommissionType,
		SubscriptionCommissionValue: req.SubscriptionCommissionValue,
		Active:                      true,
	}

	if err := h.db.Create(&pro).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_create_professional"})
		return
	}

	c.JSON(http.StatusCreated, pro)
}

func (h *ProfessionalHandler) Update(c *gin.Context) {
	salonID := c.MustGet(middleware.ContextSalonID).(uint)
	id := c.Param("id")

	var pro models.Professional
	if err := h.db.
		Where("id = ? AND salon_id = ?", id, salonID).
		First(&pro).Error; err != nil {

		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "professional_not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_get_professional"})
		return
	}

	var req UpdateProfessionalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	if req.Name != nil {
		pro.Name = *req.Name
	}
	if req.Phone != nil {
		pro.Phone = *req.Phone
	}
	if req.DefaultCommissionPercentage != nil {
		pro.DefaultCommissionPercentage = *req.DefaultCommissionPercentage
	}
	if req.SubscriptionCommissionType != nil {
		pro.SubscriptionCommissionType = *req.SubscriptionCommissionType
	}
	if req.SubscriptionCommissionValue != nil {
		pro.SubscriptionCommissionValue = *req.SubscriptionCommissionValue
	}
	if req.Active != nil {
		pro.Active = *req.Active
	}

	if err := h.db.Save(&pro).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_update_professional"})
		return
	}

	c.JSON(http.StatusOK, pro)
}
