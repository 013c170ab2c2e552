package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"alerthub/internal/channel"
	"alerthub/internal/models"
	"alerthub/internal/repository"
	"alerthub/internal/service"
)

type Handler struct {
	alerts    *service.AlertService
	analytics *service.AnalyticsService
	inbox     *channel.InAppChannel
}

func NewHandler(alerts *service.AlertService, analytics *service.AnalyticsService, inbox *channel.InAppChannel) *Handler {
	return &Handler{
		alerts:    alerts,
		analytics: analytics,
		inbox:     inbox,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	admin := r.Group("/api/admin")
	admin.POST("/alerts", h.createAlert)
	admin.PUT("/alerts/:id", h.updateAlert)
	admin.GET("/alerts", h.listAlerts)

	users := r.Group("/api/users/:id")
	users.GET("/alerts", h.listUserAlerts)
	users.POST("/alerts/:alertID/read", h.markRead)
	users.POST("/alerts/:alertID/snooze", h.snooze)
	users.GET("/notifications", h.listNotifications)
	users.POST("/notifications/:notificationID/read", h.markNotificationRead)

	r.GET("/api/analytics/system", h.systemAnalytics)
	r.GET("/api/analytics/alerts/:id", h.alertAnalytics)

	r.GET("/api/health", h.health)
}

func respond(c *gin.Context, code int, message string, data any) {
	c.JSON(code, gin.H{
		"status":    "success",
		"message":   message,
		"data":      data,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func respondError(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{
		"status":    "error",
		"message":   message,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (h *Handler) createAlert(c *gin.Context) {
	var in service.CreateAlertInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	alert, delivery, err := h.alerts.CreateAlert(c.Request.Context(), in)
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			respondError(c, http.StatusBadRequest, verr.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "failed to create alert")
		return
	}

	if delivery == nil {
		respond(c, http.StatusCreated, "Alert created but no target users found", gin.H{
			"alert": alert,
		})
		return
	}
	respond(c, http.StatusCreated, "Alert created and sent successfully", gin.H{
		"alert":            alert,
		"initial_delivery": delivery,
	})
}

func (h *Handler) updateAlert(c *gin.Context) {
	var in service.UpdateAlertInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	alert, err := h.alerts.UpdateAlert(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to update alert")
		return
	}
	if alert == nil {
		respondError(c, http.StatusNotFound, "alert not found")
		return
	}
	respond(c, http.StatusOK, "Alert updated", alert)
}

func (h *Handler) listAlerts(c *gin.Context) {
	filter := repository.AlertFilter{}
	if s := c.Query("severity"); s != "" {
		sev := models.Severity(s)
		filter.Severity = &sev
	}
	if s := c.Query("status"); s != "" {
		st := models.AlertStatus(s)
		filter.Status = &st
	}
	if s := c.Query("visibility_type"); s != "" {
		vt := models.VisibilityType(s)
		filter.VisibilityType = &vt
	}

	alerts, err := h.alerts.ListAlerts(c.Request.Context(), filter)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to list alerts")
		return
	}
	if alerts == nil {
		alerts = []models.Alert{}
	}
	respond(c, http.StatusOK, "Success", alerts)
}

func (h *Handler) listUserAlerts(c *gin.Context) {
	alerts, err := h.alerts.ListUserAlerts(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to list user alerts")
		return
	}
	respond(c, http.StatusOK, "Success", alerts)
}

func (h *Handler) markRead(c *gin.Context) {
	if err := h.alerts.MarkRead(c.Request.Context(), c.Param("id"), c.Param("alertID")); err != nil {
		respondError(c, http.StatusInternalServerError, "failed to mark alert read")
		return
	}
	respond(c, http.StatusOK, "Alert marked read", nil)
}

func (h *Handler) snooze(c *gin.Context) {
	if err := h.alerts.Snooze(c.Request.Context(), c.Param("id"), c.Param("alertID")); err != nil {
		respondError(c, http.StatusInternalServerError, "failed to snooze alert")
		return
	}
	respond(c, http.StatusOK, "Alert snoozed until tomorrow", nil)
}

func (h *Handler) listNotifications(c *gin.Context) {
	respond(c, http.StatusOK, "Success", h.inbox.Notifications(c.Param("id")))
}

func (h *Handler) markNotificationRead(c *gin.Context) {
	if !h.inbox.MarkNotificationRead(c.Param("notificationID")) {
		respondError(c, http.StatusNotFound, "notification not found")
		return
	}
	respond(c, http.StatusOK, "Notification marked read", nil)
}

func (h *Handler) systemAnalytics(c *gin.Context) {
	metrics, err := h.analytics.SystemMetrics(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to compute analytics")
		return
	}
	respond(c, http.StatusOK, "Success", metrics)
}

func (h *Handler) alertAnalytics(c *gin.Context) {
	metrics, err := h.analytics.AlertMetrics(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to compute analytics")
		return
	}
	respond(c, http.StatusOK, "Success", metrics)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"services": gin.H{
			"database":             "active",
			"notification_service": "active",
		},
	})
}
