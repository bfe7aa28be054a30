package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/notiapp/notiapp/internal/common"
	"github.com/notiapp/notiapp/internal/logging"
	"github.com/notiapp/notiapp/internal/server/models"
	"github.com/notiapp/notiapp/internal/server/storage"
	"github.com/notiapp/notiapp/internal/server/webpush"
)

type PushHandler struct {
	Store  storage.Storage
	Sender *webpush.Sender
	Log    logging.Logger
}

// Subscribe handles POST /api/push/subscribe: upsert by endpoint, 201 on
// success. Re-subscribing an existing endpoint refreshes its user data.
func (h *PushHandler) Subscribe(c *gin.Context) {
	var in struct {
		Subscription struct {
			Endpoint string                  `json:"endpoint"`
			Keys     models.SubscriptionKeys `json:"keys"`
		} `json:"subscription"`
		UserData struct {
			UserName    string   `json:"userName"`
			Preferences []string `json:"preferences"`
		} `json:"userData"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
		return
	}
	if in.Subscription.Endpoint == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "endpoint is required"})
		return
	}

	sub := &models.Subscription{
		Endpoint:     in.Subscription.Endpoint,
		Keys:         in.Subscription.Keys,
		UserName:     in.UserData.UserName,
		Preferences:  in.UserData.Preferences,
		SubscribedAt: time.Now().UTC(),
	}
	if err := h.Store.SaveSubscription(c.Request.Context(), sub); err != nil {
		h.Log.Error(c.Request.Context(), "subscription save failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "storage failure"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true})
}

// Unsubscribe handles POST /api/push/unsubscribe. Unknown endpoints are not
// an error; the subscription is gone either way.
func (h *PushHandler) Unsubscribe(c *gin.Context) {
	var in struct {
		Endpoint string `json:"endpoint"`
	}
	if err := c.ShouldBindJSON(&in); err != nil || in.Endpoint == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "endpoint is required"})
		return
	}

	removed, err := h.Store.DeleteSubscription(c.Request.Context(), in.Endpoint)
	if err != nil {
		h.Log.Error(c.Request.Context(), "subscription delete failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "storage failure"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "removed": removed})
}

// Subscriptions handles GET /api/push/subscriptions.
func (h *PushHandler) Subscriptions(c *gin.Context) {
	subs, err := h.Store.ListSubscriptions(c.Request.Context())
	if err != nil {
		h.Log.Error(c.Request.Context(), "subscription listing failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "storage failure"})
		return
	}
	if subs == nil {
		subs = []models.Subscription{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "subscriptions": subs, "count": len(subs)})
}

// Send handles POST /api/push/send. A permanently dead endpoint (410 from
// the push service) is removed from storage and reported as 410 so the
// client drops its local record too.
func (h *PushHandler) Send(c *gin.Context) {
	var in struct {
		Endpoint     string          `json:"endpoint"`
		Notification webpush.Payload `json:"notification"`
	}
	if err := c.ShouldBindJSON(&in); err != nil || in.Endpoint == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "endpoint is required"})
		return
	}

	sub, err := h.Store.GetSubscription(c.Request.Context(), in.Endpoint)
	if errors.Is(err, common.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "unknown subscription"})
		return
	}
	if err != nil {
		h.Log.Error(c.Request.Context(), "subscription lookup failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "storage failure"})
		return
	}

	err = h.Sender.Send(c.Request.Context(), sub, &in.Notification)
	switch {
	case errors.Is(err, common.ErrSubscriptionExpired):
		if _, derr := h.Store.DeleteSubscription(c.Request.Context(), in.Endpoint); derr != nil {
			h.Log.Warn(c.Request.Context(), "failed to remove expired subscription", "err", derr)
		}
		h.Log.Info(c.Request.Context(), "expired subscription removed", "endpoint", in.Endpoint)
		c.JSON(http.StatusGone, gin.H{"success": false, "error": "subscription expired"})
	case err != nil:
		h.Log.Error(c.Request.Context(), "push delivery failed", "endpoint", in.Endpoint, "err", err)
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": "push delivery failed"})
	default:
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// VAPIDKey handles GET /api/push/vapid-key.
func (h *PushHandler) VAPIDKey(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"publicKey": h.Sender.PublicKey()})
}
