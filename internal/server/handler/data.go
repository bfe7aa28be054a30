// Package handler contains the gin handlers for the NotiApp HTTP API.
package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/notiapp/notiapp/internal/logging"
	"github.com/notiapp/notiapp/internal/server/models"
	"github.com/notiapp/notiapp/internal/server/storage"
)

// Per-item sync statuses. "already_exists" is not an error: it is the dedup
// outcome for a note whose earlier save response was lost, and clients treat
// it exactly like "synced".
const (
	StatusSynced        = "synced"
	StatusAlreadyExists = "already_exists"
	StatusInvalid       = "invalid"
)

type noteInput struct {
	ClientId  string `json:"clientId"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}

type DataHandler struct {
	Store storage.Storage
	Log   logging.Logger
}

// Save handles POST /api/data/save: a single-note upsert keyed by clientId.
// Re-delivery of a clientId overwrites the document, so the endpoint is
// idempotent from the client's point of view.
func (h *DataHandler) Save(c *gin.Context) {
	var in noteInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
		return
	}
	if in.ClientId == "" || in.Text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "clientId and text are required"})
		return
	}

	if _, err := h.Store.UpsertNote(c.Request.Context(), toNote(in)); err != nil {
		h.Log.Error(c.Request.Context(), "note upsert failed", "clientId", in.ClientId, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "storage failure"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "id": in.ClientId})
}

// Sync handles POST /api/data/sync: a batch upsert that reports a per-item
// dedup status. A partially invalid batch still processes the valid items.
func (h *DataHandler) Sync(c *gin.Context) {
	var in struct {
		Items []noteInput `json:"items"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
		return
	}

	results := make([]gin.H, 0, len(in.Items))
	synced := 0
	for _, item := range in.Items {
		if item.ClientId == "" || item.Text == "" {
			results = append(results, gin.H{"clientId": item.ClientId, "status": StatusInvalid})
			continue
		}

		created, err := h.Store.UpsertNote(c.Request.Context(), toNote(item))
		if err != nil {
			h.Log.Error(c.Request.Context(), "batch upsert failed", "clientId", item.ClientId, "err", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "storage failure"})
			return
		}

		status := StatusSynced
		if !created {
			status = StatusAlreadyExists
		}
		results = append(results, gin.H{"clientId": item.ClientId, "status": status})
		synced++
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "synced": synced, "results": results})
}

// List handles GET /api/data/list.
func (h *DataHandler) List(c *gin.Context) {
	notes, err := h.Store.ListNotes(c.Request.Context())
	if err != nil {
		h.Log.Error(c.Request.Context(), "note listing failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "storage failure"})
		return
	}
	if notes == nil {
		notes = []models.Note{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "items": notes, "count": len(notes)})
}

func toNote(in noteInput) *models.Note {
	ts := in.Timestamp
	if ts == 0 {
		ts = time.Now().UnixMilli()
	}
	return &models.Note{
		ClientId:  in.ClientId,
		Text:      in.Text,
		Timestamp: ts,
		SavedAt:   time.Now().UTC(),
	}
}
