package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pulse-social/backend/internal/models"
	"github.com/pulse-social/backend/internal/notifications"
	"github.com/pulse-social/backend/internal/util"
)

// GetConversations lists the viewer's conversations
// GET /api/v1/conversations
func (h *Handlers) GetConversations(c *gin.Context) {
	viewerID, err := util.ViewerID(c)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}

	convs, err := h.messaging.ListByUser(c.Request.Context(), viewerID)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversations": convs})
}

// CreateConversation starts a conversation including the viewer
// POST /api/v1/conversations
func (h *Handlers) CreateConversation(c *gin.Context) {
	viewerID, err := util.ViewerID(c)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}

	var req struct {
		Participants []int64 `json:"participants" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	participants := append([]int64{viewerID}, req.Participants...)
	conv, err := h.messaging.CreateConversation(c.Request.Context(), participants)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, conv)
}

// GetConversation fetches one conversation the viewer belongs to
// GET /api/v1/conversations/:id
func (h *Handlers) GetConversation(c *gin.Context) {
	conv, viewerOK := h.conversationForViewer(c)
	if !viewerOK {
		return
	}
	c.JSON(http.StatusOK, conv)
}

// UpdateConversation renames a conversation the viewer belongs to
// PUT /api/v1/conversations/:id
func (h *Handlers) UpdateConversation(c *gin.Context) {
	conv, viewerOK := h.conversationForViewer(c)
	if !viewerOK {
		return
	}

	var req map[string]interface{}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	updated, err := h.messaging.UpdateConversation(c.Request.Context(), conv.ID, req)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteConversation removes a conversation the viewer belongs to
// DELETE /api/v1/conversations/:id
func (h *Handlers) DeleteConversation(c *gin.Context) {
	conv, viewerOK := h.conversationForViewer(c)
	if !viewerOK {
		return
	}

	if err := h.messaging.DeleteConversation(c.Request.Context(), conv.ID); err != nil {
		util.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// GetMessages lists a conversation's messages
// GET /api/v1/conversations/:id/messages
func (h *Handlers) GetMessages(c *gin.Context) {
	conv, viewerOK := h.conversationForViewer(c)
	if !viewerOK {
		return
	}
	page, pageSize := util.Pagination(c, defaultPageSize, maxPageSize)

	msgs, err := h.messaging.ListMessages(c.Request.Context(), conv.ID, page, pageSize)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs, "page": page, "pageSize": pageSize})
}

// SendMessage appends a message to a conversation
// POST /api/v1/conversations/:id/messages
func (h *Handlers) SendMessage(c *gin.Context) {
	id, err := util.IDParam(c, "id")
	if err != nil {
		util.RespondWithError(c, err)
		return
	}
	viewerID, err := util.ViewerID(c)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}

	var req struct {
		Content string `json:"content" binding:"required,min=1,max=4000"`
		Type    string `json:"type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	msg, err := h.messaging.Send(c.Request.Context(), id, viewerID, req.Content, req.Type)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}

	if conv, cerr := h.messaging.GetConversation(c.Request.Context(), id); cerr == nil {
		for _, participantID := range conv.Participants {
			if participantID == viewerID {
				continue
			}
			h.notify(c.Request.Context(), models.Notification{
				Type:           models.NotificationMessage,
				TargetID:       participantID,
				ActorID:        viewerID,
				ConversationID: id,
				Content:        notifications.ContentPreview(msg.Content),
			})
		}
	}

	c.JSON(http.StatusCreated, msg)
}

// MarkConversationRead marks the conversation read for the viewer
// PUT /api/v1/conversations/:id/read
func (h *Handlers) MarkConversationRead(c *gin.Context) {
	id, err := util.IDParam(c, "id")
	if err != nil {
		util.RespondWithError(c, err)
		return
	}
	viewerID, err := util.ViewerID(c)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}

	if err := h.messaging.MarkRead(c.Request.Context(), id, viewerID); err != nil {
		util.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"read": true})
}

// MarkMessageRead marks a single message read for the viewer
// PUT /api/v1/messages/:id/read
func (h *Handlers) MarkMessageRead(c *gin.Context) {
	id, err := util.IDParam(c, "id")
	if err != nil {
		util.RespondWithError(c, err)
		return
	}
	viewerID, err := util.ViewerID(c)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}

	if err := h.messaging.MarkMessageRead(c.Request.Context(), id, viewerID); err != nil {
		util.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"read": true})
}

// conversationForViewer loads :id and checks the viewer is a
// participant, responding on failure.
func (h *Handlers) conversationForViewer(c *gin.Context) (*models.Conversation, bool) {
	id, err := util.IDParam(c, "id")
	if err != nil {
		util.RespondWithError(c, err)
		return nil, false
	}
	viewerID, err := util.ViewerID(c)
	if err != nil {
		util.RespondWithError(c, err)
		return nil, false
	}

	conv, err := h.messaging.GetConversation(c.Request.Context(), id)
	if err != nil {
		util.RespondWithError(c, err)
		return nil, false
	}
	if !conv.Participants.Contains(viewerID) {
		util.RespondForbidden(c, "not a participant in this conversation")
		return nil, false
	}
	return conv, true
}
