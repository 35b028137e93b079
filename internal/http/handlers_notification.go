package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"budgety/internal/core"
)

type notificationResponse struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	ActorID   string    `json:"actorId,omitempty"`
	ExpenseID string    `json:"expenseId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func (s *Server) handleListNotifications(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 || limit > 200 {
		badRequest(c, "invalid limit")
		return
	}

	notifications, err := s.store.ListNotifications(c.Request.Context(), c.GetString(ctxFamilyID), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]notificationResponse, 0, len(notifications))
	for _, n := range notifications {
		out = append(out, toNotificationResponse(n))
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}

func toNotificationResponse(n core.Notification) notificationResponse {
	return notificationResponse{
		ID:        n.ID,
		Type:      n.Type,
		Message:   n.Message,
		ActorID:   n.ActorID,
		ExpenseID: n.ExpenseID,
		CreatedAt: n.CreatedAt,
	}
}
