package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type WebhookPayload struct {
	Event     string `json:"event"`
	SessionID string `json:"sessionId"`
	Timestamp int64  `json:"timestamp"`
	Data      struct {
		Messages struct {
			Key struct {
				RemoteJid string `json:"remoteJid"`
				FromMe    bool   `json:"fromMe"`
				ID        string `json:"id"`
			} `json:"key"`
			MessageTimestamp int64  `json:"messageTimestamp"`
			PushName         string `json:"pushName"`
			Broadcast        bool   `json:"broadcast"`
			Message          struct {
				Conversation       string `json:"conversation"`
				MessageContextInfo any    `json:"messageContextInfo"`
			} `json:"message"`
			RemoteJid string `json:"remoteJid"`
			ID        string `json:"id"`
		} `json:"messages"`
	} `json:"data"`
}

// Webhook recebe mensagens do WhatsApp (WaSenderAPI) e responde pelo mesmo canal.
func (h *Handler) Webhook(c *gin.Context) {
	var payload WebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "erro ao decodificar a mensagem"})
		return
	}

	msg := payload.Data.Messages
	text := msg.Message.Conversation
	if msg.Key.FromMe || strings.TrimSpace(text) == "" {
		c.Status(http.StatusOK)
		return
	}

	number := strings.Replace(msg.Key.RemoteJid, "@s.whatsapp.net", "", 1)
	logger := requestLogger(c, h.logger)
	logger.Info("mensagem do WhatsApp recebida", zap.String("number", number), zap.String("name", msg.PushName))

	reply := h.messages.ProcessMessage(c.Request.Context(), text)
	if err := h.sender.SendMessage(c.Request.Context(), number, reply.Text); err != nil {
		logger.Error("erro ao enviar resposta pelo WhatsApp", zap.String("number", number), zap.Error(err))
	}
	c.Status(http.StatusOK)
}
