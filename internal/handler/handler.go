// Package handler expõe o atendimento por HTTP.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"atendente/internal/messagelog"
	"atendente/internal/service"
)

const requestIDHeader = "X-Request-ID"

// MessageProcessor responde a uma mensagem de texto.
type MessageProcessor interface {
	ProcessMessage(ctx context.Context, message string) service.Reply
}

// Sender envia a resposta de volta pelo WhatsApp.
type Sender interface {
	SendMessage(ctx context.Context, number, message string) error
}

type Handler struct {
	messages MessageProcessor
	sink     messagelog.Sink
	sender   Sender
	logger   *zap.Logger
}

// New cria o handler. sender pode ser nil; nesse caso /webhook não é registrado.
func New(messages MessageProcessor, sink messagelog.Sink, sender Sender, logger *zap.Logger) *Handler {
	return &Handler{
		messages: messages,
		sink:     sink,
		sender:   sender,
		logger:   logger.Named("http"),
	}
}

// Router monta as rotas.
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), h.requestID, h.accessLog)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.POST("/chat", h.Chat)
		api.POST("/leave-message", h.LeaveMessage)
	}

	if h.sender != nil {
		r.POST("/webhook", h.Webhook)
	}
	return r
}

type chatRequest struct {
	Message string `json:"message" binding:"required"`
}

// Chat responde a uma mensagem do cliente web.
func (h *Handler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "campo 'message' é obrigatório"})
		return
	}

	reply := h.messages.ProcessMessage(c.Request.Context(), req.Message)
	c.JSON(http.StatusOK, reply)
}

type leaveMessageRequest struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
	Message string `json:"message" binding:"required"`
}

// LeaveMessage registra um recado do cliente.
func (h *Handler) LeaveMessage(c *gin.Context) {
	var req leaveMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "campo 'message' é obrigatório"})
		return
	}

	msg := messagelog.NewLeftMessage(req.Name, req.Contact, req.Message)
	if err := h.sink.Append(c.Request.Context(), msg); err != nil {
		requestLogger(c, h.logger).Error("erro ao registrar recado", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "não foi possível registrar sua mensagem"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": msg.ID})
}

func (h *Handler) requestID(c *gin.Context) {
	id := c.GetHeader(requestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	c.Set(requestIDHeader, id)
	c.Header(requestIDHeader, id)
	c.Next()
}

func (h *Handler) accessLog(c *gin.Context) {
	start := time.Now()
	c.Next()
	requestLogger(c, h.logger).Info("requisição",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", c.Writer.Status()),
		zap.Duration("latency", time.Since(start)),
	)
}

func requestLogger(c *gin.Context, logger *zap.Logger) *zap.Logger {
	return logger.With(zap.String("request_id", c.GetString(requestIDHeader)))
}
