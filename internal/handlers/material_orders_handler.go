package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/imrishuroy/go-material-orders/internal/events"
	"github.com/imrishuroy/go-material-orders/internal/idempotency"
	"github.com/imrishuroy/go-material-orders/internal/materialorders"
	"github.com/imrishuroy/go-material-orders/internal/validation"
)

// IdempotencyHeader lets clients retry POST / safely.
const IdempotencyHeader = "Idempotency-Key"

const (
	msgCreated         = "Material order created successfully"
	msgUpdated         = "Material order updated successfully"
	msgDeleted         = "Material order deleted successfully"
	msgOrderNotFound   = "Material order not found"
	msgRequestNotFound = "Material request not found"
	msgCreateFailed    = "Server error. Please try again later."
	msgServerError     = "Server error"
	msgInProgress      = "Request already in progress"

	jsonContentType = "application/json; charset=utf-8"
)

// IdempotencyStore remembers create requests by Idempotency-Key.
type IdempotencyStore interface {
	CreateIfNotExists(ctx context.Context, key string) (bool, error)
	Get(ctx context.Context, key string) (*idempotency.Record, error)
	Reclaim(ctx context.Context, key string) (bool, error)
	MarkDone(ctx context.Context, key, orderID, responseBody string, responseStatus int) error
	MarkFailed(ctx context.Context, key, note string) error
}

// EventPublisher announces successful changes.
type EventPublisher interface {
	Publish(ctx context.Context, ev events.Event) error
}

// HandlerConfig groups dependencies for the material order routes.
// Idempotency and Events are optional.
type HandlerConfig struct {
	Service     *materialorders.Service
	Idempotency IdempotencyStore
	Events      EventPublisher
	Logger      *zap.Logger
	BasePath    string
}

type materialOrderHandler struct {
	svc     *materialorders.Service
	idemp   IdempotencyStore
	events  EventPublisher
	log     *zap.Logger
	nowFunc func() time.Time
}

// RegisterMaterialOrderRoutes registers the material order API under cfg.BasePath.
func RegisterMaterialOrderRoutes(r *gin.Engine, cfg HandlerConfig) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	h := &materialOrderHandler{
		svc:     cfg.Service,
		idemp:   cfg.Idempotency,
		events:  cfg.Events,
		log:     log,
		nowFunc: time.Now,
	}

	g := r.Group(cfg.BasePath)
	g.POST("/", h.create)
	if strings.Trim(cfg.BasePath, "/") != "" {
		// the bare mount path creates too, instead of a 307 to ".../"
		g.POST("", h.create)
	}
	g.GET("/allList", h.list)
	g.GET("/:id", h.get)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.delete)
}

func (h *materialOrderHandler) create(c *gin.Context) {
	ctx := c.Request.Context()

	var req validation.CreateMaterialOrderRequest
	if err := validation.BindJSON(c, &req); err != nil {
		// BindJSON already wrote a 400
		return
	}

	key := c.GetHeader(IdempotencyHeader)
	if key == "" || h.idemp == nil {
		status, body, _ := h.createOrder(c, req)
		c.Data(status, jsonContentType, body)
		return
	}

	if !h.claim(c, key) {
		return
	}

	status, body, orderID := h.createOrder(c, req)
	if status >= http.StatusInternalServerError {
		if err := h.idemp.MarkFailed(ctx, key, http.StatusText(status)); err != nil {
			h.log.Error("mark idempotency failed", zap.String("idempotency_key", key), zap.Error(err))
		}
	} else if err := h.idemp.MarkDone(ctx, key, orderID, string(body), status); err != nil {
		h.log.Error("mark idempotency done", zap.String("idempotency_key", key), zap.Error(err))
	}
	c.Data(status, jsonContentType, body)
}

// claim reserves key for this request. It returns false after writing the
// response when the key belongs to an earlier request.
func (h *materialOrderHandler) claim(c *gin.Context, key string) bool {
	ctx := c.Request.Context()

	created, err := h.idemp.CreateIfNotExists(ctx, key)
	if err != nil {
		h.serverError(c, "claim idempotency key", msgCreateFailed, err)
		return false
	}
	if created {
		return true
	}

	rec, err := h.idemp.Get(ctx, key)
	if err != nil {
		h.serverError(c, "get idempotency record", msgCreateFailed, err)
		return false
	}
	if rec == nil {
		// expired between the conditional put and the read
		h.serverError(c, "idempotency record vanished", msgCreateFailed, errors.New("record not found"))
		return false
	}

	switch rec.Status {
	case idempotency.StatusDone:
		c.Data(rec.ResponseStatus, jsonContentType, []byte(rec.ResponseBody))
		return false
	case idempotency.StatusFailed:
		reclaimed, err := h.idemp.Reclaim(ctx, key)
		if err != nil {
			h.serverError(c, "reclaim idempotency key", msgCreateFailed, err)
			return false
		}
		if !reclaimed {
			c.JSON(http.StatusConflict, gin.H{"message": msgInProgress})
		}
		return reclaimed
	default:
		c.JSON(http.StatusConflict, gin.H{"message": msgInProgress})
		return false
	}
}

// createOrder runs the create and renders the response without writing it,
// so that it can be stored for idempotent replay.
func (h *materialOrderHandler) createOrder(c *gin.Context, req validation.CreateMaterialOrderRequest) (int, []byte, string) {
	order, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		var verr *validation.ValidationError
		if errors.As(err, &verr) {
			return render(http.StatusBadRequest, gin.H{"message": verr.Message})
		}
		h.logError(c, "create material order", err)
		return render(http.StatusInternalServerError, gin.H{"message": msgCreateFailed})
	}

	h.publish(c, events.TypeCreated, order)
	status, body, _ := render(http.StatusCreated, gin.H{"message": msgCreated, "order": order})
	return status, body, order.ID
}

func (h *materialOrderHandler) list(c *gin.Context) {
	orders, err := h.svc.List(c.Request.Context())
	if err != nil {
		h.serverError(c, "list material orders", msgServerError, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *materialOrderHandler) get(c *gin.Context) {
	order, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, materialorders.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": msgOrderNotFound})
			return
		}
		h.serverError(c, "get material order", msgServerError, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *materialOrderHandler) update(c *gin.Context) {
	var req validation.UpdateMaterialOrderRequest
	if err := validation.BindJSON(c, &req); err != nil {
		return
	}

	order, err := h.svc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		var verr *validation.ValidationError
		switch {
		case errors.As(err, &verr):
			c.JSON(http.StatusBadRequest, gin.H{"message": verr.Message})
		case errors.Is(err, materialorders.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": msgRequestNotFound})
		default:
			h.serverError(c, "update material order", msgServerError, err)
		}
		return
	}

	if !req.IsEmpty() {
		h.publish(c, events.TypeUpdated, order)
	}
	c.JSON(http.StatusOK, gin.H{"message": msgUpdated, "order": order})
}

func (h *materialOrderHandler) delete(c *gin.Context) {
	order, err := h.svc.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, materialorders.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": msgOrderNotFound})
			return
		}
		h.serverError(c, "delete material order", msgServerError, err)
		return
	}

	h.publish(c, events.TypeDeleted, order)
	c.JSON(http.StatusOK, gin.H{"message": msgDeleted})
}

// publish is best effort: the change is already stored.
func (h *materialOrderHandler) publish(c *gin.Context, eventType string, order *materialorders.MaterialOrder) {
	if h.events == nil {
		return
	}
	ev := events.New(eventType, order, h.nowFunc())
	ev.RequestID = c.GetString(requestIDKey)
	if err := h.events.Publish(c.Request.Context(), ev); err != nil {
		h.log.Warn("publish material order event",
			zap.String("type", eventType),
			zap.String("order_id", order.ID),
			zap.Error(err))
	}
}

func (h *materialOrderHandler) serverError(c *gin.Context, op, message string, err error) {
	h.logError(c, op, err)
	c.JSON(http.StatusInternalServerError, gin.H{"message": message})
}

func (h *materialOrderHandler) logError(c *gin.Context, op string, err error) {
	h.log.Error(op,
		zap.String("request_id", c.GetString(requestIDKey)),
		zap.String("id", c.Param("id")),
		zap.Error(err))
}

func render(status int, body gin.H) (int, []byte, string) {
	b, err := json.Marshal(body)
	if err != nil {
		b = []byte(`{"message":"` + msgCreateFailed + `"}`)
		status = http.StatusInternalServerError
	}
	return status, b, ""
}
