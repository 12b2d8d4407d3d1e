package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"cafeteria-api/apperr"
	"cafeteria-api/events"
	"cafeteria-api/logger"
	"cafeteria-api/middleware"
	"cafeteria-api/service"

	"github.com/gin-gonic/gin"
)

// Handler exposes the engines over HTTP. It binds JSON, calls one service
// method and maps the result.
type Handler struct {
	auth      *service.AuthService
	orders    *service.OrderService
	catalog   *service.CatalogService
	reporting *service.ReportingService
	bus       *events.Bus
	log       logger.Logger
}

func New(auth *service.AuthService, orders *service.OrderService, catalog *service.CatalogService,
	reporting *service.ReportingService, bus *events.Bus, log logger.Logger) *Handler {
	return &Handler{
		auth:      auth,
		orders:    orders,
		catalog:   catalog,
		reporting: reporting,
		bus:       bus,
		log:       log,
	}
}

// statusFor maps an error kind to its HTTP status
func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindExpired:
		return http.StatusGone
	case apperr.KindUnauthenticated:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) fail(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	msg := "internal server error"
	var ae *apperr.Error
	if errors.As(err, &ae) {
		msg = ae.Message
	}
	switch kind {
	case apperr.KindInternal:
		h.log.Errorf("%s %s: %v", c.Request.Method, c.FullPath(), err)
	case apperr.KindUnavailable:
		h.log.Warnf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		c.Header("Retry-After", "1")
	}
	_ = c.Error(err)
	c.JSON(statusFor(kind), gin.H{"error": msg, "code": apperr.CodeOf(err)})
}

func (h *Handler) badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": apperr.ErrValidation.Code})
}

// idParam parses a positive numeric path parameter
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name, "code": apperr.ErrValidation.Code})
		return 0, false
	}
	return uint(id), true
}

func actor(c *gin.Context) service.Actor {
	return service.Actor{ID: middleware.GetUserID(c), Role: middleware.GetRole(c)}
}
