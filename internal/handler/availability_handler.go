package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/storefront-availability-api/internal/dto"
	"github.com/noah-isme/storefront-availability-api/internal/middleware"
	appErrors "github.com/noah-isme/storefront-availability-api/pkg/errors"
	"github.com/noah-isme/storefront-availability-api/pkg/response"
)

type availabilityService interface {
	StoreAvailability(ctx context.Context, storeID string, query dto.AvailabilityQuery) (*dto.StoreAvailabilityResponse, error)
	ProductAvailability(ctx context.Context, productID string, query dto.AvailabilityQuery) (*dto.ProductAvailabilityResponse, error)
	ConvertHours(ctx context.Context, req dto.ConvertHoursRequest) (*dto.ConvertHoursResponse, error)
	StoreClosures(ctx context.Context, storeID string, query dto.ClosuresQuery) (*dto.ClosuresExport, error)
	Invalidate(ctx context.Context, kind, id string) (*dto.CacheInvalidationResponse, error)
}

// AvailabilityHandler exposes store and product availability endpoints.
type AvailabilityHandler struct {
	service availabilityService
	logger  *zap.Logger
}

// NewAvailabilityHandler constructs the handler.
func NewAvailabilityHandler(service availabilityService, logger *zap.Logger) *AvailabilityHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AvailabilityHandler{service: service, logger: logger}
}

// StoreAvailability godoc
// @Summary Store open/closed verdict
// @Description Evaluates the store's weekly hours over a 14 day horizon at the given instant.
// @Tags Availability
// @Produce json
// @Param id path string true "Store ID"
// @Param at query string false "Reference instant (RFC 3339)"
// @Param tz query string false "Viewer IANA timezone"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /stores/{id}/availability [get]
func (h *AvailabilityHandler) StoreAvailability(c *gin.Context) {
	query, err := bindAvailabilityQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.service.StoreAvailability(c.Request.Context(), c.Param("id"), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	if query.Timezone != "" {
		middleware.SetMeta(c, "viewer_timezone", query.Timezone)
	}
	response.JSON(c, http.StatusOK, result, middleware.ResponseMeta(c))
}

// ProductAvailability godoc
// @Summary Product availability verdict
// @Description Evaluates the product's windows and reports the next time it becomes available.
// @Tags Availability
// @Produce json
// @Param id path string true "Product ID"
// @Param at query string false "Reference instant (RFC 3339)"
// @Param tz query string false "Viewer IANA timezone"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /products/{id}/availability [get]
func (h *AvailabilityHandler) ProductAvailability(c *gin.Context) {
	query, err := bindAvailabilityQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.service.ProductAvailability(c.Request.Context(), c.Param("id"), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, middleware.ResponseMeta(c))
}

// ConvertHours godoc
// @Summary Project weekly hours into another timezone
// @Tags Availability
// @Accept json
// @Produce json
// @Param payload body dto.ConvertHoursRequest true "Windows and zones"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /availability/convert [post]
func (h *AvailabilityHandler) ConvertHours(c *gin.Context) {
	var req dto.ConvertHoursRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload"))
		return
	}
	result, err := h.service.ConvertHours(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, middleware.ResponseMeta(c))
}

// StoreClosures godoc
// @Summary Download the closed ranges of a store
// @Tags Availability
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Store ID"
// @Param at query string false "Reference instant (RFC 3339)"
// @Param tz query string false "Display timezone"
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /stores/{id}/closures [get]
func (h *AvailabilityHandler) StoreClosures(c *gin.Context) {
	var query dto.ClosuresQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query parameters"))
		return
	}
	if query.Timezone == "" {
		query.Timezone = middleware.ViewerTimezoneValue(c)
	}
	file, err := h.service.StoreClosures(c.Request.Context(), c.Param("id"), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}

// InvalidateCache godoc
// @Summary Drop a cached schedule snapshot
// @Tags Cache
// @Produce json
// @Security BearerAuth
// @Param kind path string true "store or product"
// @Param id path string true "Entity ID"
// @Success 200 {object} response.Envelope
// @Success 202 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admin/availability/cache/{kind}/{id} [delete]
func (h *AvailabilityHandler) InvalidateCache(c *gin.Context) {
	result, err := h.service.Invalidate(c.Request.Context(), c.Param("kind"), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.logger.Debug("snapshot invalidated", zap.String("key", result.Key), zap.String("operator_id", operatorID(c)))
	if result.WarmupQueued {
		response.Accepted(c, result)
		return
	}
	response.JSON(c, http.StatusOK, result, middleware.ResponseMeta(c))
}
