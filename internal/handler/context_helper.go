package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/storefront-availability-api/internal/dto"
	"github.com/noah-isme/storefront-availability-api/internal/middleware"
	appErrors "github.com/noah-isme/storefront-availability-api/pkg/errors"
)

// bindAvailabilityQuery reads at/tz from the query string. A missing tz falls
// back to the X-Timezone header.
func bindAvailabilityQuery(c *gin.Context) (dto.AvailabilityQuery, error) {
	var query dto.AvailabilityQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		return query, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query parameters")
	}
	if query.Timezone == "" {
		query.Timezone = middleware.ViewerTimezoneValue(c)
	}
	return query, nil
}

func operatorID(c *gin.Context) string {
	if claims := middleware.Claims(c); claims != nil {
		return claims.UserID
	}
	return ""
}
