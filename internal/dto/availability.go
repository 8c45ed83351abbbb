package dto

import (
	"time"

	"github.com/noah-isme/storefront-availability-api/internal/availability"
)

// AvailabilityQuery selects the reference instant and the viewer's zone.
// At is RFC 3339; empty means the time of the request.
type AvailabilityQuery struct {
	At       string `form:"at" json:"at" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Timezone string `form:"tz" json:"tz" validate:"omitempty,timezone"`
}

// ClosuresQuery selects the export instant and format.
type ClosuresQuery struct {
	At       string `form:"at" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Timezone string `form:"tz" validate:"omitempty,timezone"`
	Format   string `form:"format" validate:"omitempty,oneof=csv pdf CSV PDF"`
}

// StoreAvailabilityResponse is the store verdict plus evaluation context.
// Instants are rendered in the store timezone.
type StoreAvailabilityResponse struct {
	StoreID     string                  `json:"storeId"`
	StoreName   string                  `json:"storeName"`
	Timezone    string                  `json:"timezone"`
	EvaluatedAt time.Time               `json:"evaluatedAt"`
	IsOpen      bool                    `json:"isOpen"`
	NextOpen    *time.Time              `json:"nextOpen"`
	ClosedOn    []availability.Interval `json:"closedOn"`
	DSTWarnings []string                `json:"dstWarnings,omitempty"`
}

// ProductAvailabilityResponse is the product verdict with each rule anchored to
// its current or next occurrence.
type ProductAvailabilityResponse struct {
	ProductID     string                       `json:"productId"`
	ProductName   string                       `json:"productName"`
	EvaluatedAt   time.Time                    `json:"evaluatedAt"`
	Available     bool                         `json:"available"`
	NextAvailable *time.Time                   `json:"nextAvailable"`
	Status        string                       `json:"status"`
	Windows       []availability.ProductWindow `json:"windows"`
}

// WeeklyWindowInput is a caller-supplied weekly window.
type WeeklyWindowInput struct {
	DayOfWeek     *int   `json:"dayOfWeek" validate:"required,min=0,max=6"`
	OpenTime      string `json:"openTime" validate:"required,clock"`
	CloseTime     string `json:"closeTime" validate:"required,clock"`
	IsOpen        *bool  `json:"isOpen"`
	ClosesNextDay bool   `json:"closesNextDay"`
	DSTAware      *bool  `json:"dstAware"`
}

// ConvertHoursRequest projects weekly windows between zones. ReferenceDate is an
// ISO date in the source zone; empty means today.
type ConvertHoursRequest struct {
	Windows        []WeeklyWindowInput `json:"windows" validate:"required,min=1,max=100,dive"`
	SourceTimezone string              `json:"sourceTimezone" validate:"required,timezone"`
	TargetTimezone string              `json:"targetTimezone" validate:"required,timezone"`
	ReferenceDate  string              `json:"referenceDate" validate:"omitempty,datetime=2006-01-02"`
}

// ConvertHoursResponse carries the projected windows.
type ConvertHoursResponse struct {
	SourceTimezone string                      `json:"sourceTimezone"`
	TargetTimezone string                      `json:"targetTimezone"`
	ReferenceDate  string                      `json:"referenceDate"`
	Windows        []availability.WeeklyWindow `json:"windows"`
}

// ClosuresExport is a rendered closed-hours document.
type ClosuresExport struct {
	Filename    string
	ContentType string
	Body        []byte
}

// CacheInvalidationResponse reports what was dropped and whether a warm-up was queued.
type CacheInvalidationResponse struct {
	Kind           string `json:"kind"`
	ID             string `json:"id"`
	Key            string `json:"key"`
	WarmupQueued   bool   `json:"warmupQueued"`
	WarmupDeferred bool   `json:"warmupDeferred,omitempty"`
}
