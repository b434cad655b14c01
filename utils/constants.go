package utils

import (
	"fmt"
	"time"
)

// ContextKey is the type for request-scoped context values set by the HTTP layer
type ContextKey string

const (
	RequestIDKey  ContextKey = "request_id"
	UserAgentKey  ContextKey = "user_agent"
	IPAddressKey  ContextKey = "ip_address"
	EndpointKey   ContextKey = "endpoint"
	TimeoutKey    ContextKey = "timeout"
	CancelFuncKey ContextKey = "cancel_func"
)

// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
const CORSMaxAge = 86400

// Token and session time constants
const (
	// AccessTokenTTL is the time-to-live for access tokens (24 hours)
	AccessTokenTTL = 24 * time.Hour

	// RefreshTokenTTL is the time-to-live for refresh tokens (7 days)
	RefreshTokenTTL = 7 * 24 * time.Hour
)

// Billing constants
const (
	// DaysInYear is the denominator used for premium pro-ration
	DaysInYear = 365.0

	// AdultAge is the minimum age for spouse, parent, and guardian dependents
	AdultAge = 18

	// ChildMaxAge is the maximum age for a non-disabled child dependent
	ChildMaxAge = 18
)

// Cache key fragments for the rate-card cache
const (
	CacheKeyActivePeriod = "period:active"
	CacheKeyRateCard     = "ratecard:period:"
)

// RateCardCacheKey builds the cache key for a period's rate card
func RateCardCacheKey(periodID uint) string {
	return fmt.Sprintf("%s%d", CacheKeyRateCard, periodID)
}
