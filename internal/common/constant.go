package common

const (
	// SessionCookieName carries the signed JWT for browser-style clients.
	SessionCookieName = "session"

	// AuthorizationHeaderName carries "Bearer <jwt>" for API clients.
	AuthorizationHeaderName = "Authorization"
)

// Persisted cache keys, one per cached resource plus the write marker.
const (
	CacheKeyProducts       = "products"
	CacheKeyCategories     = "categories"
	CacheKeyGallery        = "gallery"
	CacheKeyLastAdminWrite = "lastAdminWrite"
)
