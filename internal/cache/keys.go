package cache

// Resource names used as key prefixes across the app. Mutations declare
// which of these they invalidate.
const (
	ResourceSpaces    = "spaces"
	ResourceDocuments = "documents"
	ResourceAPIKeys   = "api-keys"
	ResourceStats     = "stats"
	ResourceUsage     = "usage"
)
