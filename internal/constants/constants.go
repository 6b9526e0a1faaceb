package constants

import "time"

// Context keys
const (
	ContextKeyUserID = "user_id"
	ContextKeyUser   = "user"
)

// Validation
const (
	MinPasswordLength = 8
	MaxTitleLength    = 255
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Token types carried in the "type" claim
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Role slugs seeded at startup
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Media subfolders
const (
	MediaSubfolderAvatars = "avatars"
	MediaSubfolderUploads = "uploads"
)

const (
	OTPMinCode = 1000
	OTPMaxCode = 9999

	MaxUploadSize = 10 << 20

	ShutdownTimeout = 10 * time.Second
)
