// Package constants provides shared constants used across the codebase.
package constants

import "time"

// Event channel constants
const (
	// EventChannelBuffer is the buffer size for event channels
	EventChannelBuffer = 100

	// SSEKeepAliveInterval is how often an idle event stream receives a comment line
	SSEKeepAliveInterval = 30 * time.Second
)

// Session constants
const (
	// SessionSweepInterval is how often idle editor sessions are collected
	SessionSweepInterval = 5 * time.Minute

	// OwnerCookieMaxAge is the lifetime of the anonymous owner cookie
	OwnerCookieMaxAge = 365 * 24 * time.Hour
)

// File upload constants
const (
	// MaxUploadSize is the maximum multipart request size in bytes (32MB)
	MaxUploadSize = 32 << 20

	// MaxUploadFiles is the maximum number of files in one upload request
	MaxUploadFiles = 20
)
