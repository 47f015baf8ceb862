package services

import "github.com/abrezinsky/luckydraw/internal/errors"

// Service errors
var (
	ErrSessionInProgress = errors.Conflict("a draw session is already in progress")
	ErrNotRunning        = errors.Conflict("no draw session is running")
	ErrNotPaused         = errors.Conflict("draw session is not paused")
	ErrSessionNotFound   = errors.NotFound("session not found")
	ErrEmptyCatalog      = errors.Validation("catalog must contain at least one prize")
	ErrInvalidLimit      = errors.InvalidInput("limit must be positive")
	ErrInvalidImageSize  = errors.InvalidInput("image size must be between 64 and 1024")
)
