package domain

import "errors"

var (
	ErrEmptyBatch        = errors.New("no images provided")
	ErrBatchTooLarge     = errors.New("too many images in batch")
	ErrInvalidWidth      = errors.New("invalid target width")
	ErrInvalidFormat     = errors.New("invalid file format")
	ErrInvalidLabel      = errors.New("invalid label")
	ErrFileTooLarge      = errors.New("file too large")
	ErrDecode            = errors.New("failed to decode image")
	ErrZeroWidth         = errors.New("image has zero width")
	ErrZeroHeight        = errors.New("image has zero height")
	ErrImageTooLarge     = errors.New("image has too many pixels")
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrSessionNotFound   = errors.New("session not found")
)
