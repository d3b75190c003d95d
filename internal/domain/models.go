package domain

import (
	"image"
)

const (
	// LabelNone drops the suffix entirely.
	LabelNone = "(none)"
	// LabelCustom takes the suffix from the row's free-form text.
	LabelCustom = "(custom)"
)

// BatchConfig holds the sidebar values every row falls back to.
type BatchConfig struct {
	DefaultPrefix string `json:"prefix"`
	TargetWidth   int    `json:"width"`
	ResizeEnabled bool   `json:"resize_enabled"`
}

// RawUpload is a file exactly as received from the form.
type RawUpload struct {
	Filename string
	Data     []byte
}

// UploadedImage is a decoded upload. It is not modified after decoding.
type UploadedImage struct {
	OriginalName string
	Image        image.Image
	Format       string
}

func (u UploadedImage) Width() int {
	return u.Image.Bounds().Dx()
}

func (u UploadedImage) Height() int {
	return u.Image.Bounds().Dy()
}

// ItemOverride carries the per-row form values. Prefix is nil when the row
// inherits BatchConfig.DefaultPrefix.
type ItemOverride struct {
	Index       int
	Prefix      *string
	Label       string
	CustomLabel string
}

type NamingRequest struct {
	OriginalName string
	Prefix       string
	Label        string
	CustomLabel  string
	Extension    string
}

type ProcessedImage struct {
	Index        int    `json:"index"`
	OriginalName string `json:"original_name"`
	FinalName    string `json:"final_name"`
	Format       string `json:"format"`
	ContentType  string `json:"content_type"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	Data         []byte `json:"data"`
}

// Archive is the combined download. Overwritten lists names that appeared
// more than once in the batch; only the last item with such a name is kept.
type Archive struct {
	Name        string   `json:"name"`
	Entries     int      `json:"entries"`
	Overwritten []string `json:"overwritten,omitempty"`
	Data        []byte   `json:"data"`
}

type BatchResult struct {
	Images  []ProcessedImage `json:"images"`
	Archive Archive          `json:"archive"`
}
