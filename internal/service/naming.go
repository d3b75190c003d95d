package service

import (
	"strings"

	"imageresizer/internal/domain"
)

// ResolveName builds the output filename for one row.
//
// An empty prefix means "keep the original name" and the label is ignored.
// Otherwise the name is prefix + label + extension, where LabelNone yields no
// label and LabelCustom takes the free-form text as is. Nothing is sanitized
// and names are not checked for uniqueness.
func ResolveName(req domain.NamingRequest) string {
	if req.Prefix == "" {
		return req.OriginalName
	}

	var label string
	switch req.Label {
	case domain.LabelNone:
		label = ""
	case domain.LabelCustom:
		label = req.CustomLabel
	default:
		label = req.Label
	}

	return req.Prefix + label + req.Extension
}

// Extension returns the last ".suffix" of the base name, dot included.
// Leading dots are part of the stem, so ".profile" has no extension.
func Extension(name string) string {
	base := name[strings.LastIndexAny(name, `/\`)+1:]
	stem := strings.TrimLeft(base, ".")
	i := strings.LastIndex(stem, ".")
	if i < 0 {
		return ""
	}
	return stem[i:]
}
