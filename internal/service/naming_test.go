package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"imageresizer/internal/domain"
)

func TestResolveName(t *testing.T) {
	tests := []struct {
		name string
		req  domain.NamingRequest
		want string
	}{
		{
			name: "empty prefix keeps original name",
			req:  domain.NamingRequest{OriginalName: "photo.jpg", Label: "_main", Extension: ".jpg"},
			want: "photo.jpg",
		},
		{
			name: "empty prefix ignores custom label",
			req:  domain.NamingRequest{OriginalName: "photo.jpg", Label: domain.LabelCustom, CustomLabel: "_x", Extension: ".jpg"},
			want: "photo.jpg",
		},
		{
			name: "fixed label",
			req:  domain.NamingRequest{OriginalName: "photo.jpg", Prefix: "ABC", Label: "_main", Extension: ".jpg"},
			want: "ABC_main.jpg",
		},
		{
			name: "none label",
			req:  domain.NamingRequest{OriginalName: "photo.jpg", Prefix: "ABC", Label: domain.LabelNone, CustomLabel: "_ignored", Extension: ".jpg"},
			want: "ABC.jpg",
		},
		{
			name: "custom label",
			req:  domain.NamingRequest{OriginalName: "photo.png", Prefix: "ABC", Label: domain.LabelCustom, CustomLabel: "-v2", Extension: ".png"},
			want: "ABC-v2.png",
		},
		{
			name: "empty custom label yields no label",
			req:  domain.NamingRequest{OriginalName: "photo.png", Prefix: "ABC", Label: domain.LabelCustom, Extension: ".png"},
			want: "ABC.png",
		},
		{
			name: "prefix is not sanitized",
			req:  domain.NamingRequest{OriginalName: "a.jpg", Prefix: "x/y z", Label: "_s1", Extension: ".jpg"},
			want: "x/y z_s1.jpg",
		},
		{
			name: "missing extension",
			req:  domain.NamingRequest{OriginalName: "README", Prefix: "ABC", Label: "_before"},
			want: "ABC_before",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveName(tt.req))
		})
	}
}

func TestResolveName_EmptyPrefixIsIdentity(t *testing.T) {
	labels := []string{"_after", "_before", "_main", "_s1", "_s4", domain.LabelNone, domain.LabelCustom, ""}
	names := []string{"photo.jpg", "IMG_0001.JPEG", "no-ext", ".hidden", "日本語.png"}

	for _, name := range names {
		for _, label := range labels {
			got := ResolveName(domain.NamingRequest{
				OriginalName: name,
				Label:        label,
				CustomLabel:  "_custom",
				Extension:    Extension(name),
			})
			assert.Equal(t, name, got, "label %q", label)
		}
	}
}

func TestExtension(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"photo.jpg", ".jpg"},
		{"photo.JPEG", ".JPEG"},
		{"archive.tar.gz", ".gz"},
		{"noext", ""},
		{".hidden", ""},
		{"..double", ""},
		{".hidden.png", ".png"},
		{"dir/photo.png", ".png"},
		{`dir\photo.png`, ".png"},
		{"trailing.", "."},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Extension(tt.in))
		})
	}
}
