package domain

import (
	"path/filepath"
	"strings"
)

const DefaultMaxImageBytes = 5 << 20

var allowedImageTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/webp": ".webp",
}

// Image is a binary payload to be attached to an item.
type Image struct {
	Data        []byte
	ContentType string
	Filename    string
}

// NewImage validates the payload against the allowed content types and the
// given size limit. A limit <= 0 means DefaultMaxImageBytes.
func NewImage(data []byte, contentType, filename string, maxBytes int64) (*Image, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxImageBytes
	}
	if len(data) == 0 {
		return nil, InvalidInput("image is empty")
	}
	if int64(len(data)) > maxBytes {
		return nil, InvalidInput("image exceeds %d bytes", maxBytes)
	}

	contentType = strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	if _, ok := allowedImageTypes[contentType]; !ok {
		return nil, InvalidInput("image type %q is not allowed", contentType)
	}

	return &Image{Data: data, ContentType: contentType, Filename: filename}, nil
}

// Ext returns the object extension, taken from the filename when it has one.
func (i Image) Ext() string {
	if ext := strings.ToLower(filepath.Ext(i.Filename)); ext != "" {
		return ext
	}
	return allowedImageTypes[i.ContentType]
}

func (i Image) Size() int {
	return len(i.Data)
}
