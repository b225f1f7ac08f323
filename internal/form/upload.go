package form

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// MaxUploadBytes matches the 16MB request cap of the generation endpoint.
const MaxUploadBytes = 16 << 20

// ErrUnsupportedUpload is returned for embedded images that are not images.
var ErrUnsupportedUpload = errors.New("unsupported embedded image")

// Upload is the optional embedded image file.
type Upload struct {
	Filename    string `validate:"required"`
	ContentType string `validate:"required"`
	Content     []byte `validate:"required,max=16777216"`
}

// NewUpload sniffs content and rejects anything that is not an image.
func NewUpload(filename string, content []byte) (*Upload, error) {
	if len(content) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrUnsupportedUpload, filename)
	}
	if len(content) > MaxUploadBytes {
		return nil, fmt.Errorf("%w: %s is larger than 16MB", ErrUnsupportedUpload, filename)
	}
	mt := mimetype.Detect(content)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, fmt.Errorf("%w: %s is %s", ErrUnsupportedUpload, filename, mt.String())
	}
	name := filepath.Base(filename)
	if filepath.Ext(name) == "" {
		name += mt.Extension()
	}
	return &Upload{Filename: name, ContentType: mt.String(), Content: content}, nil
}
