// Package upload checks image files before they are sent to the backend.
package upload

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// MaxImageSize is the largest image the backend accepts.
const MaxImageSize = 5 * 1024 * 1024

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/webp"}

// DetectImage sniffs data and returns its base MIME type. It fails when the
// file is empty, too large, or not a jpeg, png or webp image. The declared
// file name and extension are never trusted.
func DetectImage(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("file is empty")
	}
	if len(data) > MaxImageSize {
		return "", fmt.Errorf("max file size is 5MB")
	}
	mt, err := mimetype.DetectReader(bytes.NewReader(data))
	if err != nil || mt == nil {
		return "", fmt.Errorf("failed to detect file type")
	}
	ct := strings.Split(mt.String(), ";")[0]
	for _, allowed := range allowedImageTypes {
		if ct == allowed {
			return ct, nil
		}
	}
	return "", fmt.Errorf("only .jpg, .png, and .webp formats are supported")
}
