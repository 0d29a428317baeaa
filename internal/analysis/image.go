package analysis

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	_ "golang.org/x/image/webp"
)

// ImageFormat is a decodable image encoding.
type ImageFormat string

const (
	FormatJPEG ImageFormat = "jpeg"
	FormatPNG  ImageFormat = "png"
	FormatGIF  ImageFormat = "gif"
	FormatWEBP ImageFormat = "webp"
)

// UploadFormats are accepted by the main upload flow.
var UploadFormats = []ImageFormat{FormatJPEG, FormatPNG, FormatGIF, FormatWEBP}

// LegacyFormats are accepted by the legacy uploader.
var LegacyFormats = []ImageFormat{FormatJPEG, FormatPNG}

var mimeFormats = map[string]ImageFormat{
	"image/jpeg": FormatJPEG,
	"image/jpg":  FormatJPEG,
	"image/png":  FormatPNG,
	"image/gif":  FormatGIF,
	"image/webp": FormatWEBP,
}

// DetectFormat reads only the image header to identify its encoding.
func DetectFormat(data []byte) (ImageFormat, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("image data cannot be empty")
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	switch f := ImageFormat(format); f {
	case FormatJPEG, FormatPNG, FormatGIF, FormatWEBP:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// ValidateImage checks both the declared content type and the bytes against
// the allowed formats. Declared types outside image/* are rejected outright.
func ValidateImage(contentType string, data []byte, allowed []ImageFormat) (ImageFormat, error) {
	mediaType := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	if !strings.HasPrefix(mediaType, "image/") {
		return "", fmt.Errorf("%w: declared type %q", ErrInvalidImage, contentType)
	}
	if declared, ok := mimeFormats[mediaType]; ok && !formatAllowed(declared, allowed) {
		return "", fmt.Errorf("%w: %s not accepted", ErrInvalidImage, mediaType)
	}

	format, err := DetectFormat(data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if !formatAllowed(format, allowed) {
		return "", fmt.Errorf("%w: %s not accepted", ErrInvalidImage, format)
	}
	return format, nil
}

func formatAllowed(f ImageFormat, allowed []ImageFormat) bool {
	for _, a := range allowed {
		if a == f {
			return true
		}
	}
	return false
}
