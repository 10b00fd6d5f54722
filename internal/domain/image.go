package domain

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// DefaultImageMIME is assumed when an upload or fetch carries no usable type.
const DefaultImageMIME = "image/png"

// ImageObject is one transport-ready image payload: a user upload, a fetched
// product photo, or a generated result. Values are immutable once built;
// later generations append new objects instead of mutating existing ones.
type ImageObject struct {
	Base64   string `json:"base64"`
	MIMEType string `json:"mimeType"`
}

// NewImage encodes raw bytes into an ImageObject. An empty mimeType falls
// back to DefaultImageMIME.
func NewImage(data []byte, mimeType string) ImageObject {
	return ImageObject{
		Base64:   base64.StdEncoding.EncodeToString(data),
		MIMEType: NormalizeImageMIME(mimeType),
	}
}

// Bytes decodes the payload back to raw image bytes.
func (i ImageObject) Bytes() ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(i.Base64)
	if err != nil {
		return nil, fmt.Errorf("decode image payload: %w", err)
	}
	return data, nil
}

// DataURI renders the image as a data: URI suitable for direct embedding.
func (i ImageObject) DataURI() string {
	if i.IsZero() {
		return ""
	}
	return fmt.Sprintf("data:%s;base64,%s", i.MIMEType, i.Base64)
}

// IsZero reports whether the object carries no payload.
func (i ImageObject) IsZero() bool {
	return i.Base64 == ""
}

// NormalizeImageMIME trims the declared type and substitutes the default for
// anything that is empty or not an image type.
func NormalizeImageMIME(mimeType string) string {
	mimeType = strings.TrimSpace(strings.ToLower(mimeType))
	if mimeType == "" || !strings.HasPrefix(mimeType, "image/") {
		return DefaultImageMIME
	}
	if idx := strings.IndexByte(mimeType, ';'); idx >= 0 {
		mimeType = strings.TrimSpace(mimeType[:idx])
	}
	return mimeType
}
