package imaging

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"restyle/internal/domain"
)

// FromReader reads an uploaded image into an ImageObject. The declared MIME
// type wins when it is a usable image type; otherwise the content is sniffed
// and finally the generic default applies. Reads beyond maxBytes fail rather
// than truncate.
func FromReader(r io.Reader, declaredMIME string, maxBytes int64) (domain.ImageObject, error) {
	if maxBytes <= 0 {
		maxBytes = 8 << 20
	}
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return domain.ImageObject{}, fmt.Errorf("%w: %v", domain.ErrImageUnreadable, err)
	}
	if len(data) == 0 {
		return domain.ImageObject{}, fmt.Errorf("%w: empty payload", domain.ErrImageUnreadable)
	}
	if int64(len(data)) > maxBytes {
		return domain.ImageObject{}, fmt.Errorf("%w: exceeds %d bytes", domain.ErrImageUnreadable, maxBytes)
	}
	return domain.NewImage(data, resolveMIME(declaredMIME, data)), nil
}

// resolveMIME prefers the declared image type, then content sniffing.
func resolveMIME(declared string, data []byte) string {
	declared = strings.TrimSpace(strings.ToLower(declared))
	if strings.HasPrefix(declared, "image/") {
		return declared
	}
	if sniffed := http.DetectContentType(data); strings.HasPrefix(sniffed, "image/") {
		return sniffed
	}
	return domain.DefaultImageMIME
}
