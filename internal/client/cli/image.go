package cli

import (
	"bytes"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/trophyshop/internal/client/services"
)

// loadImage reads a local image file. The content type is sniffed from the
// data, falling back to the file extension.
func loadImage(path string) (*services.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	ct := http.DetectContentType(data)
	if !strings.HasPrefix(ct, "image/") {
		if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); byExt != "" {
			ct = byExt
		}
	}
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	return &services.Image{
		Name:        filepath.Base(path),
		ContentType: ct,
		Body:        bytes.NewReader(data),
	}, nil
}
