// Package images loads benchmark input images and derives their MIME types.
package images

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// mimeTypes maps recognized file extensions to MIME types. Anything else is
// treated as JPEG.
var mimeTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

const defaultMIME = "image/jpeg"

// Image is one loaded input image: raw bytes plus the base64 form the vendor
// payloads embed.
type Image struct {
	Path   string
	MIME   string
	Raw    []byte
	Base64 string
}

// MIMEType derives the MIME type from the file extension alone.
func MIMEType(path string) string {
	if mime, ok := mimeTypes[strings.ToLower(filepath.Ext(path))]; ok {
		return mime
	}
	return defaultMIME
}

// Load reads and encodes one image file.
func Load(path string) (*Image, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image %s: %w", path, err)
	}
	return &Image{
		Path:   path,
		MIME:   MIMEType(path),
		Raw:    raw,
		Base64: base64.StdEncoding.EncodeToString(raw),
	}, nil
}

// DataURI renders the image as an inline data URI for OpenAI-style payloads.
func (img *Image) DataURI() string {
	return fmt.Sprintf("data:%s;base64,%s", img.MIME, img.Base64)
}

// Scan lists the image files directly inside dir, sorted by name. A missing
// or empty directory yields an empty list, not an error: test cases without
// images simply run unexpanded.
func Scan(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan image directory %s: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := mimeTypes[strings.ToLower(filepath.Ext(entry.Name()))]; !ok {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}
