package images

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMIMEType(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"photo.jpg", "image/jpeg"},
		{"photo.JPEG", "image/jpeg"},
		{"diagram.png", "image/png"},
		{"anim.gif", "image/gif"},
		{"modern.webp", "image/webp"},
		{"unknown.bmp", "image/jpeg"},
		{"noextension", "image/jpeg"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, MIMEType(tc.path), tc.path)
	}
}

func TestLoadEncodesBase64(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pic.png")
	raw := []byte{0x89, 0x50, 0x4e, 0x47}
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	img, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, img.Path)
	assert.Equal(t, "image/png", img.MIME)
	assert.Equal(t, raw, img.Raw)
	assert.Equal(t, base64.StdEncoding.EncodeToString(raw), img.Base64)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.jpg"))
	assert.Error(t, err)
}

func TestDataURI(t *testing.T) {
	img := &Image{MIME: "image/jpeg", Base64: "Zm94"}
	assert.Equal(t, "data:image/jpeg;base64,Zm94", img.DataURI())
}

func TestScanFiltersAndSorts(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.png", "a.jpg", "notes.txt", "c.webp"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.png"), 0o755))

	paths, err := Scan(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.jpg"),
		filepath.Join(dir, "b.png"),
		filepath.Join(dir, "c.webp"),
	}, paths)
}

func TestScanMissingDirIsNotAnError(t *testing.T) {
	paths, err := Scan(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	assert.Empty(t, paths)
}
