package storage

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/chai2010/webp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "mark_sheet_12.pdf", SanitizeFilename("mark sheet 12.pdf"))
	assert.Equal(t, "passwd", SanitizeFilename("../../etc/passwd"))
	assert.Equal(t, "scan.jpg", SanitizeFilename(`C:\Users\me\scan.jpg`))
	assert.Equal(t, "file", SanitizeFilename(""))
}

func TestObjectKey(t *testing.T) {
	key := ObjectKey("/documents/enq-1/", "Aadhaar Card.pdf")
	assert.True(t, strings.HasPrefix(key, "documents/enq-1/"))
	assert.True(t, strings.HasSuffix(key, "-Aadhaar_Card.pdf"))
	assert.NotEqual(t, key, ObjectKey("documents/enq-1", "Aadhaar Card.pdf"))
}

func TestReplaceExt(t *testing.T) {
	assert.Equal(t, "photo.webp", ReplaceExt("photo.jpeg", ".webp"))
	assert.Equal(t, "photo.webp", ReplaceExt("photo", ".webp"))
}

func TestNormalizePhoto(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 1200, 1200))
	for y := 0; y < 1200; y++ {
		for x := 0; x < 1200; x++ {
			src.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 90, A: 255})
		}
	}
	var in bytes.Buffer
	require.NoError(t, png.Encode(&in, src))

	out, err := NormalizePhoto(in.Bytes())
	require.NoError(t, err)

	img, err := webp.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, PhotoMaxWidth, img.Bounds().Dx())
	assert.Equal(t, PhotoMaxWidth, img.Bounds().Dy())
}

func TestNormalizePhotoRejectsGarbage(t *testing.T) {
	_, err := NormalizePhoto(nil)
	assert.Error(t, err)

	_, err = NormalizePhoto([]byte("not an image"))
	assert.Error(t, err)
}
