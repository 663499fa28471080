package storage

import (
	"bytes"
	_ "image/jpeg"
	_ "image/png"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

const (
	PhotoMaxWidth  = 600
	PhotoMaxHeight = 800
	photoQuality   = 82
)

// NormalizePhoto decodes a jpeg/png/webp upload, fixes EXIF orientation,
// fits it into PhotoMaxWidth x PhotoMaxHeight and re-encodes it as lossy WebP.
func NormalizePhoto(raw []byte) ([]byte, error) {
	if len(raw) == 0 {
		return nil, errors.New("empty image")
	}
	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		// imaging has no webp decoder registered
		img, err = webp.Decode(bytes.NewReader(raw))
		if err != nil {
			return nil, errors.Wrap(err, "decode image")
		}
	}

	b := img.Bounds()
	if b.Dx() > PhotoMaxWidth || b.Dy() > PhotoMaxHeight {
		img = imaging.Fit(img, PhotoMaxWidth, PhotoMaxHeight, imaging.CatmullRom)
	}

	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Lossless: false, Quality: photoQuality}); err != nil {
		return nil, errors.Wrap(err, "encode webp")
	}
	return buf.Bytes(), nil
}
