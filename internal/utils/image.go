package utils

import (
	"bytes"
	"errors"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/nfnt/resize"
)

var ErrUnsupportedImage = errors.New("not an image! Please upload only images")

// ResizeToJPEG decodes r, scales and crops it to exactly width x height and
// re-encodes it as JPEG.
func ResizeToJPEG(r io.Reader, width, height uint) ([]byte, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, ErrUnsupportedImage
	}

	w, h := coverSize(img.Bounds(), width, height)
	resized := resize.Resize(w, h, img, resize.Lanczos3)
	out := cropCenter(resized, int(width), int(height))

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// coverSize picks the smallest dimensions that cover width x height while
// keeping the aspect ratio.
func coverSize(bounds image.Rectangle, width, height uint) (uint, uint) {
	srcW, srcH := float64(bounds.Dx()), float64(bounds.Dy())
	scale := float64(width) / srcW
	if s := float64(height) / srcH; s > scale {
		scale = s
	}
	w, h := uint(srcW*scale+0.5), uint(srcH*scale+0.5)
	if w < width {
		w = width
	}
	if h < height {
		h = height
	}
	return w, h
}

type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

func cropCenter(img image.Image, width, height int) image.Image {
	b := img.Bounds()
	x0 := b.Min.X + (b.Dx()-width)/2
	y0 := b.Min.Y + (b.Dy()-height)/2
	rect := image.Rect(x0, y0, x0+width, y0+height)
	if si, ok := img.(subImager); ok {
		return si.SubImage(rect)
	}
	return img
}

func IsValidImageFormat(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, format := range AllowedImageTypes {
		if ext == format {
			return true
		}
	}
	return false
}
