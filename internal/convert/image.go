package convert

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/HugoSmits86/nativewebp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"fileforge/internal/formats"
)

// Formats without an alpha channel; transparent sources are flattened
// onto a white background before encoding.
var opaqueFormats = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"bmp":  true,
}

func (c *Converter) convertImage(input []byte, outputFormat string, opts formats.Options, report Progress) (Result, error) {
	out := formats.Normalize(outputFormat)

	if report != nil {
		report(10, "Loading image")
	}

	img, err := imaging.Decode(bytes.NewReader(input))
	if err != nil {
		return Result{}, failed(err, "invalid or corrupted image file")
	}

	bounds := img.Bounds()
	if bounds.Dx() > c.limits.MaxImageDimension || bounds.Dy() > c.limits.MaxImageDimension {
		return Result{}, failed(nil, "image dimensions (%dx%d) exceed maximum allowed (%dx%d)",
			bounds.Dx(), bounds.Dy(), c.limits.MaxImageDimension, c.limits.MaxImageDimension)
	}

	if report != nil {
		report(30, "Processing image")
	}

	img, err = c.resize(img, opts)
	if err != nil {
		return Result{}, err
	}

	if opaqueFormats[out] {
		img = flattenOntoWhite(img)
	}

	if report != nil {
		report(60, "Converting to "+out)
	}

	var buf bytes.Buffer
	switch out {
	case "png":
		err = imaging.Encode(&buf, img, imaging.PNG)
	case "jpg", "jpeg":
		err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(opts.Quality))
	case "gif":
		err = imaging.Encode(&buf, img, imaging.GIF)
	case "bmp":
		err = imaging.Encode(&buf, img, imaging.BMP)
	case "webp":
		// The pure-Go webp encoder is lossless only; quality does not
		// apply here.
		err = nativewebp.Encode(&buf, img, nil)
	default:
		return Result{}, failed(nil, "no image encoder for format %q", out)
	}
	if err != nil {
		return Result{}, failed(err, "encoding to %s failed", out)
	}

	if report != nil {
		report(100, "Conversion complete")
	}
	return Result{Data: buf.Bytes()}, nil
}

// resize applies the scale or width/height options. A scale factor
// multiplies both dimensions and rounds to the nearest pixel; a single
// width or height preserves the source aspect ratio.
func (c *Converter) resize(img image.Image, opts formats.Options) (image.Image, error) {
	bounds := img.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()

	var w, h int
	switch {
	case opts.Scale > 0:
		w = int(math.Round(float64(srcW) * opts.Scale))
		h = int(math.Round(float64(srcH) * opts.Scale))
	case opts.Width > 0 && opts.Height > 0:
		w, h = opts.Width, opts.Height
	case opts.Width > 0:
		w = opts.Width
		h = int(math.Round(float64(srcH) * float64(opts.Width) / float64(srcW)))
	case opts.Height > 0:
		h = opts.Height
		w = int(math.Round(float64(srcW) * float64(opts.Height) / float64(srcH)))
	default:
		return img, nil
	}

	if w < 1 || h < 1 {
		return nil, failed(nil, "resize target (%dx%d) is smaller than one pixel", w, h)
	}
	if w > c.limits.MaxImageDimension || h > c.limits.MaxImageDimension {
		return nil, failed(nil, "resize target (%dx%d) exceeds maximum allowed (%dx%d)",
			w, h, c.limits.MaxImageDimension, c.limits.MaxImageDimension)
	}

	return imaging.Resize(img, w, h, imaging.Lanczos), nil
}

func flattenOntoWhite(img image.Image) image.Image {
	background := imaging.New(img.Bounds().Dx(), img.Bounds().Dy(), color.White)
	draw.Draw(background, background.Bounds(), img, img.Bounds().Min, draw.Over)
	return background
}
