package convert

import (
	"archive/zip"
	"bytes"
	"fmt"
	"image/color"
	"io"
	"strings"

	"github.com/disintegration/imaging"
	ledongthuc "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"fileforge/internal/formats"
)

func (c *Converter) convertDocument(input []byte, outputFormat string, opts formats.Options, report Progress) (Result, error) {
	out := formats.Normalize(outputFormat)

	if report != nil {
		report(10, "Opening PDF document")
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(bytes.NewReader(input), conf)
	if err != nil {
		return Result{}, failed(err, "invalid or corrupted PDF file")
	}

	total := ctx.PageCount
	if total == 0 {
		return Result{}, failed(nil, "PDF has no pages")
	}
	if total > c.limits.MaxPDFPages {
		return Result{}, failed(nil, "PDF has %d pages, exceeds maximum of %d", total, c.limits.MaxPDFPages)
	}

	start, end := pageWindow(opts, total)

	switch out {
	case "txt":
		return c.pdfToText(input, start, end, total, report)
	case "png", "jpg", "jpeg":
		return c.pdfToImages(input, out, opts, start, end, report)
	default:
		return Result{}, failed(nil, "no document converter for format %q", out)
	}
}

// pageWindow clamps the requested page range to the document, using
// 1-based inclusive bounds. No range selects every page.
func pageWindow(opts formats.Options, total int) (start, end int) {
	start, end = 1, total
	if opts.PageStart > 0 {
		start = opts.PageStart
		end = opts.PageEnd
	}
	if end > total {
		end = total
	}
	if start > end {
		start = end
	}
	return start, end
}

func (c *Converter) pdfToText(input []byte, start, end, total int, report Progress) (result Result, err error) {
	// The text-extraction library panics on some malformed font
	// programs; convert that into a conversion failure.
	defer func() {
		if r := recover(); r != nil {
			result = Result{}
			err = failed(nil, "text extraction failed: %v", r)
		}
	}()

	reader, err := ledongthuc.NewReader(bytes.NewReader(input), int64(len(input)))
	if err != nil {
		return Result{}, failed(err, "invalid or corrupted PDF file")
	}

	if report != nil {
		report(20, fmt.Sprintf("Extracting text from %d pages", end-start+1))
	}

	var sb strings.Builder
	pages := end - start + 1
	for i := start; i <= end; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return Result{}, failed(err, "text extraction failed on page %d", i)
		}
		if text != "" {
			fmt.Fprintf(&sb, "--- Page %d ---\n", i)
			sb.WriteString(text)
			sb.WriteString("\n\n")
		}
		if report != nil && pages > 0 {
			report(20+(i-start+1)*70/pages, fmt.Sprintf("Processing page %d/%d", i, total))
		}
	}

	if report != nil {
		report(100, "Text extraction complete")
	}
	return Result{Data: []byte(sb.String())}, nil
}

// pdfToImages extracts the images embedded in the selected pages and
// re-encodes them to the requested format. One image is returned as-is;
// several are bundled into a zip. A PDF with no embedded images yields
// a small white placeholder, matching the behavior callers already
// depend on.
func (c *Converter) pdfToImages(input []byte, out string, opts formats.Options, start, end int, report Progress) (Result, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	selected := []string{fmt.Sprintf("%d-%d", start, end)}
	pageImages, err := api.ExtractImagesRaw(bytes.NewReader(input), selected, conf)
	if err != nil {
		return Result{}, failed(err, "image extraction failed")
	}

	type extracted struct {
		name string
		data []byte
	}
	var files []extracted

	pages := len(pageImages)
	for i, imgMap := range pageImages {
		for _, img := range imgMap {
			raw, err := io.ReadAll(img)
			if err != nil {
				continue
			}
			decoded, err := imaging.Decode(bytes.NewReader(raw))
			if err != nil {
				// Unsupported embedded encoding; skip rather than fail
				// the whole document.
				continue
			}

			var buf bytes.Buffer
			if out == "png" {
				err = imaging.Encode(&buf, decoded, imaging.PNG)
			} else {
				err = imaging.Encode(&buf, flattenOntoWhite(decoded), imaging.JPEG, imaging.JPEGQuality(opts.Quality))
			}
			if err != nil {
				continue
			}

			name := fmt.Sprintf("page_%04d_img_%02d.%s", img.PageNr, len(files)+1, out)
			files = append(files, extracted{name: name, data: buf.Bytes()})
		}
		if report != nil && pages > 0 {
			report(20+(i+1)*75/pages, fmt.Sprintf("Processing page %d/%d", i+1, pages))
		}
	}

	if len(files) == 0 {
		placeholder := imaging.New(400, 100, color.White)
		var buf bytes.Buffer
		format := imaging.PNG
		if out != "png" {
			format = imaging.JPEG
		}
		if err := imaging.Encode(&buf, placeholder, format); err != nil {
			return Result{}, failed(err, "encoding placeholder image failed")
		}
		if report != nil {
			report(100, "No embedded images found in PDF")
		}
		return Result{Data: buf.Bytes()}, nil
	}

	if len(files) == 1 {
		if report != nil {
			report(100, "Extracted 1 image from PDF")
		}
		return Result{Data: files[0].data}, nil
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range files {
		w, err := zw.Create(f.name)
		if err != nil {
			return Result{}, failed(err, "packaging images failed")
		}
		if _, err := w.Write(f.data); err != nil {
			return Result{}, failed(err, "packaging images failed")
		}
	}
	if err := zw.Close(); err != nil {
		return Result{}, failed(err, "packaging images failed")
	}

	if report != nil {
		report(100, fmt.Sprintf("Extracted %d images from PDF", len(files)))
	}
	return Result{Data: buf.Bytes(), Archive: true}, nil
}
