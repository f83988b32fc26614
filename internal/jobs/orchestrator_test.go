package jobs

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"fileforge/internal/convert"
	"fileforge/internal/formats"
)

func newTestOrchestrator(t *testing.T, maxUploadBytes int64) *Orchestrator {
	t.Helper()
	st := newTestStore(t)
	return NewOrchestrator(st, convert.New(convert.DefaultLimits()), nil, maxUploadBytes, 2)
}

func pngPayload(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 30), G: uint8(y * 30), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding fixture: %v", err)
	}
	return buf.Bytes()
}

func TestUploadValidation(t *testing.T) {
	o := newTestOrchestrator(t, 16)

	cases := []struct {
		name     string
		filename string
		data     []byte
	}{
		{"empty filename", "", []byte("x")},
		{"empty payload", "a.png", nil},
		{"oversized payload", "a.png", bytes.Repeat([]byte("x"), 17)},
		{"unknown extension", "drawing.dwg", []byte("x")},
		{"no extension", "README", []byte("x")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := o.Upload(tc.filename, tc.data)
			var ue *UploadError
			if !errors.As(err, &ue) {
				t.Fatalf("expected UploadError, got %v", err)
			}
		})
	}

	if len(o.List()) != 0 {
		t.Fatalf("rejected uploads must not leave jobs behind, got %d", len(o.List()))
	}
}

func TestUploadConvertDownloadRoundTrip(t *testing.T) {
	o := newTestOrchestrator(t, 0)

	job, err := o.Upload("photo.png", pngPayload(t))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if job.Status != StatusUploaded || job.InputFormat != "png" {
		t.Fatalf("unexpected uploaded job: %+v", job)
	}

	done, err := o.Convert(job.ID, "jpg", map[string]any{"quality": 90})
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if done.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s (error %q)", done.Status, done.Error)
	}
	if done.Progress != 100 {
		t.Fatalf("expected progress 100, got %d", done.Progress)
	}

	data, name, err := o.Download(job.ID)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if name != "photo_converted.jpg" {
		t.Fatalf("unexpected download filename %q", name)
	}
	// JPEG SOI marker.
	if len(data) < 2 || data[0] != 0xFF || data[1] != 0xD8 {
		t.Fatalf("download payload is not a JPEG")
	}
}

func TestConvertUnsupportedPairLeavesJobUploaded(t *testing.T) {
	o := newTestOrchestrator(t, 0)

	job, err := o.Upload("table.csv", []byte("a,b\n1,2\n"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	_, err = o.Convert(job.ID, "webp", nil)
	var uce *formats.UnsupportedConversionError
	if !errors.As(err, &uce) {
		t.Fatalf("expected UnsupportedConversionError, got %v", err)
	}

	got, _ := o.Query(job.ID)
	if got.Status != StatusUploaded {
		t.Fatalf("job should remain uploaded after rejected convert, got %s", got.Status)
	}
}

func TestConvertInvalidOptionsLeavesJobUploaded(t *testing.T) {
	o := newTestOrchestrator(t, 0)

	job, err := o.Upload("photo.png", pngPayload(t))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	_, err = o.Convert(job.ID, "jpg", map[string]any{"quality": 500})
	var ve *formats.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	got, _ := o.Query(job.ID)
	if got.Status != StatusUploaded {
		t.Fatalf("job should remain uploaded after invalid options, got %s", got.Status)
	}
}

func TestConvertTwiceRejected(t *testing.T) {
	o := newTestOrchestrator(t, 0)

	job, err := o.Upload("photo.png", pngPayload(t))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if _, err := o.Convert(job.ID, "jpg", nil); err != nil {
		t.Fatalf("first Convert: %v", err)
	}

	_, err = o.Convert(job.ID, "bmp", nil)
	var ise *InvalidStateError
	if !errors.As(err, &ise) {
		t.Fatalf("expected InvalidStateError on second convert, got %v", err)
	}
}

func TestConverterFailureMarksJobFailed(t *testing.T) {
	o := newTestOrchestrator(t, 0)

	job, err := o.Upload("report.pdf", []byte("this is not a pdf"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	done, err := o.Convert(job.ID, "txt", nil)
	if err != nil {
		t.Fatalf("Convert returned transition error, want failed job: %v", err)
	}
	if done.Status != StatusFailed {
		t.Fatalf("expected failed, got %s", done.Status)
	}
	if done.Error == "" {
		t.Fatalf("failed job must carry an error message")
	}
	if done.OutputRef != "" {
		t.Fatalf("failed job must not carry an output reference")
	}

	if _, _, err := o.Download(job.ID); err == nil {
		t.Fatalf("expected download of failed job to be rejected")
	}
}

func TestDownloadRequiresCompleted(t *testing.T) {
	o := newTestOrchestrator(t, 0)

	job, err := o.Upload("photo.png", pngPayload(t))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	_, _, err = o.Download(job.ID)
	var ise *InvalidStateError
	if !errors.As(err, &ise) {
		t.Fatalf("expected InvalidStateError for uploaded job, got %v", err)
	}

	if _, _, err := o.Download("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteThenQuery(t *testing.T) {
	o := newTestOrchestrator(t, 0)

	job, err := o.Upload("photo.png", pngPayload(t))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if err := o.Delete(job.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := o.Query(job.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestDownloadFilenameVariants(t *testing.T) {
	job := Job{ID: "abc", Filename: "scan.pdf", OutputFormat: "png", OutputArchive: true}
	if got := DownloadFilename(job); got != "scan_converted.png.zip" {
		t.Fatalf("unexpected archive filename %q", got)
	}

	job = Job{ID: "abc", Filename: "data.csv", OutputFormat: "json"}
	if got := DownloadFilename(job); got != "data_converted.json" {
		t.Fatalf("unexpected filename %q", got)
	}

	job = Job{ID: "abc", Filename: ".png", OutputFormat: "jpg"}
	if got := DownloadFilename(job); !strings.HasPrefix(got, "abc") {
		t.Fatalf("expected id fallback for empty basename, got %q", got)
	}
}
