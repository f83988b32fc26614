package http

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"strings"

	"github.com/gofiber/fiber/v2"

	"fileforge/internal/formats"
	"fileforge/internal/jobs"
)

func orchestratorFromCtx(c *fiber.Ctx) *jobs.Orchestrator {
	return c.Locals("orchestrator").(*jobs.Orchestrator)
}

// mapError translates domain errors into an HTTP status and stable
// error code. Anything unrecognized is reported as a 500.
func mapError(err error) (int, string) {
	var ue *jobs.UploadError
	if errors.As(err, &ue) {
		if strings.Contains(ue.Reason, "exceeds maximum") {
			return fiber.StatusRequestEntityTooLarge, "UPLOAD_TOO_LARGE"
		}
		return fiber.StatusBadRequest, "UPLOAD_REJECTED"
	}

	var ve *formats.ValidationError
	if errors.As(err, &ve) {
		return fiber.StatusBadRequest, "VALIDATION_ERROR"
	}

	var uce *formats.UnsupportedConversionError
	if errors.As(err, &uce) {
		return fiber.StatusBadRequest, "UNSUPPORTED_CONVERSION"
	}

	if errors.Is(err, jobs.ErrNotFound) {
		return fiber.StatusNotFound, "NOT_FOUND"
	}

	var ise *jobs.InvalidStateError
	if errors.As(err, &ise) {
		return fiber.StatusConflict, "INVALID_STATE"
	}

	return fiber.StatusInternalServerError, "INTERNAL_ERROR"
}

func errorJSON(c *fiber.Ctx, err error) error {
	status, code := mapError(err)
	return c.Status(status).JSON(ErrorResponse{
		Success: false,
		Code:    code,
		Error:   err.Error(),
	})
}

// uploadHandler accepts a multipart file upload and creates a job for
// it. The declared format comes from the filename extension.
func uploadHandler(c *fiber.Ctx) error {
	o := orchestratorFromCtx(c)

	fh, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Success: false,
			Code:    "UPLOAD_REJECTED",
			Error:   "multipart form must include a \"file\" part",
		})
	}

	f, err := fh.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Success: false,
			Code:    "UPLOAD_REJECTED",
			Error:   fmt.Sprintf("opening upload: %v", err),
		})
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Success: false,
			Code:    "UPLOAD_REJECTED",
			Error:   fmt.Sprintf("reading upload: %v", err),
		})
	}

	job, err := o.Upload(fh.Filename, data)
	if err != nil {
		return errorJSON(c, err)
	}

	item := jobItem(job)
	return c.Status(fiber.StatusCreated).JSON(UploadResponse{
		Success:  true,
		Job:      &item,
		Category: string(formats.CategoryOf(job.InputFormat)),
		Outputs:  formats.SupportedOutputs(job.InputFormat),
	})
}

// convertHandler starts a background conversion for an uploaded job.
// Clients poll /api/progress/:id for its outcome.
func convertHandler(c *fiber.Ctx) error {
	o := orchestratorFromCtx(c)

	var req ConvertRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Success: false,
			Code:    "VALIDATION_ERROR",
			Error:   "invalid JSON body",
		})
	}
	if req.JobID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Success: false,
			Code:    "VALIDATION_ERROR",
			Error:   "jobId is required",
		})
	}
	if req.OutputFormat == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Success: false,
			Code:    "VALIDATION_ERROR",
			Error:   "outputFormat is required",
		})
	}

	job, err := o.StartConvert(req.JobID, req.OutputFormat, req.Options)
	if err != nil {
		return errorJSON(c, err)
	}

	item := jobItem(job)
	return c.Status(fiber.StatusAccepted).JSON(ConvertResponse{
		Success: true,
		Job:     &item,
	})
}

// progressHandler reports the current state of a job.
func progressHandler(c *fiber.Ctx) error {
	o := orchestratorFromCtx(c)

	job, err := o.Query(c.Params("id"))
	if err != nil {
		return errorJSON(c, err)
	}

	item := jobItem(job)
	return c.JSON(ProgressResponse{
		Success: true,
		Job:     &item,
	})
}

// downloadHandler streams the converted payload of a completed job.
func downloadHandler(c *fiber.Ctx) error {
	o := orchestratorFromCtx(c)

	data, filename, err := o.Download(c.Params("id"))
	if err != nil {
		return errorJSON(c, err)
	}

	ct := mime.TypeByExtension(ext(filename))
	if ct == "" {
		ct = "application/octet-stream"
	}
	c.Set(fiber.HeaderContentType, ct)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(data)
}

func ext(filename string) string {
	if i := strings.LastIndexByte(filename, '.'); i >= 0 {
		return filename[i:]
	}
	return ""
}

// jobsListHandler lists all known jobs, newest first.
func jobsListHandler(c *fiber.Ctx) error {
	o := orchestratorFromCtx(c)

	list := o.List()
	items := make([]JobItem, 0, len(list))
	for _, job := range list {
		items = append(items, jobItem(job))
	}
	return c.JSON(ListJobsResponse{
		Success: true,
		Jobs:    items,
	})
}

// jobDetailHandler returns a single job record.
func jobDetailHandler(c *fiber.Ctx) error {
	o := orchestratorFromCtx(c)

	job, err := o.Query(c.Params("id"))
	if err != nil {
		return errorJSON(c, err)
	}

	item := jobItem(job)
	return c.JSON(ProgressResponse{
		Success: true,
		Job:     &item,
	})
}

// jobDeleteHandler removes a job and its stored bytes.
func jobDeleteHandler(c *fiber.Ctx) error {
	o := orchestratorFromCtx(c)

	if err := o.Delete(c.Params("id")); err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(DeleteResponse{Success: true})
}

// formatsHandler lists supported conversions, optionally filtered by
// input category (?category=image|document|data).
func formatsHandler(c *fiber.Ctx) error {
	filter := formats.Category(c.Query("category"))
	switch filter {
	case "", formats.CategoryImage, formats.CategoryDocument, formats.CategoryData:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Success: false,
			Code:    "VALIDATION_ERROR",
			Error:   fmt.Sprintf("unknown category %q", filter),
		})
	}

	return c.JSON(FormatsResponse{
		Success: true,
		Formats: formats.All(filter),
	})
}
