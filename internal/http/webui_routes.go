package http

import (
	"io/fs"
	"mime"
	"path"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"

	webui "fileforge/frontend"
)

func registerWebUIRoutes(app *fiber.App) {
	if !webui.Enabled() {
		return
	}

	staticFS, err := fs.Sub(webui.FS(), "static")
	if err != nil {
		return
	}

	indexHTML, err := fs.ReadFile(staticFS, "index.html")
	if err != nil {
		return
	}

	serveIndex := func(c *fiber.Ctx) error {
		c.Set("Cache-Control", "no-cache")
		c.Type("html", "utf-8")
		return c.Send(indexHTML)
	}

	app.Get("/", serveIndex)

	app.Get("/*", func(c *fiber.Ctx) error {
		requestPath := c.Path()

		// Don't hijack API routes; let Fiber return a proper 404 for unknown endpoints.
		switch {
		case strings.HasPrefix(requestPath, "/api/"),
			requestPath == "/healthz",
			requestPath == "/metrics":
			return fiber.ErrNotFound
		}

		cleaned := path.Clean(requestPath)
		cleaned = strings.TrimPrefix(cleaned, "/")

		if cleaned == "" || cleaned == "." {
			return serveIndex(c)
		}

		// Requests without an extension fall back to index.html so the
		// single page keeps working on reload.
		ext := filepath.Ext(cleaned)
		if ext == "" {
			return serveIndex(c)
		}

		payload, err := fs.ReadFile(staticFS, cleaned)
		if err != nil {
			return fiber.ErrNotFound
		}

		if ct := mime.TypeByExtension(ext); ct != "" {
			c.Set("Content-Type", ct)
		} else {
			c.Type(ext)
		}

		return c.Send(payload)
	})
}
