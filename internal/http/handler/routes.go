package handler

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"time"

	"github.com/gofiber/fiber/v2"

	"doclib/internal/http/middleware"
	"doclib/internal/model"
	"doclib/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers stay thin: identity comes from middleware, business outcomes come
// from the service envelope, and this layer only maps them onto the wire.
func RegisterRoutes(app *fiber.App, db *sql.DB, docSvc service.DocumentService) {
	// Serve OpenAPI spec and Swagger UI
	app.Get("/openapi.yaml", func(c *fiber.Ctx) error {
		c.Type("yaml")
		return c.SendFile("openapi.yaml")
	})
	app.Get("/docs", func(c *fiber.Ctx) error {
		html := `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({
      url: '/openapi.yaml',
      dom_id: '#swagger-ui',
      presets: [SwaggerUIBundle.presets.apis],
      layout: 'BaseLayout'
    });
  </script>
</body>
</html>`
		return c.Type("html").SendString(html)
	})

	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	api := app.Group("/api/documents")

	// Shared-link endpoints are anonymous: the token is the capability.
	api.Get("/download-shared-file", DownloadSharedFile(docSvc))
	api.Get("/get-shared-file", GetSharedFile(docSvc))

	owned := api.Group("", middleware.Identity())
	owned.Post("/upload", UploadFiles(docSvc))
	owned.Get("/download", DownloadFile(docSvc))
	owned.Post("/download-multiple", DownloadFiles(docSvc))
	owned.Post("/share", ShareFile(docSvc))
	owned.Get("/get-files", GetFiles(docSvc))
	owned.Get("/orphans", ListOrphans(docSvc))
}

// HealthCheck verifies DB connectivity.
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe is a simple liveness check.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// ownerID returns the caller identity stored by the Identity middleware.
func ownerID(c *fiber.Ctx) string {
	id, _ := c.Locals(middleware.OwnerIDLocalKey).(string)
	return id
}

// respond writes a service envelope with its status hint.
func respond[T any](c *fiber.Ctx, res *service.Result[T]) error {
	return c.Status(res.Status).JSON(res)
}

// sendFile streams buffered file content as an attachment.
func sendFile(c *fiber.Ctx, f *model.FileResponse) error {
	ct := f.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	c.Set(fiber.HeaderContentType, ct)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", f.Name))
	return c.Status(fiber.StatusOK).Send(f.Content)
}

// UploadFiles accepts a multipart batch (field name: files).
func UploadFiles(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		form, err := c.MultipartForm()
		if err != nil || len(form.File["files"]) == 0 {
			return writeError(c, fiber.StatusBadRequest, "FILES_REQUIRED", "at least one file is required")
		}

		uploads := make([]service.UploadFile, 0, len(form.File["files"]))
		for _, fh := range form.File["files"] {
			f, err := fh.Open()
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
			}
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "FILE_READ_ERROR", "cannot read uploaded file")
			}

			ct := fh.Header.Get("Content-Type")
			if ct == "" {
				ct = "application/octet-stream"
			}
			uploads = append(uploads, service.UploadFile{Name: fh.Filename, ContentType: ct, Content: data})
		}

		return respond(c, docSvc.UploadFiles(c.UserContext(), ownerID(c), uploads))
	}
}

// DownloadFile returns one owned file (query param: fileName).
func DownloadFile(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res := docSvc.DownloadFile(c.UserContext(), ownerID(c), c.Query("fileName"))
		if !res.Succeeded {
			return respond(c, res)
		}
		return sendFile(c, res.Data)
	}
}

// DownloadFiles returns a zip bundle for a JSON array of file names.
func DownloadFiles(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var fileNames []string
		if err := c.BodyParser(&fileNames); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "expected a JSON array of file names")
		}

		res := docSvc.DownloadFiles(c.UserContext(), ownerID(c), fileNames)
		if !res.Succeeded {
			return respond(c, res)
		}
		return sendFile(c, res.Data)
	}
}

// ShareFile issues a share link (query params: fileName, expirationInHours).
func ShareFile(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		hours := c.QueryInt("expirationInHours", 0)
		return respond(c, docSvc.ShareFile(c.UserContext(), ownerID(c), c.Query("fileName"), hours))
	}
}

// DownloadSharedFile serves the file a share token grants access to.
func DownloadSharedFile(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tok := c.Query("token")
		if tok == "" {
			return writeError(c, fiber.StatusBadRequest, "TOKEN_REQUIRED", "token is required")
		}

		res := docSvc.DownloadSharedFile(c.UserContext(), tok)
		if !res.Succeeded {
			return respond(c, res)
		}
		return sendFile(c, res.Data)
	}
}

// GetSharedFile returns metadata for a share token with no side effect.
func GetSharedFile(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tok := c.Query("token")
		if tok == "" {
			return writeError(c, fiber.StatusBadRequest, "TOKEN_REQUIRED", "token is required")
		}
		return respond(c, docSvc.GetSharedFile(c.UserContext(), tok))
	}
}

// GetFiles lists the caller's documents.
func GetFiles(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return respond(c, docSvc.GetFiles(c.UserContext(), ownerID(c)))
	}
}

// ListOrphans reports stored objects that lost their metadata record.
func ListOrphans(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return respond(c, docSvc.ListOrphans(c.UserContext(), ownerID(c)))
	}
}
