package handlers

import (
	"bytes"
	"html/template"

	"github.com/gofiber/fiber/v3"

	"redirector/internal/apperr"
	"redirector/internal/models"
)

var previewTemplate = template.Must(template.New("preview").Parse(`<!DOCTYPE html>
<html lang="zh-CN">
<head>
    <meta charset="UTF-8">
    <meta http-equiv="X-UA-Compatible" content="IE=edge">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <link rel="shortcut icon" href="{{.Icon}}" type="image/x-icon">
    <title>{{.Title}}</title>
</head>
<body>
<div>{{.Body}}</div>
</body>
</html>
`))

// previewData is the template view of a mapping. Icon is set by an admin and
// may be a data: URL, so it skips the template's scheme filter.
type previewData struct {
	Title string
	Body  string
	Icon  template.URL
}

// renderPreview writes the link card document for m.
func renderPreview(c fiber.Ctx, m *models.Mapping) error {
	data := previewData{
		Title: m.Title,
		Body:  m.Body,
		Icon:  template.URL(m.Icon),
	}

	var buf bytes.Buffer
	if err := previewTemplate.Execute(&buf, data); err != nil {
		return apperr.Internal("failed to render preview", err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Status(fiber.StatusOK).Send(buf.Bytes())
}
