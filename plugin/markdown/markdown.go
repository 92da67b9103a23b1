// Package markdown renders assistant replies to HTML for transcript views.
package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Service renders markdown content.
type Service interface {
	RenderHTML(source string) (string, error)
}

type service struct {
	md goldmark.Markdown
}

var _ Service = (*service)(nil)

// NewService creates a markdown service with GFM extensions.
func NewService() Service {
	return &service{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
	}
}

func (s *service) RenderHTML(source string) (string, error) {
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
