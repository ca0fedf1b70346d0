// Package newsletter renders the HTML email the band sends to its
// subscribers. The admin fills in a subject and a plain-text body; the
// result is pasted into whatever mail service sends the campaign.
package newsletter

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/osteele/liquid"
)

// BandName appears in the header and footer of every newsletter.
const BandName = "The Sixth Rift"

const emailTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <style>
    body { font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; }
    .header { background: linear-gradient(135deg, #D4A574 0%, #8B7355 100%); color: white; padding: 30px; text-align: center; }
    .content { padding: 30px; background: #f9f9f9; }
    .footer { padding: 20px; text-align: center; font-size: 12px; color: #666; }
  </style>
</head>
<body>
  <div class="header">
    <h1>{{ band }}</h1>
    <p>{{ subject | escape }}</p>
  </div>
  <div class="content">
    {{ content | escape | nl2br }}
  </div>
  <div class="footer">
    <p>You're receiving this because you subscribed to {{ band }} newsletter</p>
    <p>&copy; {{ year }} {{ band }} - Creating music beyond dimensions</p>
  </div>
</body>
</html>
`

// Renderer compiles the newsletter template once and renders it per request.
type Renderer struct {
	tpl *liquid.Template

	// now is swapped in tests to pin the footer year.
	now func() time.Time
}

// NewRenderer parses the built-in template and registers the filters it needs.
func NewRenderer() (*Renderer, error) {
	engine := liquid.NewEngine()

	// HTML escape: {{ user_input | escape }}
	engine.RegisterFilter("escape", func(s string) string {
		return html.EscapeString(s)
	})

	// Line breaks to <br>: {{ content | nl2br }}
	engine.RegisterFilter("nl2br", func(s string) string {
		s = strings.ReplaceAll(s, "\r\n", "\n")
		return strings.ReplaceAll(s, "\n", "<br>")
	})

	tpl, err := engine.ParseString(emailTemplate)
	if err != nil {
		return nil, fmt.Errorf("newsletter.NewRenderer: parse: %w", err)
	}

	return &Renderer{tpl: tpl, now: time.Now}, nil
}

// Render fills the template with subject and content. Both are treated as
// plain text: HTML in them is escaped.
func (r *Renderer) Render(subject, content string) (string, error) {
	out, err := r.tpl.RenderString(liquid.Bindings{
		"band":    BandName,
		"subject": subject,
		"content": content,
		"year":    r.now().Year(),
	})
	if err != nil {
		return "", fmt.Errorf("newsletter.Render: %w", err)
	}
	return out, nil
}
