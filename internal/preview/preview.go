package preview

import (
	"encoding/json"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/baechuer/otp-dashboard/internal/domain"
	"github.com/osteele/liquid"
	"github.com/osteele/liquid/filters"
)

// SampleOTP is substituted for the {{OTP}} placeholder.
const SampleOTP = "123456"

// MaxFieldLen bounds each rendered field. Longer input is not evaluated.
const MaxFieldLen = 16 << 10

var otpPlaceholder = regexp.MustCompile(`\{\{\s*(?:OTP|otp)\s*\}\}`)

// Email is a rendered template, ready for the preview pane. Text fields are
// HTML-escaped; BodyHTML additionally turns newlines into <br>.
type Email struct {
	Subject  string          `json:"subject"`
	Header   string          `json:"header"`
	BodyHTML string          `json:"bodyHtml"`
	Footer   string          `json:"footer"`
	OTP      string          `json:"otp"`
	Styles   json.RawMessage `json:"styles,omitempty"`
	Warnings []string        `json:"warnings,omitempty"`
}

// Renderer evaluates template fields as Liquid output expressions only.
// No tags are defined, so there is no include, loop or file access; an
// unknown variable is an error rather than an empty string.
type Renderer struct {
	engine *liquid.Engine
}

type filterSet struct{ e *liquid.Engine }

func (f filterSet) AddFilter(name string, fn any) { f.e.RegisterFilter(name, fn) }

func NewRenderer() *Renderer {
	e := liquid.NewBasicEngine()
	filters.AddStandardFilters(filterSet{e})
	e.StrictVariables()
	return &Renderer{engine: e}
}

// Render fills the template with otp. A field that does not render falls
// back to a literal placeholder replacement and adds a warning.
func (r *Renderer) Render(t domain.Template, otp string) Email {
	if otp == "" {
		otp = SampleOTP
	}
	bindings := map[string]any{"OTP": otp, "otp": otp}

	e := Email{OTP: otp, Styles: t.Styles}
	e.Subject = html.EscapeString(r.field(&e, "subject", t.Subject, bindings, otp))
	e.Header = html.EscapeString(r.field(&e, "header", t.HeaderText, bindings, otp))
	e.Footer = html.EscapeString(r.field(&e, "footer", t.FooterText, bindings, otp))

	body := html.EscapeString(r.field(&e, "body", t.BodyText, bindings, otp))
	body = strings.ReplaceAll(body, "\r\n", "\n")
	e.BodyHTML = strings.ReplaceAll(body, "\n", "<br>")
	return e
}

func (r *Renderer) field(e *Email, name, src string, bindings map[string]any, otp string) string {
	if src == "" {
		return ""
	}
	if len(src) > MaxFieldLen {
		e.Warnings = append(e.Warnings, fmt.Sprintf("%s: longer than %d bytes, not evaluated", name, MaxFieldLen))
		return otpPlaceholder.ReplaceAllLiteralString(src, otp)
	}
	out, err := r.engine.ParseAndRenderString(src, bindings)
	if err != nil {
		e.Warnings = append(e.Warnings, name+": "+err.Error())
		return otpPlaceholder.ReplaceAllLiteralString(src, otp)
	}
	return out
}
