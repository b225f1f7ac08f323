package components

import (
	"context"
	"strings"

	twmerge "github.com/Oudwins/tailwind-merge-go"
	"github.com/a-h/templ"

	"github.com/cristianadrielbraun/qrform/internal/form"
)

const (
	buttonBase     = "inline-flex items-center gap-2 rounded-md px-4 py-2 text-sm font-medium bg-primary text-primary-foreground"
	buttonDisabled = "opacity-50 cursor-not-allowed pointer-events-none"
)

// ButtonClasses merges the base button classes with the disabled set.
func ButtonClasses(disabled bool, extra ...string) string {
	classes := append([]string{buttonBase}, extra...)
	if disabled {
		classes = append(classes, buttonDisabled)
	}
	return twmerge.Merge(classes...)
}

// Option is one entry of a select input.
type Option struct {
	Value string
	Label string
}

var errorCorrectionOptions = []Option{
	{"L", "L - Low (7%)"},
	{"M", "M - Medium (15%)"},
	{"Q", "Q - Quartile (25%)"},
	{"H", "H - High (30%)"},
}

var moduleDrawerOptions = func() []Option {
	out := make([]Option, 0, len(form.ModuleDrawers))
	for _, d := range form.ModuleDrawers {
		out = append(out, Option{Value: string(d), Label: humanize(string(d))})
	}
	return out
}()

var colorMaskOptions = func() []Option {
	out := make([]Option, 0, len(form.ColorMasks))
	for _, m := range form.ColorMasks {
		out = append(out, Option{Value: string(m), Label: humanize(string(m))})
	}
	return out
}()

// humanize turns "horizontal_gradient" into "Horizontal Gradient".
func humanize(s string) string {
	words := strings.Split(s, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// RenderString renders c to a string.
func RenderString(ctx context.Context, c templ.Component) (string, error) {
	var b strings.Builder
	if err := c.Render(ctx, &b); err != nil {
		return "", err
	}
	return b.String(), nil
}
