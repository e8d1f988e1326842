package uischema

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	logoPolicyOnce sync.Once
	logoPolicy     *bluemonday.Policy
)

// SanitizeLogo strips everything but static SVG drawing markup from an app
// logo. Scripts, event handlers and foreign elements are removed. An empty
// string is returned when nothing survives.
func SanitizeLogo(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(logoSanitizer().Sanitize(trimmed))
}

func logoSanitizer() *bluemonday.Policy {
	logoPolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		shapes := []string{"path", "circle", "rect", "line", "polyline", "polygon", "ellipse"}
		policy.AllowElements("svg", "g", "title", "desc", "defs", "use", "clipPath", "linearGradient", "radialGradient", "stop")
		policy.AllowElements(shapes...)

		policy.AllowAttrs(
			"xmlns", "viewBox", "width", "height", "fill", "stroke",
			"stroke-width", "aria-hidden", "role", "focusable",
		).OnElements("svg")

		policy.AllowAttrs("href", "xlink:href", "clip-path").OnElements("use")

		policy.AllowAttrs(
			"d", "cx", "cy", "r", "x", "y", "x1", "y1", "x2", "y2",
			"points", "rx", "ry", "fill", "fill-rule", "clip-rule", "stroke",
			"stroke-width", "stroke-linecap", "stroke-linejoin", "opacity",
			"transform", "clip-path",
		).OnElements(shapes...)

		policy.AllowAttrs("id", "x1", "y1", "x2", "y2", "cx", "cy", "r", "gradientUnits", "gradientTransform").
			OnElements("linearGradient", "radialGradient")
		policy.AllowAttrs("offset", "stop-color", "stop-opacity").OnElements("stop")
		policy.AllowAttrs("id", "clipPathUnits").OnElements("clipPath")
		policy.AllowAttrs("id").OnElements("defs")
		policy.AllowAttrs("id", "fill", "transform", "clip-path").OnElements("g")

		logoPolicy = policy
	})
	return logoPolicy
}
