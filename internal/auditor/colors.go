package auditor

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// nearMissThreshold is the maximum RGB distance, computed as
// sqrt((r1-r2)^2 + (g1-g2)^2 + (b1-b2)^2), at which an off-palette color
// is reported as a near-miss rather than rogue. 10 catches typos and
// eyeballed values like #003153 vs #003155.
const nearMissThreshold = 10.0

// colorProperties are the CSS properties inspected for color values.
var colorProperties = []string{
	"color",
	"background-color",
	"background",
	"border-color",
	"border-top-color",
	"border-right-color",
	"border-bottom-color",
	"border-left-color",
	"outline-color",
	"box-shadow",
	"text-shadow",
	"fill",
	"stroke",
}

var (
	hexColorRegex = regexp.MustCompile(`#[0-9a-fA-F]{3,8}`)
	rgbColorRegex = regexp.MustCompile(`rgba?\([^)]+\)`)
	hslColorRegex = regexp.MustCompile(`hsla?\([^)]+\)`)
	numberRegex   = regexp.MustCompile(`[\d.]+`)
)

// colorPropertyRegexps holds one compiled matcher per color property,
// built once at init. The leading boundary keeps "color" from matching
// inside "background-color".
var colorPropertyRegexps = func() []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(colorProperties))
	for i, prop := range colorProperties {
		res[i] = regexp.MustCompile(`(?:^|[;{\s])` + regexp.QuoteMeta(prop) + `\s*:\s*([^;]+)`)
	}
	return res
}()

// propertyColor is one color value found for one CSS property.
type propertyColor struct {
	property string
	// hex is the normalized lowercase 6-digit hex value, or the keyword
	// "transparent".
	hex string
}

// colorsFromStyle extracts every color value from a CSS declaration
// string, normalized to lowercase 6-digit hex. Hex, rgb()/rgba(), and
// hsl()/hsla() notations are handled; alpha channels are discarded
// because the palette is defined in opaque hex.
func colorsFromStyle(style string) []propertyColor {
	var colors []propertyColor

	lower := strings.ToLower(style)
	for i, prop := range colorProperties {
		m := colorPropertyRegexps[i].FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		value := strings.TrimSpace(m[1])

		for _, h := range hexColorRegex.FindAllString(value, -1) {
			colors = append(colors, propertyColor{property: prop, hex: normalizeHex(h)})
		}
		for _, rgb := range rgbColorRegex.FindAllString(value, -1) {
			if hex, ok := rgbToHex(rgb); ok {
				colors = append(colors, propertyColor{property: prop, hex: hex})
			}
		}
		for _, hsl := range hslColorRegex.FindAllString(value, -1) {
			if hex, ok := hslToHex(hsl); ok {
				colors = append(colors, propertyColor{property: prop, hex: hex})
			}
		}
		if strings.Contains(value, "transparent") {
			colors = append(colors, propertyColor{property: prop, hex: "transparent"})
		}
	}

	return colors
}

// normalizeHex reduces a hex color to lowercase 6-digit form: shorthand
// #abc expands to #aabbcc, 8-digit values drop the alpha channel.
func normalizeHex(hex string) string {
	v := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(hex)), "#")

	if len(v) == 3 || len(v) == 4 {
		var b strings.Builder
		for _, c := range v[:3] {
			b.WriteRune(c)
			b.WriteRune(c)
		}
		v = b.String()
	}
	if len(v) == 8 {
		v = v[:6]
	}

	return "#" + v
}

// rgbToHex converts an rgb() or rgba() expression to 6-digit hex.
func rgbToHex(rgb string) (string, bool) {
	nums := numberRegex.FindAllString(rgb, -1)
	if len(nums) < 3 {
		return "", false
	}

	channel := func(s string) (int, bool) {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		n := int(f)
		if n < 0 || n > 255 {
			return 0, false
		}
		return n, true
	}

	r, ok1 := channel(nums[0])
	g, ok2 := channel(nums[1])
	b, ok3 := channel(nums[2])
	if !ok1 || !ok2 || !ok3 {
		return "", false
	}
	return fmt.Sprintf("#%02x%02x%02x", r, g, b), true
}

// hslToHex converts an hsl() or hsla() expression to 6-digit hex using
// the standard HSL to RGB mapping.
func hslToHex(hsl string) (string, bool) {
	nums := numberRegex.FindAllString(hsl, -1)
	if len(nums) < 3 {
		return "", false
	}

	h, err1 := strconv.ParseFloat(nums[0], 64)
	s, err2 := strconv.ParseFloat(nums[1], 64)
	l, err3 := strconv.ParseFloat(nums[2], 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return "", false
	}
	h /= 360
	s /= 100
	l /= 100
	if s < 0 || s > 1 || l < 0 || l > 1 {
		return "", false
	}

	var r, g, b float64
	if s == 0 {
		r, g, b = l, l, l
	} else {
		var q float64
		if l < 0.5 {
			q = l * (1 + s)
		} else {
			q = l + s - l*s
		}
		p := 2*l - q
		r = hueToRGB(p, q, h+1.0/3.0)
		g = hueToRGB(p, q, h)
		b = hueToRGB(p, q, h-1.0/3.0)
	}

	return fmt.Sprintf("#%02x%02x%02x",
		int(math.Round(r*255)),
		int(math.Round(g*255)),
		int(math.Round(b*255))), true
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6.0:
		return p + (q-p)*6*t
	case t < 1.0/2.0:
		return q
	case t < 2.0/3.0:
		return p + (q-p)*(2.0/3.0-t)*6
	default:
		return p
	}
}

// hexToRGB splits a normalized 6-digit hex color into channels.
func hexToRGB(hex string) (r, g, b int, ok bool) {
	v := strings.TrimPrefix(hex, "#")
	if len(v) != 6 {
		return 0, 0, 0, false
	}
	n, err := strconv.ParseUint(v, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return int(n >> 16 & 0xff), int(n >> 8 & 0xff), int(n & 0xff), true
}

// colorDistance returns the Euclidean RGB distance between two normalized
// hex colors. A negative result means one of the values was malformed.
func colorDistance(a, b string) float64 {
	r1, g1, b1, ok1 := hexToRGB(a)
	r2, g2, b2, ok2 := hexToRGB(b)
	if !ok1 || !ok2 {
		return -1
	}
	dr := float64(r1 - r2)
	dg := float64(g1 - g2)
	db := float64(b1 - b2)
	return math.Sqrt(dr*dr + dg*dg + db*db)
}
