package bml

import (
	"image/color"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"go.uber.org/zap"
	"golang.org/x/image/colornames"
)

// Attribute parsers never fail: malformed input yields the supplied default.

// ParseVec3 parses "x y z". A single number is broadcast to all three axes.
// Any other token count, or any non-numeric token, returns def.
func ParseVec3(raw string, def Vec3) Vec3 {
	fields := strings.Fields(raw)
	switch len(fields) {
	case 1:
		f, ok := parseFloat(fields[0])
		if !ok {
			return def
		}
		return Vec3{f, f, f}
	case 3:
		var out [3]float64
		for i, tok := range fields {
			f, ok := parseFloat(tok)
			if !ok {
				return def
			}
			out[i] = f
		}
		return Vec3{out[0], out[1], out[2]}
	default:
		return def
	}
}

// ParseNumber parses a decimal number. NaN and unparseable input return def.
func ParseNumber(raw string, def float64) float64 {
	f, ok := parseFloat(raw)
	if !ok {
		return def
	}
	return f
}

func parseFloat(raw string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// ParseBoolean follows the HTML boolean-attribute convention: an empty value
// or "true" (any case) is true, "false" is false, anything else is def.
func ParseBoolean(raw string, def bool) bool {
	v := strings.TrimSpace(raw)
	switch {
	case v == "", strings.EqualFold(v, "true"):
		return true
	case strings.EqualFold(v, "false"):
		return false
	default:
		return def
	}
}

// ParseBooleanAttr is ParseBoolean for a possibly absent attribute. An absent
// attribute returns def.
func ParseBooleanAttr(a Attr, def bool) bool {
	if !a.Set {
		return def
	}
	return ParseBoolean(a.Value, def)
}

// ParseColor parses "#rgb", "#rrggbb", "rgb(r, g, b)" with 0-255 channels, or
// a CSS color name. Unparseable input returns def.
func ParseColor(raw string, def Color) Color {
	c, ok := parseColor(raw)
	if !ok {
		return def
	}
	return c
}

func parseColor(raw string) (Color, bool) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if v == "" {
		return Color{}, false
	}
	if strings.HasPrefix(v, "#") {
		c, err := colorful.Hex(v)
		if err != nil {
			return Color{}, false
		}
		return color8(c.RGB255()), true
	}
	if strings.HasPrefix(v, "rgb(") && strings.HasSuffix(v, ")") {
		parts := strings.Split(v[len("rgb("):len(v)-1], ",")
		if len(parts) != 3 {
			return Color{}, false
		}
		var ch [3]float64
		for i, p := range parts {
			f, ok := parseFloat(p)
			if !ok {
				return Color{}, false
			}
			ch[i] = clamp01(f / 255)
		}
		return Color{ch[0], ch[1], ch[2]}, true
	}
	if named, ok := colornames.Map[v]; ok {
		return colorFromStd(named), true
	}
	return Color{}, false
}

// color8 builds a Color from 8-bit channels. Every parse path goes through
// 8-bit channels so that Serialize's hex output reparses to the same value.
func color8(r, g, b uint8) Color {
	return Color{float64(r) / 255, float64(g) / 255, float64(b) / 255}
}

func colorFromStd(c color.Color) Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return color8(n.R, n.G, n.B)
}

// normalizeColor converts a schema default into a Color.
func normalizeColor(v any) Color {
	switch c := v.(type) {
	case Color:
		return c
	case string:
		out, _ := parseColor(c)
		return out
	case color.Color:
		return colorFromStd(c)
	default:
		return Color{}
	}
}

// ParseStyle parses "k1: v1; k2: v2". Semicolons inside parentheses do not
// split, so values such as url(a;b) survive. Segments without a colon or
// with an empty key are dropped.
func ParseStyle(raw string) map[string]string {
	out := make(map[string]string)
	for _, seg := range splitOutsideParens(raw, ';') {
		k, v, ok := strings.Cut(seg, ":")
		if !ok {
			continue
		}
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		out[k] = strings.TrimSpace(v)
	}
	return out
}

// parseInlineMap parses the "k=v, k2=v2" form used by map properties nested
// inside a multi-property attribute.
func parseInlineMap(raw string) map[string]string {
	out := make(map[string]string)
	for _, seg := range splitOutsideParens(raw, ',') {
		k, v, ok := strings.Cut(seg, "=")
		if !ok {
			continue
		}
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		out[k] = strings.TrimSpace(v)
	}
	return out
}

func splitOutsideParens(raw string, sep byte) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(raw); i++ {
		switch raw[i] {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case sep:
			if depth == 0 {
				parts = append(parts, raw[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, raw[start:])
}

// ParseComponent parses an attribute string against schema. Defaults are
// applied first, then every value present in the string overlays them.
// Undeclared properties and unparseable colors are logged and skipped.
func ParseComponent(raw string, schema Schema, log *zap.Logger) Data {
	if log == nil {
		log = zap.NewNop()
	}
	data := schema.Defaults()
	if schema.IsSingle() {
		p, _ := schema.Property(ValueKey)
		data[ValueKey] = parseProperty(ValueKey, p, raw, true, log)
		return data
	}

	kv := ParseStyle(raw)
	keys := make([]string, 0, len(kv))
	for k := range kv {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		p, ok := schema.Property(k)
		if !ok {
			log.Warn("undeclared component property", zap.String("property", k), zap.String("value", kv[k]))
			continue
		}
		data[k] = parseProperty(k, p, kv[k], false, log)
	}
	return data
}

func parseProperty(name string, p Property, raw string, single bool, log *zap.Logger) any {
	def := p.defaultValue()
	switch p.Type {
	case TypeString:
		return strings.TrimSpace(raw)
	case TypeNumber:
		return ParseNumber(raw, def.(float64))
	case TypeBool:
		return ParseBoolean(raw, def.(bool))
	case TypeVec3:
		return ParseVec3(raw, def.(Vec3))
	case TypeColor:
		c, ok := parseColor(raw)
		if !ok {
			log.Warn("unparseable color", zap.String("property", name), zap.String("value", raw))
			return def
		}
		return c
	case TypeMap:
		if single {
			return ParseStyle(raw)
		}
		return parseInlineMap(raw)
	default:
		log.Warn("unknown property type", zap.String("property", name), zap.Uint8("type", uint8(p.Type)))
		return def
	}
}

// Serialize writes data back in attribute grammar: a bare value for
// single-property schemas, otherwise "k: v; k2: v2" in schema key order.
// Parsing the result with the same schema yields equal data.
func Serialize(data Data, schema Schema) string {
	if schema.IsSingle() {
		p, _ := schema.Property(ValueKey)
		return formatValue(p.Type, data[ValueKey], true)
	}
	var b strings.Builder
	for _, k := range schema.Keys() {
		v, ok := data[k]
		if !ok {
			continue
		}
		p, _ := schema.Property(k)
		if b.Len() > 0 {
			b.WriteString("; ")
		}
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(formatValue(p.Type, v, false))
	}
	return b.String()
}

func formatValue(t PropType, v any, single bool) string {
	switch t {
	case TypeString:
		s, _ := v.(string)
		return s
	case TypeNumber:
		f, _ := v.(float64)
		return formatFloat(f)
	case TypeBool:
		b, _ := v.(bool)
		return strconv.FormatBool(b)
	case TypeVec3:
		vec, _ := v.(Vec3)
		return formatFloat(vec.X) + " " + formatFloat(vec.Y) + " " + formatFloat(vec.Z)
	case TypeColor:
		c, _ := v.(Color)
		return colorful.Color{R: c.R, G: c.G, B: c.B}.Hex()
	case TypeMap:
		m, _ := v.(map[string]string)
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			if single {
				parts[i] = k + ": " + m[k]
			} else {
				parts[i] = k + "=" + m[k]
			}
		}
		if single {
			return strings.Join(parts, "; ")
		}
		return strings.Join(parts, ", ")
	}
	return ""
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
