// Package llmjson holds the shape-probing helpers used by the response
// normalizers. Everything that guesses at the layout of model output lives
// here or in the normalizers; the rest of the pipeline only sees canonical
// entities.
package llmjson

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	"github.com/johnquangdev/meeting-insights/pkg/validator"
)

// StripFences removes a surrounding markdown code block
func StripFences(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
		if idx := strings.LastIndex(content, "```"); idx != -1 {
			content = content[:idx]
		}
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx != -1 {
			content = content[:idx]
		}
	}

	return strings.TrimSpace(content)
}

// ParseObject returns the JSON object contained in raw. Code fences and
// prose around a single object are tolerated.
func ParseObject(raw string) (gjson.Result, bool) {
	content := StripFences(raw)
	if gjson.Valid(content) {
		res := gjson.Parse(content)
		return res, res.IsObject()
	}

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end <= start {
		return gjson.Result{}, false
	}
	content = content[start : end+1]
	if !gjson.Valid(content) {
		return gjson.Result{}, false
	}
	res := gjson.Parse(content)
	return res, res.IsObject()
}

// Present reports whether v holds a non-null value
func Present(v gjson.Result) bool {
	return v.Exists() && v.Type != gjson.Null
}

// First returns the first present value among keys
func First(obj gjson.Result, keys ...string) gjson.Result {
	for _, key := range keys {
		if v := obj.Get(key); Present(v) {
			return v
		}
	}
	return gjson.Result{}
}

// FirstArray returns the first array value among keys
func FirstArray(obj gjson.Result, keys ...string) (gjson.Result, bool) {
	for _, key := range keys {
		if v := obj.Get(key); v.IsArray() {
			return v, true
		}
	}
	return gjson.Result{}, false
}

// Unwrap descends through wrapper objects such as {"insights": {...}}
// until no wrapper key matches.
func Unwrap(obj gjson.Result, wrappers ...string) gjson.Result {
	for depth := 0; depth < 3; depth++ {
		descended := false
		for _, key := range wrappers {
			if v := obj.Get(key); v.IsObject() {
				obj = v
				descended = true
				break
			}
		}
		if !descended {
			break
		}
	}
	return obj
}

// String returns the first non-empty string among keys. Numbers and
// booleans are rendered as text.
func String(obj gjson.Result, keys ...string) string {
	for _, key := range keys {
		v := obj.Get(key)
		if !Present(v) || v.IsObject() || v.IsArray() {
			continue
		}
		if s := strings.TrimSpace(v.String()); s != "" {
			return s
		}
	}
	return ""
}

// Strings reads a string list; a single string becomes a one-element list
func Strings(v gjson.Result) []string {
	out := make([]string, 0)
	switch {
	case v.IsArray():
		for _, item := range v.Array() {
			var s string
			if item.IsObject() {
				s = String(item, "description", "text", "name", "title")
			} else {
				s = strings.TrimSpace(item.String())
			}
			if s != "" {
				out = append(out, s)
			}
		}
	case v.Type == gjson.String:
		if s := strings.TrimSpace(v.String()); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Probability reads a 0–1 value. Values in (1, 100] are percentages.
// Missing values yield def; negative, NaN or larger values are invalid.
func Probability(v gjson.Result, def float64) (float64, bool) {
	if !Present(v) {
		return def, true
	}
	f, ok := number(v)
	if !ok {
		return 0, false
	}
	return NormalizeProbability(f)
}

// NormalizeProbability applies the percentage rule to a raw number
func NormalizeProbability(f float64) (float64, bool) {
	switch {
	case math.IsNaN(f) || math.IsInf(f, 0) || f < 0:
		return 0, false
	case f <= 1:
		return f, true
	case f <= 100:
		return f / 100, true
	default:
		return 0, false
	}
}

// Int reads a non-negative integer, returning def when absent, invalid or
// above math.MaxInt32
func Int(v gjson.Result, def int) int {
	f, ok := number(v)
	if !ok || f < 0 || math.IsNaN(f) || f > math.MaxInt32 {
		return def
	}
	return int(math.Round(f))
}

// roundMinutes rounds to a positive minute count no larger than math.MaxInt32
func roundMinutes(f float64) (int, bool) {
	if math.IsNaN(f) || f > math.MaxInt32 {
		return 0, false
	}
	if m := int(math.Round(f)); m > 0 {
		return m, true
	}
	return 0, false
}

// ClampInt limits n to [lo, hi]
func ClampInt(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

var durationText = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(hours?|hrs?|h|minutes?|mins?|m)\b`)

// Minutes reads a duration in minutes from a number or text such as
// "2 hours" or "45 min". It returns false when nothing usable is found.
func Minutes(v gjson.Result) (int, bool) {
	if !Present(v) {
		return 0, false
	}
	if v.Type == gjson.Number {
		return roundMinutes(v.Float())
	}
	s := strings.TrimSpace(v.String())
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return roundMinutes(n)
	}
	match := durationText.FindStringSubmatch(s)
	if match == nil {
		return 0, false
	}
	value, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, false
	}
	if unit := strings.ToLower(match[2]); strings.HasPrefix(unit, "h") {
		value *= 60
	}
	return roundMinutes(value)
}

// Seconds reads a timestamp as seconds. Accepts numbers, numeric strings
// and "mm:ss" / "hh:mm:ss".
func Seconds(v gjson.Result) float64 {
	if !Present(v) {
		return 0
	}
	if f, ok := number(v); ok && f >= 0 {
		return f
	}
	parts := strings.Split(strings.TrimSpace(v.String()), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0
	}
	total := 0.0
	for _, p := range parts {
		n, err := strconv.ParseFloat(p, 64)
		if err != nil || n < 0 {
			return 0
		}
		total = total*60 + n
	}
	return total
}

// Level maps free text onto high/medium/low, returning def otherwise
func Level(s string, def entities.Level) entities.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high", "critical", "urgent":
		return entities.LevelHigh
	case "medium", "moderate", "normal", "med":
		return entities.LevelMedium
	case "low", "minor":
		return entities.LevelLow
	default:
		return def
	}
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"January 2, 2006",
	"Jan 2, 2006",
}

// Date parses v with the accepted layouts. Missing, unparsable or past
// dates yield def.
func Date(v gjson.Result, now, def time.Time) time.Time {
	if !Present(v) || v.Type != gjson.String {
		return def
	}
	return ParseDate(v.String(), now, def)
}

// ParseDate is Date for plain strings
func ParseDate(s string, now, def time.Time) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if t.Before(now) {
			return def
		}
		return t.UTC()
	}
	return def
}

// Section maps an aliased array with fn, dropping entries fn rejects and
// entries that fail their validate tags. def is returned when no alias
// holds an array.
func Section[T any](data gjson.Result, keys []string, fn func(gjson.Result, int) (T, bool), def []T) []T {
	arr, ok := FirstArray(data, keys...)
	if !ok {
		return def
	}
	out := make([]T, 0)
	for i, item := range arr.Array() {
		if v, ok := fn(item, i); ok && Valid(&v) {
			out = append(out, v)
		}
	}
	return out
}

// Valid reports whether v passes its validate tags
func Valid(v interface{}) bool {
	return validator.Struct(v) == nil
}

// Fragments returns the first capture group of every pattern match whose
// text is longer than ten characters
func Fragments(raw string, pattern *regexp.Regexp) []string {
	out := make([]string, 0)
	for _, m := range pattern.FindAllStringSubmatch(raw, -1) {
		if len(m) < 2 {
			continue
		}
		if s := strings.TrimSpace(m[1]); len(s) > 10 {
			out = append(out, s)
		}
	}
	return out
}

// Clip cuts text to at most n runes
func Clip(text string, n int) string {
	r := []rune(text)
	if len(r) > n {
		return string(r[:n])
	}
	return text
}

// Title shortens text longer than 50 characters to 47 plus an ellipsis
func Title(text string) string {
	r := []rune(text)
	if len(r) > 50 {
		return string(r[:47]) + "..."
	}
	return text
}

func number(v gjson.Result) (float64, bool) {
	switch v.Type {
	case gjson.Number:
		return v.Float(), true
	case gjson.String:
		s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(v.String()), "%"))
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
