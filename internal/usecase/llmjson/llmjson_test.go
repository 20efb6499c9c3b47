package llmjson

import (
	"math"
	"regexp"
	"testing"
	"time"

	"github.com/tidwall/gjson"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
)

func TestParseObject(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		ok   bool
	}{
		{"plain", `{"a":1}`, true},
		{"fenced", "```json\n{\"a\":1}\n```", true},
		{"bare fence", "```\n{\"a\":1}\n```", true},
		{"prose around", "Here you go: {\"a\": 1} hope it helps", true},
		{"array", `[1,2]`, false},
		{"not json", "not json", false},
		{"truncated", `{"a": [1, 2`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, ok := ParseObject(tt.raw)
			if ok != tt.ok {
				t.Fatalf("want ok=%v got %v", tt.ok, ok)
			}
			if ok && res.Get("a").Int() != 1 {
				t.Fatalf("unexpected value: %s", res.Raw)
			}
		})
	}
}

func TestUnwrapAndFirst(t *testing.T) {
	obj := gjson.Parse(`{"result":{"data":{"advice_given":[{"name":"x"}]}}}`)
	inner := Unwrap(obj, "result", "data")
	arr, ok := FirstArray(inner, "adviceGiven", "advice_given")
	if !ok || len(arr.Array()) != 1 {
		t.Fatalf("expected unwrapped array, got %s", inner.Raw)
	}
	if First(inner, "missing", "advice_given").Raw == "" {
		t.Fatal("expected First to find the alias")
	}
	if String(gjson.Parse(`{"a":"","b":null,"c":" x "}`), "a", "b", "c") != "x" {
		t.Fatal("expected first non-empty string")
	}
}

func TestProbability(t *testing.T) {
	tests := []struct {
		raw   string
		want  float64
		valid bool
	}{
		{`{"p":0.4}`, 0.4, true},
		{`{"p":85}`, 0.85, true},
		{`{"p":"70%"}`, 0.7, true},
		{`{"p":100}`, 1, true},
		{`{"p":-0.1}`, 0, false},
		{`{"p":150}`, 0, false},
		{`{"p":"high"}`, 0, false},
		{`{"p":null}`, 0.5, true},
		{`{}`, 0.5, true},
	}
	for _, tt := range tests {
		got, ok := Probability(gjson.Get(tt.raw, "p"), 0.5)
		if ok != tt.valid || (ok && math.Abs(got-tt.want) > 1e-9) {
			t.Errorf("%s: want (%v,%v) got (%v,%v)", tt.raw, tt.want, tt.valid, got, ok)
		}
	}
	if _, ok := NormalizeProbability(math.NaN()); ok {
		t.Error("NaN must be invalid")
	}
}

func TestMinutes(t *testing.T) {
	tests := []struct {
		raw  string
		want int
		ok   bool
	}{
		{`{"d":45}`, 45, true},
		{`{"d":"30"}`, 30, true},
		{`{"d":"2 hours"}`, 120, true},
		{`{"d":"1.5 hrs"}`, 90, true},
		{`{"d":"15 min"}`, 15, true},
		{`{"d":"about a week"}`, 0, false},
		{`{"d":0}`, 0, false},
		{`{"d":1e300}`, 0, false},
		{`{"d":"1e300"}`, 0, false},
		{`{"d":"99999999999 hours"}`, 0, false},
	}
	for _, tt := range tests {
		got, ok := Minutes(gjson.Get(tt.raw, "d"))
		if got != tt.want || ok != tt.ok {
			t.Errorf("%s: want (%d,%v) got (%d,%v)", tt.raw, tt.want, tt.ok, got, ok)
		}
	}
}

func TestSeconds(t *testing.T) {
	if s := Seconds(gjson.Parse(`"02:30"`)); s != 150 {
		t.Fatalf("want 150 got %v", s)
	}
	if s := Seconds(gjson.Parse(`"1:00:05"`)); s != 3605 {
		t.Fatalf("want 3605 got %v", s)
	}
	if s := Seconds(gjson.Parse(`42`)); s != 42 {
		t.Fatalf("want 42 got %v", s)
	}
	if s := Seconds(gjson.Parse(`"soon"`)); s != 0 {
		t.Fatalf("want 0 got %v", s)
	}
}

func TestLevel(t *testing.T) {
	if Level("HIGH", entities.LevelMedium) != entities.LevelHigh {
		t.Fatal("expected case-insensitive match")
	}
	if Level("extreme", entities.LevelMedium) != entities.LevelMedium {
		t.Fatal("expected default for unknown level")
	}
}

func TestDate(t *testing.T) {
	now := time.Date(2030, 3, 10, 12, 0, 0, 0, time.UTC)
	def := now.Add(7 * 24 * time.Hour)

	tests := []struct {
		raw  string
		want time.Time
	}{
		{`"2030-03-20"`, time.Date(2030, 3, 20, 0, 0, 0, 0, time.UTC)},
		{`"2030-03-20T09:30:00Z"`, time.Date(2030, 3, 20, 9, 30, 0, 0, time.UTC)},
		{`"March 25, 2030"`, time.Date(2030, 3, 25, 0, 0, 0, 0, time.UTC)},
		{`"Mar 25, 2030"`, time.Date(2030, 3, 25, 0, 0, 0, 0, time.UTC)},
		{`"2020-01-01"`, def},
		{`"next tuesday"`, def},
		{`null`, def},
		{`12345`, def},
	}
	for _, tt := range tests {
		got := Date(gjson.Parse(tt.raw), now, def)
		if !got.Equal(tt.want) {
			t.Errorf("%s: want %v got %v", tt.raw, tt.want, got)
		}
		if got.Before(now) {
			t.Errorf("%s: date before now", tt.raw)
		}
	}
}

func TestFragmentsAndTitle(t *testing.T) {
	pattern := regexp.MustCompile(`"content":\s*"([^"]+)"`)
	raw := `{"content": "short", "x": {"content": "Block two focus hours every morning"}`
	frags := Fragments(raw, pattern)
	if len(frags) != 1 || frags[0] != "Block two focus hours every morning" {
		t.Fatalf("unexpected fragments %v", frags)
	}

	long := "This is a rather long sentence that will certainly exceed fifty characters"
	if got := Title(long); len(got) != 50 || got[47:] != "..." {
		t.Fatalf("unexpected title %q", got)
	}
	if Title("short") != "short" {
		t.Fatal("short titles must be kept")
	}
}

func TestStrings(t *testing.T) {
	got := Strings(gjson.Parse(`["a", "", {"description":"b"}, 3]`))
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "3" {
		t.Fatalf("unexpected %v", got)
	}
	if got := Strings(gjson.Parse(`"solo"`)); len(got) != 1 {
		t.Fatalf("unexpected %v", got)
	}
}

func TestInt(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{`{"n":3}`, 3},
		{`{"n":"4"}`, 4},
		{`{"n":2.6}`, 3},
		{`{"n":-1}`, 7},
		{`{"n":1e300}`, 7},
		{`{"n":"many"}`, 7},
		{`{}`, 7},
	}
	for _, tt := range tests {
		if got := Int(gjson.Get(tt.raw, "n"), 7); got != tt.want {
			t.Errorf("%s: want %d got %d", tt.raw, tt.want, got)
		}
	}
}

type sectionItem struct {
	Name  string `validate:"required"`
	Count int    `validate:"gte=0,lte=10"`
}

func TestSection_DropsInvalidEntries(t *testing.T) {
	data := gjson.Parse(`{"items":[{"name":"kept","count":2},{"name":"too many","count":40},{"count":1}]}`)
	def := []sectionItem{{Name: "default"}}
	coerce := func(v gjson.Result, _ int) (sectionItem, bool) {
		return sectionItem{Name: String(v, "name"), Count: int(v.Get("count").Int())}, true
	}

	got := Section(data, []string{"missing", "items"}, coerce, def)
	if len(got) != 1 || got[0].Name != "kept" {
		t.Fatalf("expected only the valid entry, got %+v", got)
	}
	if got := Section(data, []string{"missing"}, coerce, def); len(got) != 1 || got[0].Name != "default" {
		t.Fatalf("expected default section, got %+v", got)
	}
}

func TestClip(t *testing.T) {
	if got := Clip("héllo wörld", 5); got != "héllo" {
		t.Fatalf("want héllo got %q", got)
	}
	if got := Clip("short", 50); got != "short" {
		t.Fatalf("want short got %q", got)
	}
}
