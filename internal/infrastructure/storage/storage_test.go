package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
)

func TestLocalStore_PutOpen(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(filepath.Join(t.TempDir(), "uploads"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	ref, err := store.Put(ctx, "../../weekly sync.mp3", strings.NewReader("ID3 data"), 8, "audio/mpeg")
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if filepath.Dir(ref) != store.dir || !strings.HasSuffix(ref, "weekly_sync.mp3") {
		t.Fatalf("unexpected ref %q", ref)
	}

	path, cleanup, err := store.Open(ctx, ref)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer cleanup()
	data, _ := os.ReadFile(path)
	if string(data) != "ID3 data" {
		t.Fatalf("unexpected content %q", data)
	}

	rel, _, err := store.Open(ctx, filepath.Base(ref))
	if err != nil || rel != ref {
		t.Fatalf("relative ref should resolve inside the dir: %q %v", rel, err)
	}
}

func TestLocalStore_Missing(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	for _, ref := range []string{"nope.mp3", "../../etc/passwd", "/definitely/not/here.wav", "."} {
		if _, _, err := store.Open(context.Background(), ref); !errors.Is(err, entities.ErrMediaNotFound) {
			t.Fatalf("%q: expected ErrMediaNotFound, got %v", ref, err)
		}
	}
}

func TestParseMinIORef(t *testing.T) {
	tests := []struct {
		ref, bucket, key string
	}{
		{"minio://media/meetings/a.mp3", "media", "meetings/a.mp3"},
		{"meetings/a.mp3", "default", "meetings/a.mp3"},
		{"/meetings/a.mp3", "default", "meetings/a.mp3"},
		{"minio://a.mp3", "default", "a.mp3"},
	}
	for _, tt := range tests {
		b, k := parseMinIORef(tt.ref, "default")
		if b != tt.bucket || k != tt.key {
			t.Errorf("%q: got %q/%q", tt.ref, b, k)
		}
	}
}

func TestSanitizeName(t *testing.T) {
	tests := map[string]string{
		"call.mp3":            "call.mp3",
		"../secret/plan.wav":  "plan.wav",
		"C:\\rec\\team 1.m4a": "team_1.m4a",
		"":                    "media",
	}
	for in, want := range tests {
		if got := sanitizeName(in); got != want {
			t.Errorf("%q: want %q got %q", in, want, got)
		}
	}
}
