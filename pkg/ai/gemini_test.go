package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
)

type fakeGenerator struct {
	calls     int
	errs      []error
	text      string
	lastParts []genai.Part
}

func (f *fakeGenerator) GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	f.calls++
	f.lastParts = parts
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return nil, err
	}
	resp := &genai.GenerateContentResponse{}
	if f.text != "" {
		resp.Candidates = []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text(f.text[:1]), genai.Text(f.text[1:])}},
		}}
	}
	return resp, nil
}

func newTestGemini(gen *fakeGenerator, format string) *GeminiClient {
	g := &GeminiClient{
		modelName:      "gemini-test",
		responseFormat: format,
		policy: callPolicy{
			initialInterval: time.Millisecond,
			maxElapsed:      time.Second,
			logger:          zap.NewNop(),
			provider:        "gemini",
		},
	}
	g.generator = func(req CompletionRequest) contentGenerator { return gen }
	return g
}

func TestGeminiClient_Complete(t *testing.T) {
	gen := &fakeGenerator{text: `{"confidence":0.8}`}
	client := newTestGemini(gen, "json_schema")

	out, err := client.Complete(context.Background(), CompletionRequest{SystemPrompt: "sys", UserPrompt: "user"})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if out != `{"confidence":0.8}` {
		t.Fatalf("text parts should be joined, got %q", out)
	}
	if len(gen.lastParts) != 1 || gen.lastParts[0] != genai.Text("user") {
		t.Fatalf("expected the user prompt as the only part, got %v", gen.lastParts)
	}
}

func TestGeminiClient_Configure(t *testing.T) {
	tests := []struct {
		name       string
		format     string
		wantSchema bool
	}{
		{"json schema", "json_schema", true},
		{"json object", "json_object", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestGemini(&fakeGenerator{}, tt.format)
			model := &genai.GenerativeModel{}
			client.configure(model, CompletionRequest{
				SystemPrompt: "sys",
				Schema:       Object(Prop("confidence", Number(0, 1))),
				MaxTokens:    100,
				Temperature:  0.3,
			})

			if model.ResponseMIMEType != "application/json" {
				t.Fatalf("unexpected mime type %q", model.ResponseMIMEType)
			}
			if model.MaxOutputTokens == nil || *model.MaxOutputTokens != 100 {
				t.Fatalf("max tokens not applied: %v", model.MaxOutputTokens)
			}
			if model.SystemInstruction == nil || len(model.SystemInstruction.Parts) != 1 {
				t.Fatal("system prompt not applied")
			}
			if (model.ResponseSchema != nil) != tt.wantSchema {
				t.Fatalf("response schema set=%v, want %v", model.ResponseSchema != nil, tt.wantSchema)
			}
		})
	}
}

func TestGeminiClient_RetriesTransientErrors(t *testing.T) {
	gen := &fakeGenerator{
		errs: []error{
			&googleapi.Error{Code: 503, Message: "backend down"},
			&googleapi.Error{Code: 429, Message: "quota"},
			errors.New("dial tcp: connection reset"),
		},
		text: `{"ok":true}`,
	}
	client := newTestGemini(gen, "json_object")

	out, err := client.Complete(context.Background(), CompletionRequest{UserPrompt: "u"})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if gen.calls != 4 || out != `{"ok":true}` {
		t.Fatalf("expected success on fourth call, calls=%d out=%q", gen.calls, out)
	}
}

func TestGeminiClient_PermanentErrors(t *testing.T) {
	tests := []struct {
		name string
		gen  *fakeGenerator
		want error
	}{
		{"bad request", &fakeGenerator{errs: []error{&googleapi.Error{Code: 400, Message: "service unavailable in region"}}}, nil},
		{"non retryable", &fakeGenerator{errs: []error{errors.New("invalid api key")}}, nil},
		{"empty content", &fakeGenerator{}, ErrEmptyResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestGemini(tt.gen, "json_object")
			_, err := client.Complete(context.Background(), CompletionRequest{UserPrompt: "u"})
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if tt.gen.calls != 1 {
				t.Fatalf("expected a single call, got %d", tt.gen.calls)
			}
		})
	}
}
