package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"
)

type fakeChat struct {
	calls    int
	errs     []error
	content  string
	lastBody openai.ChatCompletionNewParams
}

func (f *fakeChat) New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error) {
	f.calls++
	f.lastBody = body
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return nil, err
	}
	resp := &openai.ChatCompletion{}
	if f.content != "" {
		resp.Choices = []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: f.content}}}
	}
	return resp, nil
}

func newTestClient(chat chatService, format string) *OpenAIClient {
	return &OpenAIClient{
		provider:       "openai",
		chat:           chat,
		model:          "gpt-test",
		responseFormat: format,
		policy: callPolicy{
			initialInterval: time.Millisecond,
			maxElapsed:      time.Second,
			logger:          zap.NewNop(),
			provider:        "openai",
		},
	}
}

func TestOpenAIClient_Complete(t *testing.T) {
	chat := &fakeChat{content: `{"confidence":0.8}`}
	client := newTestClient(chat, "json_schema")

	out, err := client.Complete(context.Background(), CompletionRequest{
		SystemPrompt: "sys",
		UserPrompt:   "user",
		SchemaName:   "meeting_insights",
		Schema:       Object(Prop("confidence", Number(0, 1))),
		MaxTokens:    100,
		Temperature:  0.3,
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if out != `{"confidence":0.8}` {
		t.Fatalf("unexpected content %q", out)
	}
	if chat.lastBody.ResponseFormat.OfJSONSchema == nil {
		t.Fatal("expected json_schema response format")
	}
	if chat.lastBody.ResponseFormat.OfJSONSchema.JSONSchema.Name != "meeting_insights" {
		t.Fatalf("unexpected schema name %q", chat.lastBody.ResponseFormat.OfJSONSchema.JSONSchema.Name)
	}
	if len(chat.lastBody.Messages) != 2 {
		t.Fatalf("expected system and user messages, got %d", len(chat.lastBody.Messages))
	}
}

func TestOpenAIClient_JSONObjectFormat(t *testing.T) {
	chat := &fakeChat{content: `{}`}
	client := newTestClient(chat, "json_object")

	if _, err := client.Complete(context.Background(), CompletionRequest{UserPrompt: "u", Schema: Object()}); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if chat.lastBody.ResponseFormat.OfJSONObject == nil || chat.lastBody.ResponseFormat.OfJSONSchema != nil {
		t.Fatal("expected json_object response format")
	}
}

func TestOpenAIClient_RetriesTransientErrors(t *testing.T) {
	chat := &fakeChat{
		errs:    []error{errors.New("503 service unavailable"), errors.New("dial tcp: connection reset")},
		content: `{"ok":true}`,
	}
	client := newTestClient(chat, "json_object")

	out, err := client.Complete(context.Background(), CompletionRequest{UserPrompt: "u"})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if chat.calls != 3 || out != `{"ok":true}` {
		t.Fatalf("expected success on third call, calls=%d out=%q", chat.calls, out)
	}
}

func TestOpenAIClient_PermanentErrors(t *testing.T) {
	tests := []struct {
		name string
		chat *fakeChat
		want error
	}{
		{"non retryable", &fakeChat{errs: []error{errors.New("invalid api key")}}, nil},
		{"empty content", &fakeChat{}, ErrEmptyResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(tt.chat, "json_object")
			_, err := client.Complete(context.Background(), CompletionRequest{UserPrompt: "u"})
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if tt.chat.calls != 1 {
				t.Fatalf("expected a single call, got %d", tt.chat.calls)
			}
		})
	}
}
