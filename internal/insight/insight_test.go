package insight

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/javiermolinar/dayplanner/internal/plan"
	"github.com/javiermolinar/dayplanner/internal/summary"
)

type fakeClient struct {
	reply    string
	err      error
	messages []Message
}

func (f *fakeClient) Chat(_ context.Context, messages []Message) (string, error) {
	f.messages = messages
	return f.reply, f.err
}

func sampleSummary() *summary.Summary {
	s := summary.Build(
		[]plan.ActivityHours{{ActivityName: "Reading", CategoryName: "Learning", TotalMinutes: 90, TotalHours: 1.5, SessionCount: 2}},
		[]plan.CategoryHours{{CategoryName: "Learning", TotalMinutes: 90, TotalHours: 1.5, SessionCount: 2}},
		[]plan.DailyStats{{Date: "2025-01-15", TotalMinutes: 90, TotalHours: 1.5, SessionCount: 2}},
	)
	s.StartDate, s.EndDate = "2025-01-13", "2025-01-19"
	return s
}

func TestNewClient(t *testing.T) {
	client, err := NewClient("ollama", "llama3", "")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	ollamaClient, ok := client.(*OllamaClient)
	if !ok {
		t.Fatalf("expected OllamaClient, got %T", client)
	}
	if ollamaClient.baseURL != defaultOllamaBaseURL {
		t.Errorf("baseURL = %q, want %q", ollamaClient.baseURL, defaultOllamaBaseURL)
	}

	client, err = NewClient("lmstudio", "llama3", "")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if oc, ok := client.(*OpenAIClient); !ok || oc.baseURL != defaultLMStudioBaseURL {
		t.Errorf("expected LM Studio OpenAIClient, got %T", client)
	}
}

func TestNewClient_Errors(t *testing.T) {
	if _, err := NewClient("unknown", "model", ""); err == nil {
		t.Error("expected error for unsupported provider")
	}
	if _, err := NewClient("ollama", "", ""); err == nil {
		t.Error("expected error for missing model")
	}
}

func TestPrompt(t *testing.T) {
	p := Prompt(sampleSummary())
	for _, want := range []string{
		"Range: 2025-01-13 to 2025-01-19",
		"- 2 sessions, 1.50h total",
		"- Learning: 1.50h in 2 sessions",
		"- Reading (Learning): 1.50h in 2 sessions",
		"- 2025-01-15: 1.50h in 2 sessions",
	} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q:\n%s", want, p)
		}
	}
}

func TestEvaluate(t *testing.T) {
	fake := &fakeClient{reply: "  THEME: steady reading  \n"}
	got, err := NewEvaluator(fake).Evaluate(context.Background(), sampleSummary())
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if got != "THEME: steady reading" {
		t.Errorf("reply = %q", got)
	}
	if len(fake.messages) != 2 || fake.messages[0].Role != "system" {
		t.Errorf("unexpected messages: %+v", fake.messages)
	}
}

func TestEvaluate_Errors(t *testing.T) {
	e := NewEvaluator(&fakeClient{})
	if _, err := e.Evaluate(context.Background(), summary.Build(nil, nil, nil)); !errors.Is(err, ErrNoSessions) {
		t.Errorf("expected ErrNoSessions, got %v", err)
	}

	boom := errors.New("model offline")
	e = NewEvaluator(&fakeClient{err: boom})
	if _, err := e.Evaluate(context.Background(), sampleSummary()); !errors.Is(err, boom) {
		t.Errorf("expected client error, got %v", err)
	}
}
