package llm

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"SentimentReporter/internal/domain"
)

// scriptedModel returns canned content and records the payloads it was given.
type scriptedModel struct {
	content    string
	err        error
	lastSystem string
	lastUser   string
	lastSchema map[string]any
}

func (m *scriptedModel) Complete(ctx context.Context, system, user string) (string, error) {
	m.lastSystem, m.lastUser = system, user
	return m.content, m.err
}

func (m *scriptedModel) CompleteStructured(ctx context.Context, system, user string, schema map[string]any, out any) error {
	m.lastSystem, m.lastUser, m.lastSchema = system, user, schema
	if m.err != nil {
		return m.err
	}
	return json.Unmarshal([]byte(m.content), out)
}

var roleAsset = domain.Asset{
	Type:     domain.AssetCrypto,
	Symbol:   "BTCUSDT",
	Exchange: domain.ExchangeBinance,
	Alias:    "Bitcoin",
}

func TestGeneratorRoleDecodesReport(t *testing.T) {
	t.Parallel()

	model := &scriptedModel{content: `{
		"chain_of_thought": [{"description": "read articles", "output": "bullish"}],
		"report": "Sentiment is positive.",
		"current_sentiment": "Positive",
		"citations": [0, 2]
	}`}
	role := NewGeneratorRole(model)

	report, err := role.GenerateReport(context.Background(), roleAsset, "digest text", domain.Conversation{})
	if err != nil {
		t.Fatalf("GenerateReport error: %v", err)
	}

	if report.CurrentSentiment != domain.SentimentPositive {
		t.Fatalf("unexpected sentiment: %q", report.CurrentSentiment)
	}
	if len(report.Citations) != 2 {
		t.Fatalf("citations not decoded: %v", report.Citations)
	}
	if !strings.Contains(model.lastSystem, "Bitcoin") {
		t.Fatal("asset alias missing from system prompt")
	}
	if !strings.Contains(model.lastUser, "digest text") {
		t.Fatal("digest missing from user payload")
	}
}

func TestGeneratorRoleRejectsEmptyChainOfThought(t *testing.T) {
	t.Parallel()

	model := &scriptedModel{content: `{
		"chain_of_thought": [],
		"report": "text",
		"current_sentiment": "Neutral",
		"citations": []
	}`}
	role := NewGeneratorRole(model)

	if _, err := role.GenerateReport(context.Background(), roleAsset, "digest", domain.Conversation{}); err == nil {
		t.Fatal("expected rejection of empty chain of thought")
	}
}

func TestGeneratorRoleRejectsUnknownSentiment(t *testing.T) {
	t.Parallel()

	model := &scriptedModel{content: `{
		"chain_of_thought": [{"description": "d", "output": "o"}],
		"report": "text",
		"current_sentiment": "Mildly Confused",
		"citations": []
	}`}
	role := NewGeneratorRole(model)

	if _, err := role.GenerateReport(context.Background(), roleAsset, "digest", domain.Conversation{}); err == nil {
		t.Fatal("expected rejection of unknown sentiment label")
	}
}

func TestGeneratorRoleRendersPreviousAttempts(t *testing.T) {
	t.Parallel()

	var conversation domain.Conversation
	conversation.Append(domain.TurnReport, "first attempt")
	conversation.Append(domain.TurnCriticism, "Criticisms:\n-be concrete")

	model := &scriptedModel{content: `{
		"chain_of_thought": [{"description": "d", "output": "o"}],
		"report": "second attempt",
		"current_sentiment": "Neutral",
		"citations": []
	}`}
	role := NewGeneratorRole(model)

	if _, err := role.GenerateReport(context.Background(), roleAsset, "digest", conversation); err != nil {
		t.Fatalf("GenerateReport error: %v", err)
	}

	if !strings.Contains(model.lastUser, "# Previous Attempts") {
		t.Fatal("history header missing from payload")
	}
	if !strings.Contains(model.lastUser, "first attempt") || !strings.Contains(model.lastUser, "-be concrete") {
		t.Fatalf("history turns missing from payload:\n%s", model.lastUser)
	}
}

func TestCriticRoleGroundednessIncludesDigest(t *testing.T) {
	t.Parallel()

	model := &scriptedModel{content: `{"passed": true}`}
	role := NewCriticRole(model)

	verdict, err := role.GradeGroundedness(context.Background(), "the digest", "the report")
	if err != nil {
		t.Fatalf("GradeGroundedness error: %v", err)
	}
	if !verdict.Passed {
		t.Fatalf("verdict not decoded: %+v", verdict)
	}
	if !strings.Contains(model.lastUser, "the digest") || !strings.Contains(model.lastUser, "the report") {
		t.Fatalf("payload missing digest or report:\n%s", model.lastUser)
	}
}

func TestFormatterRoleStripsCodeFences(t *testing.T) {
	t.Parallel()

	model := &scriptedModel{content: "```html\n<h1>Bitcoin</h1>\n```"}
	role := NewFormatterRole(model)

	got, err := role.FormatEmail(context.Background(), roleAsset, domain.Report{Text: "report"}, nil)
	if err != nil {
		t.Fatalf("FormatEmail error: %v", err)
	}
	if got != "<h1>Bitcoin</h1>" {
		t.Fatalf("fences not stripped: %q", got)
	}
}

func TestRenderCitations(t *testing.T) {
	t.Parallel()

	docs := []domain.Document{
		{Title: "First", Link: "https://example.com/1"},
		{Title: "No link"},
	}

	got := renderCitations([]int{0, 1, 7}, docs)
	lines := strings.Split(got, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 citation lines, got %d:\n%s", len(lines), got)
	}
	if lines[0] != "[0] First (https://example.com/1)" {
		t.Fatalf("unexpected first line: %q", lines[0])
	}
	if lines[1] != "[1] No link ([Link Unavailable])" {
		t.Fatalf("unexpected second line: %q", lines[1])
	}
	if !strings.Contains(lines[2], "missing") {
		t.Fatalf("out-of-range citation not flagged: %q", lines[2])
	}

	if got := renderCitations(nil, docs); got != "(no citations)" {
		t.Fatalf("unexpected empty-citation rendering: %q", got)
	}
}

func TestSanitizeHTML(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"<p>plain</p>", "<p>plain</p>"},
		{"```html\n<p>fenced</p>\n```", "<p>fenced</p>"},
		{"```\n<p>bare fence</p>\n```", "<p>bare fence</p>"},
		{"  <p>padded</p>  ", "<p>padded</p>"},
	}
	for _, tc := range cases {
		if got := sanitizeHTML(tc.in); got != tc.want {
			t.Fatalf("sanitizeHTML(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
