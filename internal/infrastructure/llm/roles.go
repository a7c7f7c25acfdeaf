package llm

import (
	"context"
	"fmt"
	"strings"

	"SentimentReporter/internal/domain"
	"SentimentReporter/internal/ports"
)

// GeneratorRole produces structured sentiment reports with a chat model.
type GeneratorRole struct {
	model ports.ChatModel
}

var _ ports.Generator = (*GeneratorRole)(nil)

// NewGeneratorRole wraps a chat model in the generator role.
func NewGeneratorRole(model ports.ChatModel) *GeneratorRole {
	return &GeneratorRole{model: model}
}

// GenerateReport asks the model for a fresh report. The full conversation is
// rendered into the payload so retry rounds can address prior criticisms.
func (g *GeneratorRole) GenerateReport(ctx context.Context, asset domain.Asset, digest string, conversation domain.Conversation) (domain.Report, error) {
	system := fmt.Sprintf(analysePrompt, asset.Alias)
	user := "<news_articles>:\n" + digest + renderConversation(conversation)

	var report domain.Report
	if err := g.model.CompleteStructured(ctx, system, user, reportSchema(), &report); err != nil {
		return domain.Report{}, fmt.Errorf("generate report: %w", err)
	}
	if len(report.ChainOfThought) == 0 {
		return domain.Report{}, fmt.Errorf("generate report: empty chain of thought")
	}
	if !report.CurrentSentiment.Valid() {
		return domain.Report{}, fmt.Errorf("generate report: invalid sentiment %q", report.CurrentSentiment)
	}
	return report, nil
}

// CriticRole grades reports for usefulness and groundedness.
type CriticRole struct {
	model ports.ChatModel
}

var _ ports.Critic = (*CriticRole)(nil)

// NewCriticRole wraps a chat model in the critic role.
func NewCriticRole(model ports.ChatModel) *CriticRole {
	return &CriticRole{model: model}
}

// GradeUsefulness checks whether the report clearly states current (and,
// where applicable, future) sentiment.
func (c *CriticRole) GradeUsefulness(ctx context.Context, asset domain.Asset, report string) (domain.Verdict, error) {
	system := fmt.Sprintf(usefulnessPrompt, asset.Alias, asset.Alias, asset.Alias)
	schema := verdictSchema("True when the report clearly addresses the current and, if applicable, future market sentiment.")

	var verdict domain.Verdict
	if err := c.model.CompleteStructured(ctx, system, report, schema, &verdict); err != nil {
		return domain.Verdict{}, fmt.Errorf("grade usefulness: %w", err)
	}
	return verdict, nil
}

// GradeGroundedness checks whether the report's claims are supported by the
// digest's articles.
func (c *CriticRole) GradeGroundedness(ctx context.Context, digest, report string) (domain.Verdict, error) {
	schema := verdictSchema("True when the report is clearly supported by the content of the cited news articles.")
	user := report + "\n\n<news_articles>:\n" + digest

	var verdict domain.Verdict
	if err := c.model.CompleteStructured(ctx, groundednessPrompt, user, schema, &verdict); err != nil {
		return domain.Verdict{}, fmt.Errorf("grade groundedness: %w", err)
	}
	return verdict, nil
}

// FormatterRole renders an accepted report into an HTML newsletter section.
type FormatterRole struct {
	model ports.ChatModel
}

var _ ports.Formatter = (*FormatterRole)(nil)

// NewFormatterRole wraps a chat model in the formatter role.
func NewFormatterRole(model ports.ChatModel) *FormatterRole {
	return &FormatterRole{model: model}
}

// FormatEmail asks the model for an HTML section and strips any code fences
// the model wraps around it.
func (f *FormatterRole) FormatEmail(ctx context.Context, asset domain.Asset, report domain.Report, docs []domain.Document) (string, error) {
	system := fmt.Sprintf(emailFormatPrompt, asset.Alias)
	user := report.Text + "\n\n<citations>:\n" + renderCitations(report.Citations, docs)

	content, err := f.model.Complete(ctx, system, user)
	if err != nil {
		return "", fmt.Errorf("format email: %w", err)
	}
	return sanitizeHTML(content), nil
}

// renderConversation serializes prior report/criticism turns into the
// generator payload.
func renderConversation(conversation domain.Conversation) string {
	turns := conversation.Turns()
	if len(turns) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n\n# Previous Attempts\n")
	for _, turn := range turns {
		if turn.Role == domain.TurnReport {
			b.WriteString("\nPrevious report:\n")
		} else {
			b.WriteString("\n")
		}
		b.WriteString(turn.Text)
		b.WriteString("\n")
	}
	return b.String()
}

// renderCitations lists each cited article's id, title and link so the
// formatter can build the references section.
func renderCitations(citations []int, docs []domain.Document) string {
	if len(citations) == 0 {
		return "(no citations)"
	}

	lines := make([]string, 0, len(citations))
	for _, id := range citations {
		if id < 0 || id >= len(docs) {
			lines = append(lines, fmt.Sprintf("[%d] [Source ID %d missing from citations]", id, id))
			continue
		}
		link := docs[id].Link
		if link == "" {
			link = "[Link Unavailable]"
		}
		lines = append(lines, fmt.Sprintf("[%d] %s (%s)", id, docs[id].Title, link))
	}
	return strings.Join(lines, "\n")
}

// sanitizeHTML removes markdown code fences and a leading "html" language tag
// that chat models tend to wrap raw HTML in.
func sanitizeHTML(content string) string {
	content = strings.TrimSpace(content)
	content = strings.Trim(content, "`")
	content = strings.TrimPrefix(content, "html\n")
	return strings.TrimSpace(content)
}
