package domain

import "testing"

func TestConversationLastReport(t *testing.T) {
	t.Parallel()

	var c Conversation
	if _, ok := c.LastReport(); ok {
		t.Fatal("empty conversation has no last report")
	}

	c.Append(TurnReport, "first")
	c.Append(TurnCriticism, "too vague")
	c.Append(TurnReport, "second")
	c.Append(TurnCriticism, "still vague")

	got, ok := c.LastReport()
	if !ok || got != "second" {
		t.Fatalf("LastReport = %q, %v; want \"second\", true", got, ok)
	}
	if c.Len() != 4 {
		t.Fatalf("Len = %d, want 4", c.Len())
	}
}

func TestConversationTurnsReturnsCopy(t *testing.T) {
	t.Parallel()

	var c Conversation
	c.Append(TurnReport, "original")

	turns := c.Turns()
	turns[0].Text = "mutated"

	again := c.Turns()
	if again[0].Text != "original" {
		t.Fatal("Turns exposed internal state")
	}
}

func TestSentimentValid(t *testing.T) {
	t.Parallel()

	for _, s := range []Sentiment{SentimentStronglyNegative, SentimentNegative,
		SentimentNeutral, SentimentPositive, SentimentStronglyPositive} {
		if !s.Valid() {
			t.Fatalf("%q should be valid", s)
		}
	}
	if Sentiment("Bullish").Valid() {
		t.Fatal("unknown grade accepted")
	}
}
