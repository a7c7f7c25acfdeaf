package domain

// TurnRole tags a conversation turn as generator output or critic feedback.
type TurnRole string

const (
	TurnReport    TurnRole = "report"
	TurnCriticism TurnRole = "criticism"
)

// Turn is one entry in the generator/critic exchange.
type Turn struct {
	Role TurnRole
	Text string
}

// Conversation is the append-only exchange between generator and critic for
// one asset run. It is never reordered or truncated; its length drives the
// retry-budget check.
type Conversation struct {
	turns []Turn
}

// Append adds a turn to the end of the conversation.
func (c *Conversation) Append(role TurnRole, text string) {
	c.turns = append(c.turns, Turn{Role: role, Text: text})
}

// Len returns the total number of turns.
func (c *Conversation) Len() int {
	return len(c.turns)
}

// Turns returns a copy of the recorded turns in order.
func (c *Conversation) Turns() []Turn {
	out := make([]Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

// LastReport returns the text of the most recent report turn. The last report
// is always the candidate under evaluation.
func (c *Conversation) LastReport() (string, bool) {
	for i := len(c.turns) - 1; i >= 0; i-- {
		if c.turns[i].Role == TurnReport {
			return c.turns[i].Text, true
		}
	}
	return "", false
}
