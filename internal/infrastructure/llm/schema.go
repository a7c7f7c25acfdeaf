package llm

// JSON schemas for the structured completions. Declared as plain maps so the
// OpenAI client can send them verbatim and the Gemini client can rewrite them
// into its OpenAPI subset.

func stepSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"description": map[string]any{
				"type":        "string",
				"description": "A brief explanation of the reasoning step taken.",
			},
			"output": map[string]any{
				"type":        "string",
				"description": "The result or conclusion derived from this reasoning step.",
			},
		},
		"required":             []string{"description", "output"},
		"additionalProperties": false,
	}
}

func chainOfThoughtSchema() map[string]any {
	return map[string]any{
		"type":        "array",
		"items":       stepSchema(),
		"minItems":    1,
		"description": "A sequence of reasoning steps behind the answer.",
	}
}

func sentimentEnum() []string {
	return []string{"Strongly Negative", "Negative", "Neutral", "Positive", "Strongly Positive"}
}

// reportSchema constrains the generator's output to a structured sentiment
// report. Citations are ordinal digest indices.
func reportSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"chain_of_thought": chainOfThoughtSchema(),
			"report": map[string]any{
				"type":        "string",
				"description": "A detailed analytical report on the asset's market sentiment, grounded in the chain of thought. No in-text citations.",
			},
			"current_sentiment": map[string]any{
				"type": "string",
				"enum": sentimentEnum(),
			},
			"future_sentiment": map[string]any{
				"type":        "string",
				"enum":        sentimentEnum(),
				"description": "Projected future sentiment; omit when the articles carry no forward-looking signal.",
			},
			"citations": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "integer"},
				"description": "Integer ids of the news articles supporting the report's conclusions.",
			},
		},
		"required":             []string{"chain_of_thought", "report", "current_sentiment", "citations"},
		"additionalProperties": false,
	}
}

// verdictSchema constrains a critic grading response. Criticisms are required
// exactly when the check fails.
func verdictSchema(passedDescription string) map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"chain_of_thought": chainOfThoughtSchema(),
			"passed": map[string]any{
				"type":        "boolean",
				"description": passedDescription,
			},
			"criticisms": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Specific, actionable criticisms; required when passed is false, omitted when it is true.",
			},
		},
		"required":             []string{"chain_of_thought", "passed"},
		"additionalProperties": false,
	}
}
