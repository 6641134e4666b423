package ai

import "fmt"

// Realization is the structured answer expected from a model for one plan.
type Realization struct {
	Text string `json:"text" jsonschema:"description=The plan realized as fluent English text"`
}

const RealizeSystemPrompt = `You turn sentence plans of an RDF knowledge graph into fluent English.

Rules:
- Entities are written as tokens like ENT_EIFFEL_TOWER_ENT. Copy every entity token verbatim, exactly once or more, and never translate, split or re-case it.
- Facts inside one pair of brackets [ ... ] belong to the same sentence.
- A period between bracket groups starts a new sentence.
- Relations are given in their original camelCase or snake_case form; express them naturally.
- Do not add facts that are not in the plan.

Answer with JSON only.`

// RealizePrompt builds the user prompt for a single plan.
func RealizePrompt(plan string) string {
	return fmt.Sprintf("Plan:\n%s\n\nReturn {\"text\": \"...\"} with the realized text.", plan)
}
