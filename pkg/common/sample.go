package common

import (
	"encoding/json"
	"fmt"
)

// Judgment is a human verdict on whether a triple is realized in a sentence.
type Judgment string

const (
	JudgmentYes   Judgment = "yes"
	JudgmentNo    Judgment = "no"
	JudgmentNoLex Judgment = "no-lex"
	JudgmentNoReg Judgment = "no-reg"
)

// Judgments lists the accepted verdicts in display order.
var Judgments = []Judgment{JudgmentYes, JudgmentNo, JudgmentNoLex, JudgmentNoReg}

// Valid reports whether j is one of the accepted verdicts.
func (j Judgment) Valid() bool {
	for _, v := range Judgments {
		if j == v {
			return true
		}
	}
	return false
}

// JudgedTriple is a triple with an optional verdict. It travels as a four
// element array; the verdict slot is null (or missing) when unjudged.
type JudgedTriple struct {
	Triple
	Judgment *Judgment
}

// MarshalJSON encodes the judged triple as [s, r, o, judgment].
func (t JudgedTriple) MarshalJSON() ([]byte, error) {
	var j any
	if t.Judgment != nil {
		j = string(*t.Judgment)
	}
	return json.Marshal([4]any{t.Subject, t.Relation, t.Object, j})
}

// UnmarshalJSON decodes [s, r, o] or [s, r, o, judgment].
func (t *JudgedTriple) UnmarshalJSON(data []byte) error {
	var raw []*string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("judged triple must be an array: %w", err)
	}
	if len(raw) != 3 && len(raw) != 4 {
		return fmt.Errorf("judged triple must have 3 or 4 elements, got %d", len(raw))
	}
	for i := 0; i < 3; i++ {
		if raw[i] == nil {
			return fmt.Errorf("judged triple element %d is null", i)
		}
	}
	t.Subject, t.Relation, t.Object = *raw[0], *raw[1], *raw[2]
	t.Judgment = nil
	if len(raw) == 4 && raw[3] != nil {
		j := Judgment(*raw[3])
		t.Judgment = &j
	}
	return nil
}

// Sample is one manual-evaluation record: a generated sentence, the triples
// it was generated from with their verdicts, and a hallucination count.
type Sample struct {
	ID  int            `json:"id"`
	Sen string         `json:"sen"`
	RDF []JudgedTriple `json:"rdf"`
	Hal *float64       `json:"hal"`
}
