package ai

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func TestUnmarshalFlexible(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "valid json", input: `{"text":"ENT_A_ENT is big."}`, want: "ENT_A_ENT is big."},
		{name: "unquoted key and single quotes", input: `{text: 'hello'}`, want: "hello"},
		{name: "trailing comma", input: `{"text":"hello",}`, want: "hello"},
		{name: "double encoded", input: `"{\"text\": \"hello\"}"`, want: "hello"},
		{name: "code fence", input: "```json\n{\"text\": \"hello\"}\n```", want: "hello"},
		{name: "missing end brace", input: `{"text":"hello"`, want: "hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Realization
			if err := UnmarshalFlexible(tt.input, &got); err != nil {
				t.Fatalf("UnmarshalFlexible() error = %v", err)
			}
			if got.Text != tt.want {
				t.Fatalf("UnmarshalFlexible() = %q, want %q", got.Text, tt.want)
			}
		})
	}
}

func TestGenerateSchema(t *testing.T) {
	raw, err := json.Marshal(GenerateSchema(&Realization{}))
	if err != nil {
		t.Fatalf("marshal schema: %v", err)
	}
	schema := string(raw)
	if !strings.Contains(schema, `"text"`) {
		t.Fatalf("schema misses text property: %s", schema)
	}
	if !strings.Contains(schema, `"additionalProperties":false`) {
		t.Fatalf("schema allows additional properties: %s", schema)
	}
}

func TestPlansToTranslate(t *testing.T) {
	plans := []string{"a", "b", "c"}

	if got := PlansToTranslate(plans, TranslateOptions{}); !reflect.DeepEqual(got, plans) {
		t.Fatalf("PlansToTranslate() = %v, want all plans", got)
	}
	if got := PlansToTranslate(plans, TranslateOptions{BestOnly: true}); !reflect.DeepEqual(got, []string{"a"}) {
		t.Fatalf("PlansToTranslate(best only) = %v, want [a]", got)
	}
	if got := PlansToTranslate(nil, TranslateOptions{BestOnly: true}); len(got) != 0 {
		t.Fatalf("PlansToTranslate(nil) = %v", got)
	}
}
