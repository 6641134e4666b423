package annotation

import (
	"reflect"

	"github.com/AmitMY/chimera/pkg/common"

	"github.com/invopop/jsonschema"
)

var judgedTripleType = reflect.TypeOf(common.JudgedTriple{})

// Schema describes the sample file: an array of records whose triples are
// [subject, relation, object, verdict] tuples.
func Schema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		DoNotReference: true,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t == judgedTripleType {
				return judgedTripleSchema()
			}
			return nil
		},
	}
	return reflector.Reflect(&[]common.Sample{})
}

func judgedTripleSchema() *jsonschema.Schema {
	verdicts := make([]any, 0, len(common.Judgments)+1)
	for _, j := range common.Judgments {
		verdicts = append(verdicts, string(j))
	}
	verdicts = append(verdicts, nil)

	return &jsonschema.Schema{
		Type:        "array",
		Description: "subject, relation, object and the verdict, null while unjudged",
		PrefixItems: []*jsonschema.Schema{
			{Type: "string"},
			{Type: "string"},
			{Type: "string"},
			{Enum: verdicts},
		},
	}
}
