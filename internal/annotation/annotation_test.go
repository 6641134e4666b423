package annotation

import (
	"encoding/json"
	"testing"

	"github.com/AmitMY/chimera/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFile = `[
	{"id": 1, "sen": "The Eiffel Tower is in Paris.", "rdf": [["Eiffel_Tower", "location", "Paris"]], "hal": null},
	{"id": 1, "sen": "Paris is in France.", "rdf": [["Paris", "country", "France", "yes"], ["Paris", "capital", "France", null]], "hal": 2}
]`

func loadedStore(t *testing.T) *Store {
	t.Helper()
	samples, err := Parse([]byte(sampleFile))
	require.NoError(t, err)
	s := NewStore()
	s.Replace(samples)
	return s
}

func TestParse(t *testing.T) {
	samples, err := Parse([]byte(sampleFile))
	require.NoError(t, err)
	require.Len(t, samples, 2)

	assert.Equal(t, samples[0].ID, samples[1].ID)
	assert.Nil(t, samples[0].Hal)
	assert.Nil(t, samples[0].RDF[0].Judgment)
	require.NotNil(t, samples[1].RDF[0].Judgment)
	assert.Equal(t, common.JudgmentYes, *samples[1].RDF[0].Judgment)
}

func TestParseRepairsTrailingComma(t *testing.T) {
	samples, err := Parse([]byte(`[{"id": 3, "sen": "x", "rdf": [["A", "r", "B"]], "hal": null},]`))
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.Equal(t, 3, samples[0].ID)
}

func TestParseRejectsUnknownVerdict(t *testing.T) {
	_, err := Parse([]byte(`[{"id": 1, "sen": "x", "rdf": [["A", "r", "B", "maybe"]], "hal": null}]`))
	assert.ErrorIs(t, err, ErrInvalidJudgment)
}

func TestSetJudgment(t *testing.T) {
	s := loadedStore(t)

	got, err := s.SetJudgment(0, 0, common.JudgmentNoLex)
	require.NoError(t, err)
	assert.Equal(t, common.JudgmentNoLex, *got.RDF[0].Judgment)

	// Duplicate ids do not matter, records are positional.
	assert.Nil(t, s.Records()[1].RDF[1].Judgment)

	_, err = s.SetJudgment(0, 0, common.Judgment("maybe"))
	assert.ErrorIs(t, err, ErrInvalidJudgment)
	_, err = s.SetJudgment(2, 0, common.JudgmentYes)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.SetJudgment(0, 1, common.JudgmentYes)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetHalCoerces(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  float64
	}{
		{name: "number", value: "3", want: 3},
		{name: "decimal", value: "1.5", want: 1.5},
		{name: "text", value: "many", want: 0},
		{name: "blank", value: "", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := loadedStore(t)
			got, err := s.SetHal(0, tt.value)
			require.NoError(t, err)
			require.NotNil(t, got.Hal)
			assert.Equal(t, tt.want, *got.Hal)
		})
	}

	_, err := loadedStore(t).SetHal(-1, "1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecordsAreCopies(t *testing.T) {
	s := loadedStore(t)

	records := s.Records()
	j := common.JudgmentNo
	records[0].RDF[0].Judgment = &j

	assert.Nil(t, s.Records()[0].RDF[0].Judgment)
}

func TestExportKeepsFileShape(t *testing.T) {
	s := loadedStore(t)
	_, err := s.SetJudgment(0, 0, common.JudgmentYes)
	require.NoError(t, err)

	data, err := s.Export()
	require.NoError(t, err)

	var raw []map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, []any{"Eiffel_Tower", "location", "Paris", "yes"}, raw[0]["rdf"].([]any)[0])
	assert.Nil(t, raw[0]["hal"])
	assert.Equal(t, []any{"Paris", "capital", "France", nil}, raw[1]["rdf"].([]any)[1])

	judged, total := s.Progress()
	assert.Equal(t, 2, judged)
	assert.Equal(t, 3, total)
}

func TestSchema(t *testing.T) {
	data, err := json.Marshal(Schema())
	require.NoError(t, err)

	assert.Contains(t, string(data), `"prefixItems"`)
	assert.Contains(t, string(data), `"no-lex"`)
	assert.Contains(t, string(data), `"sen"`)
}
