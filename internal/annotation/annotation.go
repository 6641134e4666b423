package annotation

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/AmitMY/chimera/internal/util"
	"github.com/AmitMY/chimera/pkg/ai"
	"github.com/AmitMY/chimera/pkg/common"
)

var (
	ErrNotFound        = errors.New("annotation record not found")
	ErrInvalidJudgment = errors.New("invalid judgment")
)

// Store holds the manual-evaluation records in memory. Records are addressed
// by their position since ids are not unique across a sample file.
type Store struct {
	mu      sync.RWMutex
	samples []common.Sample
}

func NewStore() *Store {
	return &Store{samples: []common.Sample{}}
}

// Parse decodes a sample file. Malformed JSON is repaired where possible;
// unknown verdicts are rejected.
func Parse(data []byte) ([]common.Sample, error) {
	var samples []common.Sample
	if err := ai.UnmarshalFlexible(string(data), &samples); err != nil {
		return nil, fmt.Errorf("failed to parse samples: %w", err)
	}
	for i, s := range samples {
		for j, t := range s.RDF {
			if t.Judgment != nil && !t.Judgment.Valid() {
				return nil, fmt.Errorf("%w %q in record %d triple %d", ErrInvalidJudgment, *t.Judgment, i, j)
			}
		}
	}
	if samples == nil {
		samples = []common.Sample{}
	}
	return samples, nil
}

// Replace swaps all records for samples.
func (s *Store) Replace(samples []common.Sample) {
	s.mu.Lock()
	s.samples = samples
	s.mu.Unlock()
}

// Records returns a copy of every record.
func (s *Store) Records() []common.Sample {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]common.Sample, len(s.samples))
	for i, sample := range s.samples {
		out[i] = cloneSample(sample)
	}
	return out
}

// SetJudgment records the verdict for triple number triple of record index.
func (s *Store) SetJudgment(index, triple int, judgment common.Judgment) (common.Sample, error) {
	if !judgment.Valid() {
		return common.Sample{}, fmt.Errorf("%w %q", ErrInvalidJudgment, judgment)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.samples) {
		return common.Sample{}, fmt.Errorf("%w: record %d", ErrNotFound, index)
	}
	rdf := s.samples[index].RDF
	if triple < 0 || triple >= len(rdf) {
		return common.Sample{}, fmt.Errorf("%w: triple %d of record %d", ErrNotFound, triple, index)
	}
	rdf[triple].Judgment = &judgment
	return cloneSample(s.samples[index]), nil
}

// SetHal stores the hallucination count of record index. Input that is not
// a number is stored as 0.
func (s *Store) SetHal(index int, value string) (common.Sample, error) {
	hal := util.CoerceNumber(value)

	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.samples) {
		return common.Sample{}, fmt.Errorf("%w: record %d", ErrNotFound, index)
	}
	s.samples[index].Hal = &hal
	return cloneSample(s.samples[index]), nil
}

// Export encodes every record the way the sample file is read.
func (s *Store) Export() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return json.Marshal(s.samples)
}

// Progress counts judged triples against all triples.
func (s *Store) Progress() (judged, total int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sample := range s.samples {
		for _, t := range sample.RDF {
			total++
			if t.Judgment != nil {
				judged++
			}
		}
	}
	return judged, total
}

func cloneSample(s common.Sample) common.Sample {
	s.RDF = slices.Clone(s.RDF)
	for i, t := range s.RDF {
		if t.Judgment != nil {
			j := *t.Judgment
			s.RDF[i].Judgment = &j
		}
	}
	if s.Hal != nil {
		hal := *s.Hal
		s.Hal = &hal
	}
	return s
}
