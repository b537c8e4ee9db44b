package detection

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"regexp"
	"strings"
)

var (
	// ErrModelUnavailable is returned when no classifier artifact could be loaded
	ErrModelUnavailable = errors.New("classifier model unavailable")
	// ErrInference is returned when a loaded model cannot score an input
	ErrInference = errors.New("classifier inference failed")
)

// tokenPattern matches the vectorizer's default token rule: two or more word characters
var tokenPattern = regexp.MustCompile(`\b\w\w+\b`)

// ModelArtifact is the JSON export of the offline TF-IDF + logistic regression pipeline.
// training/export_model.py writes it from the scam_model.joblib that train.py saves:
// vocabulary and idf come from the fitted TfidfVectorizer (vocabulary_, idf_,
// ngram_range, get_stop_words(), sublinear_tf) and coef and intercept from row 0
// of the LogisticRegression. Only lowercase, the default token pattern and L2 norm
// are supported.
type ModelArtifact struct {
	Version     string         `json:"version"`
	Vocabulary  map[string]int `json:"vocabulary"`
	IDF         []float64      `json:"idf"`
	Coef        []float64      `json:"coef"`
	Intercept   float64        `json:"intercept"`
	NgramMin    int            `json:"ngram_min"`
	NgramMax    int            `json:"ngram_max"`
	StopWords   []string       `json:"stop_words,omitempty"`
	SublinearTF bool           `json:"sublinear_tf,omitempty"`
}

// LogisticModel is a loaded, read-only text classifier. Safe for concurrent use.
type LogisticModel struct {
	vocabulary  map[string]int
	idf         []float64
	coef        []float64
	intercept   float64
	ngramMin    int
	ngramMax    int
	stopWords   map[string]struct{}
	sublinearTF bool
}

// LoadModel reads and validates a model artifact from path
func LoadModel(path string) (*LogisticModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model artifact: %w", err)
	}

	var artifact ModelArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("failed to decode model artifact: %w", err)
	}

	return NewLogisticModel(artifact)
}

// NewLogisticModel builds a model from an artifact, rejecting inconsistent shapes
func NewLogisticModel(a ModelArtifact) (*LogisticModel, error) {
	if len(a.Vocabulary) == 0 {
		return nil, fmt.Errorf("model artifact has an empty vocabulary")
	}
	if len(a.IDF) != len(a.Coef) {
		return nil, fmt.Errorf("model artifact idf/coef length mismatch: %d != %d", len(a.IDF), len(a.Coef))
	}
	for term, idx := range a.Vocabulary {
		if idx < 0 || idx >= len(a.Coef) {
			return nil, fmt.Errorf("vocabulary term %q has out of range index %d", term, idx)
		}
	}

	if a.NgramMin <= 0 {
		a.NgramMin = 1
	}
	if a.NgramMax < a.NgramMin {
		a.NgramMax = a.NgramMin
	}

	stop := make(map[string]struct{}, len(a.StopWords))
	for _, w := range a.StopWords {
		stop[w] = struct{}{}
	}

	return &LogisticModel{
		vocabulary:  a.Vocabulary,
		idf:         a.IDF,
		coef:        a.Coef,
		intercept:   a.Intercept,
		ngramMin:    a.NgramMin,
		ngramMax:    a.NgramMax,
		stopWords:   stop,
		sublinearTF: a.SublinearTF,
	}, nil
}

// PredictProba returns the positive-class probability for text
func (m *LogisticModel) PredictProba(text string) (float64, error) {
	counts := m.termCounts(text)

	weights := make(map[int]float64, len(counts))
	var norm float64
	for idx, tf := range counts {
		if idx < 0 || idx >= len(m.idf) {
			return 0, fmt.Errorf("%w: feature index %d out of range", ErrInference, idx)
		}
		v := float64(tf)
		if m.sublinearTF {
			v = 1 + math.Log(v)
		}
		v *= m.idf[idx]
		weights[idx] = v
		norm += v * v
	}

	z := m.intercept
	if norm > 0 {
		norm = math.Sqrt(norm)
		for idx, v := range weights {
			z += m.coef[idx] * v / norm
		}
	}

	p := 1 / (1 + math.Exp(-z))
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return 0, fmt.Errorf("%w: non-finite probability", ErrInference)
	}
	return p, nil
}

// termCounts tokenizes text and counts vocabulary n-grams by feature index
func (m *LogisticModel) termCounts(text string) map[int]int {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	tokens := raw[:0]
	for _, t := range raw {
		if _, stop := m.stopWords[t]; !stop {
			tokens = append(tokens, t)
		}
	}

	counts := make(map[int]int)
	for n := m.ngramMin; n <= m.ngramMax; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			gram := tokens[i]
			if n > 1 {
				gram = strings.Join(tokens[i:i+n], " ")
			}
			if idx, ok := m.vocabulary[gram]; ok {
				counts[idx]++
			}
		}
	}
	return counts
}
