package detection

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"honeypot-lab/pkg/logger"
)

func testArtifact() ModelArtifact {
	return ModelArtifact{
		Version:    "test",
		Vocabulary: map[string]int{"lottery": 0, "prize": 1, "lottery prize": 2},
		IDF:        []float64{1, 1, 1},
		Coef:       []float64{2, 2, 2},
		Intercept:  -1,
		NgramMin:   1,
		NgramMax:   2,
		StopWords:  []string{"the"},
	}
}

func writeArtifact(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func sigmoid(z float64) float64 { return 1 / (1 + math.Exp(-z)) }

func TestLogisticModelPredictProba(t *testing.T) {
	m, err := NewLogisticModel(testArtifact())
	require.NoError(t, err)

	p, err := m.PredictProba("Lottery prize!")
	require.NoError(t, err)
	// three active features of weight 1, L2-normalised
	assert.InDelta(t, sigmoid(-1+2*3/math.Sqrt(3)), p, 1e-9)

	p, err = m.PredictProba("")
	require.NoError(t, err)
	assert.InDelta(t, sigmoid(-1), p, 1e-9)
}

func TestLogisticModelStopWordsRemovedBeforeNgrams(t *testing.T) {
	a := testArtifact()
	a.Vocabulary = map[string]int{"the lottery": 0, "lottery": 1, "prize": 2}
	m, err := NewLogisticModel(a)
	require.NoError(t, err)

	counts := m.termCounts("the lottery")
	assert.Equal(t, map[int]int{1: 1}, counts)
}

func TestLogisticModelSublinearTF(t *testing.T) {
	a := testArtifact()
	a.SublinearTF = true
	a.NgramMax = 1
	m, err := NewLogisticModel(a)
	require.NoError(t, err)

	p, err := m.PredictProba("lottery lottery")
	require.NoError(t, err)
	assert.InDelta(t, sigmoid(-1+2), p, 1e-9)
}

func TestNewLogisticModelRejectsInconsistentArtifacts(t *testing.T) {
	a := testArtifact()
	a.Coef = a.Coef[:2]
	_, err := NewLogisticModel(a)
	assert.ErrorContains(t, err, "length mismatch")

	a = testArtifact()
	a.Vocabulary["jackpot"] = 9
	_, err = NewLogisticModel(a)
	assert.ErrorContains(t, err, "out of range")

	_, err = NewLogisticModel(ModelArtifact{})
	assert.ErrorContains(t, err, "empty vocabulary")
}

func TestPredictProbaInferenceError(t *testing.T) {
	m := &LogisticModel{
		vocabulary: map[string]int{"scam": 5},
		idf:        []float64{1},
		coef:       []float64{1},
		ngramMin:   1,
		ngramMax:   1,
	}
	_, err := m.PredictProba("scam")
	assert.ErrorIs(t, err, ErrInference)

	s := NewStatisticalScorer(m, logger.NewNop())
	assert.Equal(t, 0, s.Score("scam"))
}

func TestLoadModelExportedArtifact(t *testing.T) {
	m, err := LoadModel(filepath.Join("testdata", "exported_model.json"))
	require.NoError(t, err)

	p, err := m.PredictProba("Verify your account now")
	require.NoError(t, err)
	// account, verify and "verify account" once each
	norm := math.Sqrt(1.5*1.5 + 1.2*1.2 + 2.0*2.0)
	z := -1.25 + (0.8*1.5+1.1*1.2+1.6*2.0)/norm
	assert.InDelta(t, sigmoid(z), p, 1e-9)
}

func TestLoadStatisticalScorer(t *testing.T) {
	log := logger.NewNop()

	t.Run("missing artifact", func(t *testing.T) {
		s := LoadStatisticalScorer(filepath.Join(t.TempDir(), "nope.json"), log)
		assert.False(t, s.Available())
		assert.Equal(t, 0, s.Score("lottery prize"))
	})

	t.Run("empty path", func(t *testing.T) {
		s := LoadStatisticalScorer("", log)
		assert.False(t, s.Available())
		assert.Equal(t, 0, s.Score("lottery prize"))
	})

	t.Run("malformed artifact", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "model.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
		s := LoadStatisticalScorer(path, log)
		assert.False(t, s.Available())
		assert.Equal(t, 0, s.Score("anything"))
	})

	t.Run("loaded", func(t *testing.T) {
		s := LoadStatisticalScorer(writeArtifact(t, testArtifact()), log)
		require.True(t, s.Available())

		want := int(math.RoundToEven(sigmoid(-1+2*3/math.Sqrt(3)) * 100))
		assert.Equal(t, want, s.Score("lottery prize"))
		assert.Equal(t, 27, s.Score(""))
	})
}
