package detection

import (
	"errors"
	"io/fs"
	"math"

	"honeypot-lab/pkg/logger"
)

// Probabilities are scaled to this range
const probabilityScale = 100

// StatisticalScorer turns an optional classifier's probability into a [0,100] score.
// A nil model means the classifier is unavailable and every score is 0.
type StatisticalScorer struct {
	model  *LogisticModel
	logger *logger.Logger
}

// NewStatisticalScorer wraps an already loaded model; model may be nil
func NewStatisticalScorer(model *LogisticModel, log *logger.Logger) *StatisticalScorer {
	return &StatisticalScorer{
		model:  model,
		logger: log.WithComponent("statistical-scorer"),
	}
}

// LoadStatisticalScorer loads the model at path once. Absence or a broken artifact
// degrades to an unavailable scorer instead of failing.
func LoadStatisticalScorer(path string, log *logger.Logger) *StatisticalScorer {
	log = log.WithComponent("statistical-scorer")

	if path == "" {
		log.Info().Msg("no classifier artifact configured, statistical scoring disabled")
		return &StatisticalScorer{logger: log}
	}

	model, err := LoadModel(path)
	switch {
	case err == nil:
		log.Info().Str("path", path).Int("features", len(model.coef)).Msg("classifier loaded")
	case errors.Is(err, fs.ErrNotExist):
		log.Info().Str("path", path).Msg("classifier artifact not found, statistical scoring disabled")
	default:
		log.Warn().Err(err).Str("path", path).Msg("failed to load classifier, statistical scoring disabled")
	}

	return &StatisticalScorer{model: model, logger: log}
}

// Available reports whether a classifier is loaded
func (s *StatisticalScorer) Available() bool {
	return s.model != nil
}

// Score returns the classifier score, or 0 when unavailable or on inference failure
func (s *StatisticalScorer) Score(text string) int {
	score, err := s.score(text)
	if err != nil {
		if !errors.Is(err, ErrModelUnavailable) {
			s.logger.Warn().Err(err).Msg("classifier inference failed, scoring 0")
		}
		return 0
	}
	return score
}

func (s *StatisticalScorer) score(text string) (int, error) {
	if s.model == nil {
		return 0, ErrModelUnavailable
	}

	p, err := s.model.PredictProba(text)
	if err != nil {
		return 0, err
	}

	scaled := int(math.RoundToEven(p * probabilityScale))
	return min(max(scaled, 0), maxScore), nil
}
