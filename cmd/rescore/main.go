package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"honeypot-lab/internal/config"
	"honeypot-lab/internal/domain/models"
	"honeypot-lab/internal/domain/services/detection"
	"honeypot-lab/internal/domain/services/ledger"
	"honeypot-lab/pkg/logger"
)

// Verdict is one re-scored counterparty turn
type Verdict struct {
	SessionID string                `json:"session_id"`
	Timestamp time.Time             `json:"timestamp"`
	Text      string                `json:"text"`
	Score     models.ScoreResult    `json:"score"`
	Extracted models.ExtractedIntel `json:"extracted"`
}

// Summary aggregates a rescoring run
type Summary struct {
	Sessions  int `json:"sessions"`
	Messages  int `json:"messages"`
	Detected  int `json:"detected"`
	Artifacts int `json:"artifacts"`
}

func main() {
	configPath := flag.String("config", "", "path to config file")
	journalPath := flag.String("journal", "", "JSONL journal to replay (default: journal.path from config)")
	verbose := flag.Bool("v", false, "print one verdict per counterparty message")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewWithWriter(logger.Config{
		Level:  cfg.Logger.Level,
		Format: "console",
	}, os.Stderr).WithComponent("rescore")

	path := *journalPath
	if path == "" {
		path = cfg.Journal.Path
	}

	records, err := ledger.ReadJournal(path)
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("failed to read journal")
	}

	engine := detection.NewEngine(
		detection.NewRuleScorer(),
		detection.LoadStatisticalScorer(cfg.Detection.ModelPath, log),
		log,
	)

	summary, err := rescore(records, engine, detection.NewExtractor(), os.Stdout, *verbose)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to write verdicts")
	}

	log.Info().
		Str("path", path).
		Int("sessions", summary.Sessions).
		Int("messages", summary.Messages).
		Int("detected", summary.Detected).
		Int("artifacts", summary.Artifacts).
		Msg("rescore complete")
}

// rescore runs every counterparty record through the engine in journal order
func rescore(records []models.EventRecord, engine *detection.Engine, extractor *detection.Extractor, out io.Writer, verbose bool) (Summary, error) {
	enc := json.NewEncoder(out)
	sessions := make(map[string]struct{})
	var summary Summary

	for _, rec := range records {
		sessions[rec.SessionID] = struct{}{}
		if rec.Role != models.RoleCounterparty {
			continue
		}

		v := Verdict{
			SessionID: rec.SessionID,
			Timestamp: rec.Timestamp,
			Text:      rec.Text,
			Score:     engine.Decide(rec.Text),
			Extracted: extractor.Extract(rec.Text),
		}

		summary.Messages++
		summary.Artifacts += v.Extracted.Count()
		if v.Score.Detected {
			summary.Detected++
		}

		if verbose {
			if err := enc.Encode(v); err != nil {
				return summary, err
			}
		}
	}
	summary.Sessions = len(sessions)

	return summary, enc.Encode(summary)
}
