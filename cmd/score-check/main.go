// Command score-check scores one customer/invoice snapshot and prints the routing decision
// without drafting or persisting anything.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/garyjia/ai-collections/internal/application/service"
	"github.com/garyjia/ai-collections/internal/config"
	"github.com/garyjia/ai-collections/internal/domain/entity"
	"github.com/garyjia/ai-collections/internal/routing"
	"github.com/garyjia/ai-collections/internal/scoring"
)

type checkResult struct {
	Score   *entity.ScoreResult    `json:"score"`
	Routing entity.RoutingDecision `json:"routing"`
}

func main() {
	input := flag.String("input", "", "path to a JSON file with {\"customer\": ..., \"invoice\": ...}")
	configPath := flag.String("config", "", "optional config file for weights and thresholds")
	asOf := flag.String("as-of", "", "evaluation date (YYYY-MM-DD), defaults to today")
	flag.Parse()

	if *input == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*input, *configPath, *asOf); err != nil {
		fmt.Fprintf(os.Stderr, "score-check: %v\n", err)
		os.Exit(1)
	}
}

func run(inputPath, configPath, asOf string) error {
	raw, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	var req service.CollectionRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return fmt.Errorf("failed to parse input: %w", err)
	}

	scoringOpts := []scoring.Option{}
	thresholds, tiers := routing.DefaultThresholds(), routing.DefaultTiers()
	if configPath != "" {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		scoringOpts = append(scoringOpts,
			scoring.WithWeights(cfg.Scoring.Weights),
			scoring.WithRiskThresholds(cfg.Scoring.RiskThresholds))
		thresholds, tiers = cfg.Routing.Thresholds, cfg.Routing.Tiers
	}

	engine := scoring.NewEngine(scoringOpts...)
	at := engine.Now()
	if asOf != "" {
		at, err = time.Parse("2006-01-02", asOf)
		if err != nil {
			return fmt.Errorf("invalid -as-of: %w", err)
		}
	}

	score, err := engine.ScoreAt(req.Customer, req.Invoice, at)
	if err != nil {
		return err
	}

	decision := routing.NewEngine(thresholds, tiers).
		Route(entity.NewRoutingContext(req.Customer, req.Invoice, *score, at))

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(checkResult{Score: score, Routing: decision})
}
