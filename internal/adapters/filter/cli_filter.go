package filter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/trustaware/phish-trust-filter/internal/core"
)

// CliFilter implements a command-line interface for one-shot analysis
type CliFilter struct {
	service    *core.AnalysisService
	logger     *zap.Logger
	verbose    bool
	jsonOutput bool
}

// NewCliFilter creates a new CLI filter
func NewCliFilter(service *core.AnalysisService, logger *zap.Logger, verbose, jsonOutput bool) (*CliFilter, error) {
	return &CliFilter{
		service:    service,
		logger:     logger,
		verbose:    verbose,
		jsonOutput: jsonOutput,
	}, nil
}

// ProcessEmail analyzes an email and displays the results
func (f *CliFilter) ProcessEmail(ctx context.Context, email *core.Email) (*core.AnalysisResult, error) {
	f.logger.Debug("Processing email", zap.String("sender", email.From))

	if f.jsonOutput {
		result, err := f.service.AnalyzeEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		encoded, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode result: %w", err)
		}
		fmt.Println(string(encoded))
		return result, nil
	}

	fmt.Printf("\n=== Email Summary ===\n")
	fmt.Printf("From: %s\n", email.From)
	fmt.Printf("To: %s\n", email.To)
	fmt.Printf("Subject: %s\n", email.Subject)
	fmt.Printf("Body length: %d bytes\n", len(email.Body))

	if f.verbose {
		preview := email.Body
		if len(preview) > 500 {
			preview = preview[:500] + "..."
		}
		fmt.Printf("\nBody preview:\n%s\n", preview)
	}

	fmt.Printf("\n")

	fmt.Printf("=== Analysis ===\n")
	startTime := time.Now()
	result, err := f.service.AnalyzeEmail(ctx, email)
	if err != nil {
		f.logger.Error("Failed to analyze email", zap.Error(err))
		fmt.Printf("Error: %v\n", err)
		return nil, err
	}
	duration := time.Since(startTime)

	fmt.Printf("\n=== Results ===\n")
	fmt.Printf("Prediction: %s\n", result.Prediction)
	fmt.Printf("Trust score: %.4f\n", result.TrustScore)
	fmt.Printf("Tier: %s\n", result.Tier)
	fmt.Printf("Attack type: %s\n", result.AttackType)
	fmt.Printf("Confidence: %.4f\n", result.Metrics.Confidence)
	fmt.Printf("Fidelity: %.4f\n", result.Metrics.Fidelity)
	fmt.Printf("Instability: %.4f\n", result.Metrics.Instability)
	fmt.Printf("Explanation: %s\n", result.NaturalLanguage)
	fmt.Printf("Model used: %s\n", result.ModelUsed)
	if result.Degraded {
		fmt.Printf("Warning: degraded analysis\n")
	}
	fmt.Printf("Processing time: %v\n", duration)

	return result, nil
}

// Start is a no-op for the CLI filter
func (f *CliFilter) Start() error {
	return nil
}

// Stop is a no-op for the CLI filter
func (f *CliFilter) Stop() error {
	return nil
}
