package factory

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/trustaware/phish-trust-filter/internal/adapters/feedback"
	"github.com/trustaware/phish-trust-filter/internal/config"
	"github.com/trustaware/phish-trust-filter/internal/core"
)

// FeedbackFactory creates feedback repositories based on configuration
type FeedbackFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewFeedbackFactory creates a new feedback factory
func NewFeedbackFactory(cfg *config.Config, logger *zap.Logger) *FeedbackFactory {
	return &FeedbackFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateFeedbackRepository creates a feedback repository based on the
// configuration. A nil repository means feedback recording is disabled.
func (f *FeedbackFactory) CreateFeedbackRepository() (core.FeedbackRepository, error) {
	if !f.cfg.GetBool("feedback.enabled") {
		return nil, nil
	}

	feedbackType := f.cfg.GetString("feedback.type")
	switch feedbackType {
	case "memory":
		return feedback.NewMemoryFeedback(), nil
	case "sqlite":
		sqlitePath := f.cfg.GetString("feedback.sqlite_path")
		if err := os.MkdirAll(filepath.Dir(sqlitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create feedback directory: %w", err)
		}
		return feedback.NewSQLiteFeedback(sqlitePath, f.logger)
	default:
		return nil, fmt.Errorf("unsupported feedback type: %s", feedbackType)
	}
}
