package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/trustaware/phish-trust-filter/internal/adapters/filter"
	"github.com/trustaware/phish-trust-filter/internal/config"
	"github.com/trustaware/phish-trust-filter/internal/core"
	"github.com/trustaware/phish-trust-filter/internal/utils"
)

// FilterFactory creates email filters based on configuration
type FilterFactory struct {
	cfg     *config.Config
	logger  *zap.Logger
	service *core.AnalysisService
	text    *utils.TextProcessor
}

// NewFilterFactory creates a new filter factory
func NewFilterFactory(cfg *config.Config, logger *zap.Logger, service *core.AnalysisService, text *utils.TextProcessor) *FilterFactory {
	return &FilterFactory{
		cfg:     cfg,
		logger:  logger,
		service: service,
		text:    text,
	}
}

// CreateEmailFilter creates an email filter based on the configuration
func (f *FilterFactory) CreateEmailFilter() (core.EmailFilter, error) {
	server := f.cfg.GetServer()

	switch server.FilterType {
	case "smtp":
		return filter.NewSMTPFilter(f.service, f.text, f.logger, filter.SMTPFilterConfig{
			ListenAddr:      server.ListenAddress,
			BlockPhishing:   server.BlockPhishing,
			VerdictHeader:   server.VerdictHeader,
			TrustHeader:     server.TrustHeader,
			TierHeader:      server.TierHeader,
			ReasonHeader:    server.ReasonHeader,
			AttackHeader:    server.AttackHeader,
			UpstreamAddr:    server.UpstreamAddress,
			UpstreamPort:    server.UpstreamPort,
			UpstreamEnabled: server.UpstreamEnabled,
			SubjectPrefix:   server.SubjectPrefix,
			ModifySubject:   server.ModifySubject,
			MaxTextSize:     server.MaxTextSize,
		}), nil
	case "cli":
		cli, err := filter.NewCliFilter(f.service, f.logger, f.cfg.GetBool("cli.verbose"), f.cfg.GetBool("cli.json_output"))
		if err != nil {
			return nil, err
		}
		return cli, nil
	default:
		return nil, fmt.Errorf("unsupported filter type: %s", server.FilterType)
	}
}
