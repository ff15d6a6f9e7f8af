// Package container provides dependency injection for the card-recon
// application. It centralizes the creation and wiring of all application
// dependencies, making them explicit and testable.
package container

import (
	"fmt"

	"fjacquet/card-recon/internal/batch"
	"fjacquet/card-recon/internal/config"
	"fjacquet/card-recon/internal/currencyutils"
	"fjacquet/card-recon/internal/logging"
	"fjacquet/card-recon/internal/normalizer"
	"fjacquet/card-recon/internal/reconciler"
	"fjacquet/card-recon/internal/report"
	"fjacquet/card-recon/internal/store"
)

// Container holds all application dependencies and provides methods to access them.
//
// Container is immutable after creation: all fields are private and can only
// be accessed through getter methods.
type Container struct {
	logger     logging.Logger
	config     *config.Config
	normalizer *normalizer.Normalizer
	store      store.CleanStore
	generator  *report.ReportGenerator
	classifier reconciler.ClassifierConfig
	batch      *batch.Runner
}

// NewContainer creates and wires all application dependencies, logging
// through a logrus logger configured from cfg.
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	return NewContainerWithLogger(cfg, config.ConfigureLoggingFromConfig(cfg))
}

// NewContainerWithLogger is NewContainer with an explicit logger.
func NewContainerWithLogger(cfg *config.Config, logger logging.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	norm := normalizer.New(normalizer.OptionsFromConfig(cfg), logger)
	cleanStore := store.NewFileStore(logger, cfg.DelimiterRune())
	formatter := currencyutils.NewFormatter(cfg.Report.CurrencySymbol, cfg.Report.ThousandsSeparator)
	generator := report.NewReportGenerator(logger, formatter)

	// the classifier owns its copy of the payment descriptions
	classifier := reconciler.ClassifierConfig{
		PaymentDescriptions:    append([]string(nil), cfg.Analysis.PaymentDescriptions...),
		SingleInstallmentToken: cfg.Analysis.SingleInstallmentToken,
	}

	runner := batch.NewRunner(norm, generator, batch.Options{
		Workers:      cfg.Batch.Workers,
		ReportFormat: cfg.Report.Format,
		Classifier:   classifier,
	}, logger)

	logger.Debug("Container initialized successfully",
		logging.F("payment_descriptions", len(classifier.PaymentDescriptions)),
		logging.F(logging.FieldWorkers, cfg.Batch.Workers))

	return &Container{
		logger:     logger,
		config:     cfg,
		normalizer: norm,
		store:      cleanStore,
		generator:  generator,
		classifier: classifier,
		batch:      runner,
	}, nil
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetNormalizer returns the raw statement normalizer.
func (c *Container) GetNormalizer() *normalizer.Normalizer {
	return c.normalizer
}

// GetStore returns the cleaned movements store.
func (c *Container) GetStore() store.CleanStore {
	return c.store
}

// GetReportGenerator returns the report renderer.
func (c *Container) GetReportGenerator() *report.ReportGenerator {
	return c.generator
}

// GetClassifierConfig returns a copy of the classification options.
func (c *Container) GetClassifierConfig() reconciler.ClassifierConfig {
	cfg := c.classifier
	cfg.PaymentDescriptions = append([]string(nil), c.classifier.PaymentDescriptions...)
	return cfg
}

// GetBatchRunner returns the directory reconciliation runner.
func (c *Container) GetBatchRunner() *batch.Runner {
	return c.batch
}

// Close performs cleanup of container resources.
func (c *Container) Close() error {
	c.logger.Debug("Container closed")
	return nil
}
