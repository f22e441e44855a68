// Package pipeline is the single build entry point: a raw record is
// normalized, checked and compiled into an artifact. Publish, preview and
// simulate all go through Build so they can never disagree about output.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wakuwakusystemsharing/form-management-sub001/internal/cache"
	"github.com/wakuwakusystemsharing/form-management-sub001/internal/compiler"
	"github.com/wakuwakusystemsharing/form-management-sub001/internal/form"
	"github.com/wakuwakusystemsharing/form-management-sub001/internal/logger"
	"github.com/wakuwakusystemsharing/form-management-sub001/internal/metrics"
	"github.com/wakuwakusystemsharing/form-management-sub001/internal/normalize"
	"github.com/wakuwakusystemsharing/form-management-sub001/internal/schema"
)

// Result is one build.
type Result struct {
	Config   form.Config
	Report   normalize.Report
	Artifact *compiler.Artifact

	// Cached is set when the artifact came from the cache.
	Cached bool

	// SchemaViolations lists schema failures of the normalized config.
	// They are reported, never fatal; the compiler contract is the gate.
	SchemaViolations []schema.Violation
}

// Pipeline builds artifacts. The zero value is not usable; use New.
type Pipeline struct {
	normalizer *normalize.Normalizer
	cache      cache.Cache
	checker    *schema.Checker
	log        logger.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithCache memoizes artifacts by build key.
func WithCache(c cache.Cache) Option { return func(p *Pipeline) { p.cache = c } }

// WithSchema checks every normalized config against the CUE schema.
func WithSchema(c *schema.Checker) Option { return func(p *Pipeline) { p.checker = c } }

// WithNormalizer replaces the default normalizer, e.g. to add a source.
func WithNormalizer(n *normalize.Normalizer) Option {
	return func(p *Pipeline) { p.normalizer = n }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option { return func(p *Pipeline) { p.log = l } }

// New returns a Pipeline with the default normalizer and no cache.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		normalizer: normalize.New(),
		log:        logger.NewNoOpLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Build normalizes record and compiles it. The only error a well-formed
// pipeline returns is a *compiler.ContractError wrapped with context;
// cache failures are logged and the artifact is compiled anyway.
func (p *Pipeline) Build(ctx context.Context, record map[string]any) (*Result, error) {
	start := time.Now()
	defer func() { metrics.CompileDuration.Observe(time.Since(start).Seconds()) }()

	cfg, report := p.normalizer.NormalizeWithReport(record)
	for _, f := range report.Fields() {
		metrics.NormalizedFields.WithLabelValues(report[f]).Inc()
	}
	res := &Result{Config: cfg, Report: report}

	if p.checker != nil {
		res.SchemaViolations = p.checker.Check(cfg)
		for _, v := range res.SchemaViolations {
			p.log.Warn("schema violation", logger.Fields{"path": v.Path, "message": v.Message})
		}
	}

	a, cached, err := p.compile(ctx, cfg)
	if err != nil {
		var ce *compiler.ContractError
		if errors.As(err, &ce) {
			metrics.CompilesTotal.WithLabelValues(metrics.OutcomeContract).Inc()
		} else {
			metrics.CompilesTotal.WithLabelValues(metrics.OutcomeError).Inc()
		}
		return nil, fmt.Errorf("build: %w", err)
	}
	res.Artifact = a
	res.Cached = cached

	outcome := metrics.OutcomeOK
	if cached {
		outcome = metrics.OutcomeCached
	}
	metrics.CompilesTotal.WithLabelValues(outcome).Inc()
	for name, body := range a.Files() {
		metrics.ArtifactBytes.WithLabelValues(name).Observe(float64(len(body)))
	}
	p.log.Debug("built form", logger.Fields{"hash": a.Hash, "cached": cached, "title": cfg.BasicInfo.Title})
	return res, nil
}

// compile consults the cache first when one is set. The contract is checked
// before the cache so a cached artifact is never served for a config the
// compiler would reject.
func (p *Pipeline) compile(ctx context.Context, cfg form.Config) (*compiler.Artifact, bool, error) {
	if p.cache == nil {
		a, err := compiler.Compile(cfg)
		return a, false, err
	}
	if violations := compiler.CheckContract(cfg); len(violations) > 0 {
		return nil, false, &compiler.ContractError{Violations: violations}
	}

	key, err := compiler.Key(cfg)
	if err != nil {
		return nil, false, err
	}
	a, err := p.cache.Get(ctx, key)
	if err == nil {
		return a, true, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		p.log.WithError(err).Warn("cache read failed", logger.Fields{"key": key})
	}

	a, err = compiler.Compile(cfg)
	if err != nil {
		return nil, false, err
	}
	if err := p.cache.Set(ctx, a); err != nil {
		p.log.WithError(err).Warn("cache write failed", logger.Fields{"key": key})
	}
	return a, false, nil
}
