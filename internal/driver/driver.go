// Package driver compiles every declaration of a unit in parallel, orders
// the results by dependency and reports cycles, failures and diagnostics.
package driver

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"runtime"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/tsgonest/tszod/internal/compiler"
	"github.com/tsgonest/tszod/internal/diagnostic"
	"github.com/tsgonest/tszod/internal/typeast"
)

const instrumentationName = "github.com/tsgonest/tszod"

// Option configures a Driver.
type Option func(*settings)

type settings struct {
	logger         Logger
	workers        int
	cacheSize      int
	strict         bool
	quiet          bool
	file           string
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithWorkers bounds the number of declarations compiled at once. Values
// below one mean runtime.NumCPU().
func WithWorkers(n int) Option {
	return func(s *settings) { s.workers = n }
}

// WithCacheSize sets the number of compiled declarations memoized across
// runs. Zero disables the memo.
func WithCacheSize(n int) Option {
	return func(s *settings) { s.cacheSize = n }
}

// WithStrict escalates warnings to errors.
func WithStrict(strict bool) Option {
	return func(s *settings) { s.strict = strict }
}

// WithQuiet drops warnings.
func WithQuiet(quiet bool) Option {
	return func(s *settings) { s.quiet = quiet }
}

// WithFile records the unit path on every diagnostic.
func WithFile(path string) Option {
	return func(s *settings) { s.file = path }
}

// WithTracerProvider sets a custom tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *settings) { s.tracerProvider = tp }
}

// WithMeterProvider sets a custom meter provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(s *settings) { s.meterProvider = mp }
}

// Driver compiles units. It is safe for concurrent use.
type Driver struct {
	opts     compiler.Options
	settings settings
	tracer   trace.Tracer
	memo     *lru.Cache[string, outcome]

	declarations metric.Int64Counter
	warnings     metric.Int64Counter
	failures     metric.Int64Counter
}

// outcome is the compile result of one declaration.
type outcome struct {
	result *compiler.Result
	err    error
}

// New returns a driver compiling with opts.
func New(opts compiler.Options, options ...Option) (*Driver, error) {
	s := settings{
		logger:         NopLogger{},
		tracerProvider: otel.GetTracerProvider(),
		meterProvider:  otel.GetMeterProvider(),
	}
	for _, o := range options {
		o(&s)
	}
	if s.workers < 1 {
		s.workers = runtime.NumCPU()
	}

	d := &Driver{
		opts:     opts,
		settings: s,
		tracer:   s.tracerProvider.Tracer(instrumentationName),
	}
	if s.cacheSize > 0 {
		memo, err := lru.New[string, outcome](s.cacheSize)
		if err != nil {
			return nil, fmt.Errorf("creating compile memo: %w", err)
		}
		d.memo = memo
	}

	meter := s.meterProvider.Meter(instrumentationName)
	var err error
	if d.declarations, err = meter.Int64Counter("tszod.declarations",
		metric.WithDescription("Declarations compiled"),
		metric.WithUnit("{declaration}")); err != nil {
		return nil, err
	}
	if d.warnings, err = meter.Int64Counter("tszod.warnings",
		metric.WithDescription("Warnings reported while compiling"),
		metric.WithUnit("{warning}")); err != nil {
		return nil, err
	}
	if d.failures, err = meter.Int64Counter("tszod.failures",
		metric.WithDescription("Declarations that failed to compile"),
		metric.WithUnit("{declaration}")); err != nil {
		return nil, err
	}
	return d, nil
}

// Fingerprint hashes the canonical encoding of u.
func Fingerprint(u *typeast.Unit) (string, error) {
	data, err := typeast.EncodeJSON(u)
	if err != nil {
		return "", fmt.Errorf("fingerprinting unit: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Run compiles every declaration of u. A declaration that fails is listed
// in the report and does not stop the others; only cancellation of ctx
// aborts the run.
func (d *Driver) Run(ctx context.Context, u *typeast.Unit) (*Report, error) {
	start := time.Now()
	fp, err := Fingerprint(u)
	if err != nil {
		return nil, err
	}

	ctx, span := d.tracer.Start(ctx, "tszod.run", trace.WithAttributes(
		attribute.Int("declarations", len(u.Declarations)),
		attribute.String("fingerprint", fp),
	))
	defer span.End()

	c := compiler.New(u, d.opts)
	outcomes := make([]outcome, len(u.Declarations))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.settings.workers)
	for i, decl := range u.Declarations {
		i, decl := i, decl
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = d.compile(gctx, c, fp, decl)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	report := d.assemble(u, fp, outcomes)

	d.declarations.Add(ctx, int64(len(u.Declarations)))
	d.warnings.Add(ctx, int64(report.Diagnostics.WarningCount()))
	d.failures.Add(ctx, int64(len(report.Failures)))
	if len(report.Failures) > 0 {
		span.SetStatus(codes.Error, fmt.Sprintf("%d declaration(s) failed", len(report.Failures)))
	} else {
		span.SetStatus(codes.Ok, "")
	}

	d.settings.logger.Info("compiled unit",
		F("declarations", len(u.Declarations)),
		F("failures", len(report.Failures)),
		F("skipped", len(report.Skipped)),
		F("cycles", len(report.Cycles)),
		F("duration", time.Since(start).Round(time.Millisecond)),
	)
	return report, nil
}

// compile compiles one declaration inside its own span, serving repeats
// from the memo.
func (d *Driver) compile(ctx context.Context, c *compiler.Compiler, fp string, decl typeast.Declaration) outcome {
	key := fp + "\x00" + decl.DeclName()
	_, span := d.tracer.Start(ctx, "tszod.compile", trace.WithAttributes(
		attribute.String("declaration", decl.DeclName()),
		attribute.String("kind", string(decl.DeclKind())),
	))
	defer span.End()

	if d.memo != nil {
		if o, ok := d.memo.Get(key); ok {
			span.SetAttributes(attribute.Bool("cached", true))
			d.settings.logger.Debug("memo hit", F("declaration", decl.DeclName()))
			return o
		}
	}

	res, err := c.CompileDeclaration(decl)
	o := outcome{result: res, err: err}
	if err != nil && !errors.Is(err, compiler.ErrGenericDeclaration) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if d.memo != nil {
		d.memo.Add(key, o)
	}
	return o
}

// assemble folds per-declaration outcomes into a report, in source order.
func (d *Driver) assemble(u *typeast.Unit, fp string, outcomes []outcome) *Report {
	diags := diagnostic.NewCollector(d.settings.strict, d.settings.quiet)
	report := &Report{Fingerprint: fp, Diagnostics: diags}

	for i, o := range outcomes {
		name := u.Declarations[i].DeclName()
		switch {
		case errors.Is(o.err, compiler.ErrGenericDeclaration):
			report.Skipped = append(report.Skipped, name)
			d.add(diags, diagnostic.Diagnostic{
				Severity:    diagnostic.SeverityInfo,
				Category:    diagnostic.CategoryTypeUnsupported,
				Declaration: name,
				Message:     "generic declaration is only compiled where it is instantiated",
			})
		case o.err != nil:
			report.Failures = append(report.Failures, Failure{Declaration: name, Err: o.err})
			d.add(diags, diagnostic.Diagnostic{
				Severity:    diagnostic.SeverityError,
				Category:    diagnostic.CategoryCompileFailed,
				Declaration: name,
				Message:     o.err.Error(),
			})
			d.settings.logger.Error("declaration failed", F("declaration", name), F("error", o.err))
		default:
			report.Results = append(report.Results, o.result)
			for _, w := range o.result.Warnings {
				d.add(diags, w)
			}
		}
	}

	report.Order, report.Cycles = buildGraph(report.Results).order()
	for _, cycle := range report.Cycles {
		d.add(diags, diagnostic.Diagnostic{
			Severity:    diagnostic.SeverityWarning,
			Category:    diagnostic.CategoryCircularDependency,
			Declaration: cycle[0],
			Message:     fmt.Sprintf("circular reference through %v; emitting lazy references", cycle),
			Hint:        "recursive schemas lose static type inference unless annotated",
		})
	}
	return report
}

func (d *Driver) add(c *diagnostic.Collector, diag diagnostic.Diagnostic) {
	if diag.File == "" {
		diag.File = d.settings.file
	}
	c.Add(diag)
}

// Failure is a declaration that could not be compiled.
type Failure struct {
	Declaration string
	Err         error
}

// Report is the outcome of compiling one unit.
type Report struct {
	Fingerprint string
	// Results holds compiled declarations in source order.
	Results []*compiler.Result
	// Order lists compiled declaration names, dependencies first.
	Order []string
	// Cycles lists groups of mutually referring declarations.
	Cycles   [][]string
	Failures []Failure
	// Skipped lists generic declarations, which only compile where they
	// are instantiated.
	Skipped     []string
	Diagnostics *diagnostic.Collector
}

// Result finds the compiled form of a declaration.
func (r *Report) Result(name string) (*compiler.Result, bool) {
	for _, res := range r.Results {
		if res.Name == name {
			return res, true
		}
	}
	return nil, false
}

// OK reports whether every declaration compiled and no error diagnostics
// were raised.
func (r *Report) OK() bool {
	return len(r.Failures) == 0 && !r.Diagnostics.HasErrors()
}
