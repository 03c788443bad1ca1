package app

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/felixgeelhaar/checkoutkit/internal/adapters/location"
	"github.com/felixgeelhaar/checkoutkit/internal/domain/analytics"
	"github.com/felixgeelhaar/checkoutkit/internal/domain/checkout"
	"github.com/felixgeelhaar/checkoutkit/internal/domain/coupon"
	"github.com/felixgeelhaar/checkoutkit/internal/domain/flowdef"
	"github.com/felixgeelhaar/checkoutkit/internal/domain/plugincheck"
	"github.com/felixgeelhaar/checkoutkit/internal/domain/stepper"
	"github.com/felixgeelhaar/checkoutkit/internal/i18n"
	"github.com/felixgeelhaar/checkoutkit/internal/ports"
)

// submitDelay simulates order processing in the reference host.
const submitDelay = 800 * time.Millisecond

// Checkout is the application facade. It loads the flow, wires checks
// and plugins, and assembles ready-to-run sessions.
type Checkout struct {
	cfg    Config
	logger ports.Logger
	out    io.Writer
}

// New creates the application facade.
func New(cfg Config, logger ports.Logger, out io.Writer) *Checkout {
	return &Checkout{
		cfg:    cfg,
		logger: logger,
		out:    out,
	}
}

// Assembly is a fully wired checkout ready to run.
type Assembly struct {
	Session   *checkout.Session
	Coupon    *coupon.Form
	Localizer i18n.Localizer
	Location  *location.Memory
	// Profile is the shopper profile that seeded the session, if any.
	Profile *Profile

	engine *plugincheck.Engine
	sink   analytics.Sink
}

// Close stops the session and releases the plugin engine and sink.
func (a *Assembly) Close(ctx context.Context) error {
	a.Session.Stop()

	var firstErr error
	if a.engine != nil {
		if err := a.engine.Close(ctx); err != nil {
			firstErr = err
		}
	}
	if err := a.sink.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// LoadFlow reads the configured flow definition.
func (c *Checkout) LoadFlow() (*flowdef.Flow, error) {
	loader := flowdef.NewLoader()
	return loader.Load(c.cfg.Flow)
}

// BuildRegistry creates the check registry with built-ins and every
// plugin check. The returned engine is nil when no plugins load; the
// caller owns closing it.
func (c *Checkout) BuildRegistry(ctx context.Context) (*flowdef.CheckRegistry, *plugincheck.Engine, error) {
	registry := flowdef.NewCheckRegistry()
	if err := flowdef.RegisterBuiltins(registry); err != nil {
		return nil, nil, err
	}

	if c.cfg.PluginsDir == "" {
		return registry, nil, nil
	}

	loader := plugincheck.NewLoader(c.cfg.PluginsDir)
	dirs, err := loader.List()
	if err != nil {
		return nil, nil, err
	}
	if len(dirs) == 0 {
		return registry, nil, nil
	}

	engine, err := plugincheck.NewEngine(ctx, c.logger)
	if err != nil {
		return nil, nil, err
	}

	for _, dir := range dirs {
		plugin, err := loader.Load(dir)
		if err != nil {
			_ = engine.Close(ctx)
			return nil, nil, fmt.Errorf("plugin %s: %w", dir, err)
		}
		checks, err := engine.Checks(ctx, plugin)
		if err != nil {
			_ = engine.Close(ctx)
			return nil, nil, err
		}
		for name, check := range checks {
			if err := registry.Register(name, check); err != nil {
				_ = engine.Close(ctx)
				return nil, nil, err
			}
		}
		c.logger.Info(ctx, "loaded check plugin",
			ports.F("plugin", plugin.Manifest.ID),
			ports.F("version", plugin.Manifest.Version),
			ports.F("checks", len(plugin.Manifest.Checks)))
	}

	return registry, engine, nil
}

// ListSteps loads and annotates the configured flow without starting a
// session.
func (c *Checkout) ListSteps(ctx context.Context) ([]stepper.Annotated, error) {
	flow, err := c.LoadFlow()
	if err != nil {
		return nil, err
	}

	registry, engine, err := c.BuildRegistry(ctx)
	if err != nil {
		return nil, err
	}
	if engine != nil {
		// Annotation never invokes checks, so the engine can go early.
		defer func() { _ = engine.Close(ctx) }()
	}

	descriptors, err := flowdef.Build(flow, registry)
	if err != nil {
		return nil, err
	}
	return stepper.Annotate(descriptors)
}

// ListChecks returns the names of every registered completion check.
func (c *Checkout) ListChecks(ctx context.Context) ([]string, error) {
	registry, engine, err := c.BuildRegistry(ctx)
	if err != nil {
		return nil, err
	}
	if engine != nil {
		defer func() { _ = engine.Close(ctx) }()
	}
	return registry.Names(), nil
}

// Assemble wires a complete checkout: flow, checks, plugins, analytics,
// localization, session, and coupon form, seeded from the shopper
// profile when one is configured.
func (c *Checkout) Assemble(ctx context.Context) (*Assembly, error) {
	flow, err := c.LoadFlow()
	if err != nil {
		return nil, err
	}

	registry, engine, err := c.BuildRegistry(ctx)
	if err != nil {
		return nil, err
	}
	assembled := false
	defer func() {
		if !assembled && engine != nil {
			_ = engine.Close(ctx)
		}
	}()

	descriptors, err := flowdef.Build(flow, registry)
	if err != nil {
		return nil, err
	}

	localizer, err := i18n.Parse(c.cfg.Locale)
	if err != nil {
		return nil, err
	}

	var sink analytics.Sink = analytics.NewNullSink()
	if c.cfg.Analytics.File != "" {
		fileSink, err := analytics.NewFileSink(c.cfg.Analytics.File)
		if err != nil {
			return nil, err
		}
		c.logger.Debug(ctx, "recording checkout events", ports.F("file", fileSink.Path()))
		sink = fileSink
	}

	loc := location.NewMemoryWithFragment(c.cfg.Fragment)

	session, err := checkout.NewSession(checkout.Config{
		Steps:     descriptors,
		Location:  loc,
		Logger:    c.logger,
		Sink:      sink,
		Localizer: localizer,
		Submit:    defaultSubmit,
	})
	if err != nil {
		_ = sink.Close()
		return nil, err
	}

	couponForm, err := coupon.NewForm(couponValidator(c.cfg.Coupons), sink, c.logger)
	if err != nil {
		_ = sink.Close()
		return nil, err
	}

	assembly := &Assembly{
		Session:   session,
		Coupon:    couponForm,
		Localizer: localizer,
		Location:  loc,
		engine:    engine,
		sink:      sink,
	}

	if c.cfg.Profile != "" {
		profile, err := LoadProfile(c.cfg.Profile)
		if err != nil {
			session.Stop()
			_ = sink.Close()
			return nil, err
		}
		for key, value := range profile.Fields() {
			session.SetField(key, value)
		}
		if profile.PaymentMethodID != "" {
			session.SetPaymentMethod(profile.PaymentMethodID)
		}
		assembly.Profile = profile
		c.logger.Info(ctx, "seeded session from profile",
			ports.F("profile", c.cfg.Profile),
			ports.F("fields", len(profile.Fields())))
	}

	assembled = true
	return assembly, nil
}

// PrintSteps writes a human-readable listing of the annotated flow.
func (c *Checkout) PrintSteps(steps []stepper.Annotated) {
	c.printf("\nCheckout Flow\n")
	c.printf("=============\n\n")

	for _, step := range steps {
		marker := "  -"
		if step.HasNumber() {
			marker = fmt.Sprintf("  %d.", step.Number)
		}
		c.printf("%s %s", marker, step.ID.String())
		if step.Title != "" && step.Title != step.ID.String() {
			c.printf(" (%s)", step.Title)
		}
		c.printf("\n")
	}

	c.printf("\n%d steps, %d numbered\n", len(steps), stepper.MaxNumber(steps))
}

// PrintChecks writes the registered check names.
func (c *Checkout) PrintChecks(names []string) {
	c.printf("\nCompletion Checks\n")
	c.printf("=================\n\n")
	for _, name := range names {
		c.printf("  %s\n", name)
	}
	c.printf("\n%d checks registered\n", len(names))
}

// printf is a helper that writes to the output writer, ignoring errors.
func (c *Checkout) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(c.out, format, args...)
}

// couponValidator accepts the configured codes, or every well-formed
// code when none are configured.
func couponValidator(codes []string) coupon.ValidateFunc {
	if len(codes) == 0 {
		return nil
	}
	accepted := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		accepted[strings.ToLower(code)] = struct{}{}
	}
	return func(_ context.Context, code string) error {
		if _, ok := accepted[strings.ToLower(code)]; !ok {
			return fmt.Errorf("code %q is not valid for this order", code)
		}
		return nil
	}
}

// defaultSubmit simulates order processing.
func defaultSubmit(ctx context.Context) error {
	select {
	case <-time.After(submitDelay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
