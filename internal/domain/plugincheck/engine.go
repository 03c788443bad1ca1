package plugincheck

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"golang.org/x/mod/semver"

	"github.com/felixgeelhaar/checkoutkit/internal/domain/completion"
	"github.com/felixgeelhaar/checkoutkit/internal/ports"
)

// EngineVersion is the check-plugin ABI version. Plugins declare the
// lowest version they run on; majors must match.
const EngineVersion = "1.0.0"

// checkTimeout bounds a single check invocation.
const checkTimeout = 5 * time.Second

// ErrEngineClosed is returned when the engine is used after Close.
var ErrEngineClosed = errors.New("plugin engine is closed")

// Compatible reports whether a plugin's min_engine requirement can run
// on this engine: both versions must share a major, and the engine must
// be at least the minimum.
func Compatible(minEngine string) error {
	engine := normalizeVersion(EngineVersion)
	min := normalizeVersion(minEngine)

	if !semver.IsValid(min) {
		return fmt.Errorf("%w: min_engine %q is not a valid version", ErrManifestInvalid, minEngine)
	}
	if semver.Major(engine) != semver.Major(min) {
		return fmt.Errorf("%w: plugin needs engine %s, this engine is %s",
			ErrEngineIncompatible, minEngine, EngineVersion)
	}
	if semver.Compare(engine, min) < 0 {
		return fmt.Errorf("%w: plugin needs engine >= %s, this engine is %s",
			ErrEngineIncompatible, minEngine, EngineVersion)
	}
	return nil
}

func normalizeVersion(v string) string {
	if !strings.HasPrefix(v, "v") {
		return "v" + v
	}
	return v
}

// requestWire is the JSON shape a check reads from stdin.
type requestWire struct {
	SessionID       string            `json:"session_id"`
	StepID          string            `json:"step_id"`
	PaymentMethodID string            `json:"payment_method_id"`
	Fields          map[string]string `json:"fields"`
}

// Engine runs check plugins on a shared WASM runtime. Each check call
// instantiates a fresh module instance, so plugin state never leaks
// between calls.
type Engine struct {
	runtime wazero.Runtime
	logger  ports.Logger
	mu      sync.Mutex
	closed  bool
}

// NewEngine creates a WASM engine for check plugins.
func NewEngine(ctx context.Context, logger ports.Logger) (*Engine, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	cfg := wazero.NewRuntimeConfig().
		WithCloseOnContextDone(true)

	r := wazero.NewRuntimeWithConfig(ctx, cfg)

	// Instantiate WASI for standard I/O
	if _, err := wasi_snapshot_preview1.Instantiate(ctx, r); err != nil {
		_ = r.Close(ctx)
		return nil, fmt.Errorf("failed to instantiate WASI: %w", err)
	}

	return &Engine{
		runtime: r,
		logger:  logger,
	}, nil
}

// Checks compiles a plugin and returns its completion checks keyed by
// name. A failing invocation is logged and reported incomplete; checks
// never carry engine errors into the wizard.
func (e *Engine) Checks(ctx context.Context, plugin *Plugin) (map[string]completion.CheckFunc, error) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil, ErrEngineClosed
	}
	e.mu.Unlock()

	compiled, err := e.runtime.CompileModule(ctx, plugin.Module)
	if err != nil {
		return nil, fmt.Errorf("failed to compile plugin %q: %w", plugin.Manifest.ID, err)
	}

	checks := make(map[string]completion.CheckFunc, len(plugin.Manifest.Checks))
	for _, spec := range plugin.Manifest.Checks {
		checks[spec.Name] = e.checkFunc(plugin.Manifest.ID, spec, compiled)
	}
	return checks, nil
}

// Close releases the runtime and every compiled plugin.
func (e *Engine) Close(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	return e.runtime.Close(ctx)
}

func (e *Engine) checkFunc(pluginID string, spec CheckSpec, compiled wazero.CompiledModule) completion.CheckFunc {
	return func(ctx context.Context, req completion.Request) completion.Verdict {
		complete, err := e.invoke(ctx, spec.Export, compiled, req)
		if err != nil {
			e.logger.Error(ctx, "plugin check failed",
				ports.F("plugin", pluginID),
				ports.F("check", spec.Name),
				ports.F("error", err))
			return completion.Incomplete()
		}
		if complete {
			return completion.Complete()
		}
		return completion.Incomplete()
	}
}

// invoke instantiates the module, feeds the request on stdin, and calls
// the exported check. A nonzero i32 result means complete.
func (e *Engine) invoke(ctx context.Context, export string, compiled wazero.CompiledModule, req completion.Request) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	input, err := json.Marshal(requestWire{
		SessionID:       req.SessionID,
		StepID:          req.StepID,
		PaymentMethodID: req.PaymentMethodID,
		Fields:          req.Fields,
	})
	if err != nil {
		return false, fmt.Errorf("failed to encode request: %w", err)
	}

	modConfig := wazero.NewModuleConfig().
		WithName("").
		WithStdin(bytes.NewReader(input)).
		WithStartFunctions("_initialize")

	instance, err := e.runtime.InstantiateModule(ctx, compiled, modConfig)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return false, fmt.Errorf("check timed out after %s", checkTimeout)
		}
		return false, fmt.Errorf("failed to instantiate module: %w", err)
	}
	defer func() { _ = instance.Close(ctx) }()

	fn := instance.ExportedFunction(export)
	if fn == nil {
		return false, fmt.Errorf("module exports no function %q", export)
	}

	results, err := fn.Call(ctx)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return false, fmt.Errorf("check timed out after %s", checkTimeout)
		}
		return false, fmt.Errorf("check execution failed: %w", err)
	}
	if len(results) == 0 {
		return false, fmt.Errorf("check %q returned no result", export)
	}

	return api.DecodeI32(results[0]) != 0, nil
}
