package observability

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/riskibarqy/claim-ledger/internal/config"
	"github.com/riskibarqy/claim-ledger/internal/platform/logging"
)

// hook is one process wide integration started by Setup. stop must be safe
// to call once during shutdown.
type hook struct {
	name string
	stop func(context.Context) error
}

type starter struct {
	name    string
	enabled func(config.Config) (bool, string)
	start   func(config.Config, *logging.Logger) (func(context.Context) error, error)
}

var starters = []starter{
	{name: "uptrace", enabled: tracingEnabled, start: startTracing},
	{name: "pyroscope", enabled: profilingEnabled, start: startProfiling},
	{name: "pprof", enabled: pprofEnabled, start: startPprof},
}

// Runtime owns the tracing and profiling integrations for the process.
type Runtime struct {
	logger *logging.Logger
	hooks  []hook
}

func Setup(cfg config.Config, logger *logging.Logger) (*Runtime, error) {
	if logger == nil {
		logger = logging.Default()
	}
	rt := &Runtime{logger: logger.Named("observability")}

	for _, s := range starters {
		ok, reason := s.enabled(cfg)
		if !ok {
			rt.logger.Info(s.name+" disabled", "reason", reason)
			continue
		}
		stop, err := s.start(cfg, rt.logger)
		if err != nil {
			_ = rt.Shutdown(context.Background())
			return nil, fmt.Errorf("start %s: %w", s.name, err)
		}
		rt.hooks = append(rt.hooks, hook{name: s.name, stop: stop})
	}

	return rt, nil
}

// Enabled lists the integrations that started.
func (r *Runtime) Enabled() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.hooks))
	for _, h := range r.hooks {
		names = append(names, h.name)
	}
	return names
}

// Shutdown stops hooks in reverse start order. Every hook runs even when an
// earlier one fails.
func (r *Runtime) Shutdown(ctx context.Context) error {
	if r == nil {
		return nil
	}

	var errs []error
	for i := len(r.hooks) - 1; i >= 0; i-- {
		h := r.hooks[i]
		if err := h.stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("stop %s: %w", h.name, err))
		}
	}
	r.hooks = nil
	return errors.Join(errs...)
}

func tracingEnabled(cfg config.Config) (bool, string) {
	switch {
	case !cfg.UptraceEnabled:
		return false, "UPTRACE_ENABLED=false"
	case strings.TrimSpace(cfg.UptraceDSN) == "":
		return false, "UPTRACE_DSN empty"
	}
	return true, ""
}

func profilingEnabled(cfg config.Config) (bool, string) {
	if !cfg.PyroscopeEnabled {
		return false, "PYROSCOPE_ENABLED=false"
	}
	return true, ""
}

func pprofEnabled(cfg config.Config) (bool, string) {
	if !cfg.PprofEnabled {
		return false, "PPROF_ENABLED=false"
	}
	return true, ""
}
