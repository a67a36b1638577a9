package usecase

import (
	"context"

	"WatchPull/internal/domain/models"
	domservice "WatchPull/internal/domain/service"
	xlogger "WatchPull/pkg/logger"
)

// Assembler builds the per-run work-list: the configured symbols followed by
// scan-probe captures not already present, in probe-emission order.
type Assembler struct {
	probe  domservice.ScanProbe
	logger *xlogger.Logger
}

// NewAssembler creates a work-list assembler. probe may be nil, in which case
// only the static list is used.
func NewAssembler(probe domservice.ScanProbe, logger *xlogger.Logger) *Assembler {
	return &Assembler{probe: probe, logger: logger}
}

// Assemble returns the work-list for one run. The static list passes through
// as-is (trimmed, empties dropped); it is assumed pre-cleaned by config
// loading. On dry runs the probe is never invoked. A probe fault is logged
// and the static list stands; it never aborts the run.
func (a *Assembler) Assemble(ctx context.Context, static []string, scanLimit int, dryRun bool) []string {
	worklist := models.NormalizeSymbols(static)

	if dryRun {
		a.logger.Debug("dry run: skipping scan probe", xlogger.Int("static", len(worklist)))
		return worklist
	}
	if a.probe == nil || scanLimit <= 0 {
		return worklist
	}

	a.logger.Info("scan probe started", xlogger.Int("limit", scanLimit))
	found, err := a.probe.Scan(ctx, scanLimit)
	if err != nil {
		a.logger.Warn("scan probe failed, continuing with static list", xlogger.Error(err))
		return worklist
	}

	seen := make(map[string]struct{}, len(worklist)+len(found))
	for _, s := range worklist {
		seen[s] = struct{}{}
	}
	for _, f := range found {
		sym := models.NormalizeSymbol(f)
		if sym == "" {
			continue
		}
		if _, dup := seen[sym]; dup {
			continue
		}
		seen[sym] = struct{}{}
		worklist = append(worklist, sym)
		a.logger.Info("captured scan symbol", xlogger.String("symbol", sym))
	}
	return worklist
}
