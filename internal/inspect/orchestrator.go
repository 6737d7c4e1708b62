package inspect

import (
	"context"
	"fmt"

	"github.com/riv-inspector/backend/internal/models"
	"github.com/riv-inspector/backend/internal/riv"
)

// Options configures one inspection.
type Options struct {
	// CalibrationArtboard and CalibrationStateMachine pick the one state
	// machine sampled for type-code calibration. When either is empty the
	// dynamic map stays empty and unresolved codes surface as "Unknown".
	CalibrationArtboard     string
	CalibrationStateMachine string
	// TypeCodeOverrides extends the baseline table. Hard-coded baseline
	// entries win over overrides.
	TypeCodeOverrides map[int]string
}

type loadSignal struct {
	file riv.File
	err  error
}

// Inspect loads src through the runtime binding and produces the descriptive
// document. The pipeline runs synchronously once loading completes; the only
// asynchronous boundary is waiting for the runtime to finish materializing
// the object graph. Only a fatal load failure returns an error; every other
// condition degrades to sentinel values or error-flagged subtrees, so a nil
// error always comes with a fully-shaped document.
func Inspect(ctx context.Context, loader riv.Loader, src []byte, opts Options) (*models.Document, error) {
	collector := &assetCollector{}

	// The runtime's load-completion signal is ambiguous: depending on the
	// build, the file handle arrives as the callback argument, as Load's
	// return value, or on the loader itself. Normalize to one handle before
	// the pipeline runs.
	sig := make(chan loadSignal, 1)
	returned := loader.Load(src, riv.LoadOptions{OnAsset: collector.hook()}, func(f riv.File, err error) {
		sig <- loadSignal{file: f, err: err}
	})

	select {
	case s := <-sig:
		if s.err != nil {
			return nil, fmt.Errorf("loading source: %w", s.err)
		}
		file := firstHandle(s.file, returned, loader.Session())
		if file == nil {
			return nil, fmt.Errorf("runtime delivered no session handle")
		}
		return buildDocument(file, collector, opts), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func firstHandle(handles ...riv.File) riv.File {
	for _, h := range handles {
		if h != nil {
			return h
		}
	}
	return nil
}

// buildDocument runs the pipeline in one pass: calibration, enum extraction,
// blueprint discovery and analysis, default-instance resolution, artboard
// assembly, document assembly.
func buildDocument(f riv.File, collector *assetCollector, opts Options) *models.Document {
	cal := newCalibration(opts.TypeCodeOverrides)
	if opts.CalibrationArtboard != "" && opts.CalibrationStateMachine != "" {
		cal.sample(f, opts.CalibrationArtboard, opts.CalibrationStateMachine)
	}

	enums := extractEnums(f)

	var blueprints []*Blueprint
	for _, raw := range discoverDefinitions(f) {
		blueprints = append(blueprints, analyzeBlueprint(raw.def, raw.name))
	}

	activeName, defaultVM := resolveDefaultInstance(f, blueprints)

	assets := collector.records
	if assets == nil {
		assets = []models.AssetRecord{}
	}

	return &models.Document{
		Artboards:  assembleArtboards(f, cal, activeName, defaultVM),
		Assets:     assets,
		ViewModels: summarize(blueprints),
		Enums:      enums,
	}
}

// resolveDefaultInstance parses the default view-model instance bound to the
// artboard active at load time, when the file declares one.
func resolveDefaultInstance(f riv.File, blueprints []*Blueprint) (string, *models.ParsedInstance) {
	active, err := f.ActiveArtboard()
	if err != nil || active == nil {
		fmt.Printf("[Inspect] no active artboard: %v\n", err)
		return "", nil
	}

	inst, err := f.DefaultInstance(active)
	if err != nil || inst == nil {
		return active.Name(), nil
	}

	bp := resolveBlueprint(blueprints, inst)
	if bp == nil {
		node := placeholderNode(active.Name(), blueprintUnresolved)
		return active.Name(), &node
	}

	r := &resolver{known: blueprints}
	node := r.parse(inst, bp.Name, bp)
	return active.Name(), &node
}

func summarize(blueprints []*Blueprint) []models.BlueprintSummary {
	out := make([]models.BlueprintSummary, 0, len(blueprints))
	for _, bp := range blueprints {
		names := bp.InstanceNames
		if names == nil {
			names = []string{}
		}
		out = append(out, models.BlueprintSummary{
			BlueprintName: bp.Name,
			Properties:    append([]models.ScalarPropertyDeclaration{}, bp.Scalars...),
			InstanceNames: names,
			InstanceCount: bp.InstanceCount,
		})
	}
	return out
}
