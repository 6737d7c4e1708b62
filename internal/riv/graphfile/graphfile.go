// Package graphfile is a runtime binding that materializes the riv handle
// graph from a JSON scene-graph description. It backs the server when no
// native runtime is linked in and doubles as the fixture machinery for
// engine tests.
package graphfile

import (
	"encoding/json"
	"fmt"

	"github.com/riv-inspector/backend/internal/riv"
)

func init() {
	riv.Register("graph", func() riv.Loader { return New() })
}

// Graph is the on-disk scene-graph format.
type Graph struct {
	// Delivery selects how the loaded file handle is surfaced: "callback"
	// (default), "return", or "session". Real runtime builds differ here.
	Delivery           string         `json:"delivery,omitempty"`
	ActiveArtboard     string         `json:"activeArtboard,omitempty"`
	HideViewModelCount bool           `json:"hideViewModelCount,omitempty"`
	Artboards          []ArtboardDef  `json:"artboards"`
	Enums              []EnumDef      `json:"enums,omitempty"`
	Blueprints         []BlueprintDef `json:"blueprints,omitempty"`
	Instances          []InstanceDef  `json:"instances,omitempty"`
	Assets             []AssetDef     `json:"assets,omitempty"`
}

// ArtboardDef describes one artboard.
type ArtboardDef struct {
	Name            string            `json:"name"`
	Animations      []AnimationDef    `json:"animations,omitempty"`
	StateMachines   []StateMachineDef `json:"stateMachines,omitempty"`
	DefaultInstance string            `json:"defaultInstance,omitempty"`
}

// AnimationDef describes one linear animation.
type AnimationDef struct {
	Name      string  `json:"name"`
	FPS       float64 `json:"fps"`
	Duration  float64 `json:"duration"`
	WorkStart float64 `json:"workStart"`
	WorkEnd   float64 `json:"workEnd"`
	Loop      string  `json:"loop"`
}

// StateMachineDef carries both the typed input list and the content-level
// records with numeric type codes.
type StateMachineDef struct {
	Name      string          `json:"name"`
	Inputs    []TypedInputDef `json:"inputs,omitempty"`
	RawInputs []RawInputDef   `json:"rawInputs,omitempty"`
}

type TypedInputDef struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type RawInputDef struct {
	Name     string `json:"name"`
	TypeCode int    `json:"typeCode"`
}

// EnumDef is one global enum.
type EnumDef struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// BlueprintDef declares a view-model blueprint. IndexedProperties forces the
// count+index property access shape instead of the array shape.
type BlueprintDef struct {
	Name              string        `json:"name"`
	Properties        []PropertyDef `json:"properties"`
	InstanceNames     []string      `json:"instanceNames,omitempty"`
	InstanceCount     int           `json:"instanceCount,omitempty"`
	IndexedProperties bool          `json:"indexedProperties,omitempty"`
}

// PropertyDef is one declared property. Type is a lowercase semantic name:
// number, string, boolean, color, enum, trigger, or viewModel.
type PropertyDef struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// InstanceDef is one live instance. Nested maps view-model property names to
// instance ids (cycles are expressible). Failing accessors error, Panicking
// accessors panic, NoEnumAccessor suppresses only the enum accessor.
type InstanceDef struct {
	ID             string                 `json:"id"`
	Name           string                 `json:"name"`
	Blueprint      string                 `json:"blueprint"`
	HideBlueprint  bool                   `json:"hideBlueprint,omitempty"`
	Values         map[string]interface{} `json:"values,omitempty"`
	Nested         map[string]string      `json:"nested,omitempty"`
	Failing        []string               `json:"failing,omitempty"`
	Panicking      []string               `json:"panicking,omitempty"`
	NoEnumAccessor []string               `json:"noEnumAccessor,omitempty"`
}

// AssetDef is one embedded asset reference.
type AssetDef struct {
	Name    string `json:"name"`
	CDNUUID string `json:"cdnUuid,omitempty"`
}

// Loader implements riv.Loader over a Graph.
type Loader struct {
	session *file
}

// New creates a fresh loader.
func New() *Loader {
	return &Loader{}
}

// Load decodes src, invokes the asset hook once per asset, and delivers the
// file handle through the channel the graph's delivery mode selects. done is
// invoked exactly once, including on decode failure.
func (l *Loader) Load(src []byte, opts riv.LoadOptions, done func(riv.File, error)) riv.File {
	var g Graph
	if err := json.Unmarshal(src, &g); err != nil {
		done(nil, fmt.Errorf("decoding scene graph: %w", err))
		return nil
	}

	f := build(&g)

	if opts.OnAsset != nil {
		for _, a := range g.Assets {
			opts.OnAsset(riv.Asset{Name: a.Name, CDNUUID: a.CDNUUID})
		}
	}

	switch g.Delivery {
	case "return":
		done(nil, nil)
		return f
	case "session":
		l.session = f
		done(nil, nil)
		return nil
	default: // "callback"
		done(f, nil)
		return nil
	}
}

// Session returns the file handle for "session" delivery builds.
func (l *Loader) Session() riv.File {
	return l.session
}

func typeFromName(name string) riv.PropertyType {
	switch name {
	case "number":
		return riv.TypeNumber
	case "string":
		return riv.TypeString
	case "boolean":
		return riv.TypeBoolean
	case "color":
		return riv.TypeColor
	case "enum":
		return riv.TypeEnum
	case "trigger":
		return riv.TypeTrigger
	case "viewModel":
		return riv.TypeViewModel
	default:
		return riv.TypeUnknown
	}
}

// build wires the whole handle graph up front so every instance id maps to
// exactly one *instance pointer; the resolver's visited-set relies on that
// identity when a graph contains cycles.
func build(g *Graph) *file {
	f := &file{graph: g}

	for i := range g.Blueprints {
		def := &definition{def: &g.Blueprints[i]}
		f.definitions = append(f.definitions, def)
		if f.defsByName == nil {
			f.defsByName = make(map[string]*definition)
		}
		f.defsByName[def.Name()] = def
	}

	f.instances = make(map[string]*instance, len(g.Instances))
	for i := range g.Instances {
		d := &g.Instances[i]
		inst := &instance{def: d, file: f}
		if bp, ok := f.defsByName[d.Blueprint]; ok {
			inst.blueprint = bp
		}
		f.instances[d.ID] = inst
	}

	for i := range g.Artboards {
		f.artboards = append(f.artboards, &artboard{def: &g.Artboards[i]})
	}

	return f
}
