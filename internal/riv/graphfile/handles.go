package graphfile

import (
	"fmt"

	"github.com/riv-inspector/backend/internal/riv"
)

// file implements riv.File.
type file struct {
	graph       *Graph
	artboards   []*artboard
	definitions []*definition
	defsByName  map[string]*definition
	instances   map[string]*instance
}

func (f *file) ArtboardCount() int { return len(f.artboards) }

func (f *file) ArtboardAt(i int) (riv.Artboard, error) {
	if i < 0 || i >= len(f.artboards) {
		return nil, fmt.Errorf("artboard index %d out of range", i)
	}
	return f.artboards[i], nil
}

func (f *file) ActiveArtboard() (riv.Artboard, error) {
	if f.graph.ActiveArtboard != "" {
		for _, a := range f.artboards {
			if a.Name() == f.graph.ActiveArtboard {
				return a, nil
			}
		}
		return nil, fmt.Errorf("active artboard %q not found", f.graph.ActiveArtboard)
	}
	if len(f.artboards) == 0 {
		return nil, fmt.Errorf("file has no artboards")
	}
	return f.artboards[0], nil
}

func (f *file) ViewModelCount() (int, bool) {
	if f.graph.HideViewModelCount {
		return 0, false
	}
	return len(f.definitions), true
}

func (f *file) ViewModelAt(i int) (riv.ViewModelDefinition, error) {
	if i < 0 || i >= len(f.definitions) {
		return nil, fmt.Errorf("view model index %d out of range", i)
	}
	return f.definitions[i], nil
}

func (f *file) EnumCount() int { return len(f.graph.Enums) }

func (f *file) EnumAt(i int) (riv.Enum, error) {
	if i < 0 || i >= len(f.graph.Enums) {
		return riv.Enum{}, fmt.Errorf("enum index %d out of range", i)
	}
	e := f.graph.Enums[i]
	return riv.Enum{Name: e.Name, Values: e.Values}, nil
}

func (f *file) DefaultInstance(a riv.Artboard) (riv.Instance, error) {
	ab, ok := a.(*artboard)
	if !ok || ab.def.DefaultInstance == "" {
		return nil, fmt.Errorf("artboard %q has no default view model instance", a.Name())
	}
	inst, ok := f.instances[ab.def.DefaultInstance]
	if !ok {
		return nil, fmt.Errorf("default instance %q not found", ab.def.DefaultInstance)
	}
	return inst, nil
}

// artboard implements riv.Artboard.
type artboard struct {
	def *ArtboardDef
}

func (a *artboard) Name() string        { return a.def.Name }
func (a *artboard) AnimationCount() int { return len(a.def.Animations) }

func (a *artboard) AnimationAt(i int) (riv.Animation, error) {
	if i < 0 || i >= len(a.def.Animations) {
		return riv.Animation{}, fmt.Errorf("animation index %d out of range", i)
	}
	d := a.def.Animations[i]
	return riv.Animation{
		Name:      d.Name,
		FPS:       d.FPS,
		Duration:  d.Duration,
		WorkStart: d.WorkStart,
		WorkEnd:   d.WorkEnd,
		Loop:      d.Loop,
	}, nil
}

func (a *artboard) StateMachineCount() int { return len(a.def.StateMachines) }

func (a *artboard) StateMachineAt(i int) (riv.StateMachine, error) {
	if i < 0 || i >= len(a.def.StateMachines) {
		return nil, fmt.Errorf("state machine index %d out of range", i)
	}
	return &stateMachine{def: &a.def.StateMachines[i]}, nil
}

// stateMachine implements riv.StateMachine.
type stateMachine struct {
	def *StateMachineDef
}

func (s *stateMachine) Name() string { return s.def.Name }

func (s *stateMachine) Inputs() []riv.TypedInput {
	out := make([]riv.TypedInput, 0, len(s.def.Inputs))
	for _, in := range s.def.Inputs {
		out = append(out, riv.TypedInput{Name: in.Name, TypeName: in.Type})
	}
	return out
}

func (s *stateMachine) RawInputs() []riv.RawInput {
	out := make([]riv.RawInput, 0, len(s.def.RawInputs))
	for _, in := range s.def.RawInputs {
		out = append(out, riv.RawInput{Name: in.Name, TypeCode: in.TypeCode})
	}
	return out
}

// definition implements riv.ViewModelDefinition.
type definition struct {
	def *BlueprintDef
}

func (d *definition) Name() string { return d.def.Name }

func (d *definition) Properties() ([]riv.Property, bool) {
	if d.def.IndexedProperties {
		return nil, false
	}
	return d.propertyList(), true
}

func (d *definition) PropertyCount() int { return len(d.def.Properties) }

func (d *definition) PropertyAt(i int) (riv.Property, error) {
	if i < 0 || i >= len(d.def.Properties) {
		return riv.Property{}, fmt.Errorf("property index %d out of range", i)
	}
	p := d.def.Properties[i]
	return riv.Property{Name: p.Name, Type: typeFromName(p.Type)}, nil
}

func (d *definition) propertyList() []riv.Property {
	out := make([]riv.Property, 0, len(d.def.Properties))
	for _, p := range d.def.Properties {
		out = append(out, riv.Property{Name: p.Name, Type: typeFromName(p.Type)})
	}
	return out
}

func (d *definition) InstanceCount() int { return d.def.InstanceCount }

func (d *definition) InstanceNames() []string { return d.def.InstanceNames }

// instance implements riv.Instance.
type instance struct {
	def       *InstanceDef
	blueprint *definition // nil when the blueprint name is unknown
	file      *file
}

func (in *instance) Name() string { return in.def.Name }

func (in *instance) Definition() (riv.ViewModelDefinition, bool) {
	if in.def.HideBlueprint || in.blueprint == nil {
		return nil, false
	}
	return in.blueprint, true
}

// Declared properties mirror the blueprint's. Hiding the back-reference hides
// only the handle, not the declaration shape.
func (in *instance) Properties() ([]riv.Property, bool) {
	if in.blueprint == nil {
		return nil, true
	}
	return in.blueprint.propertyList(), true
}

func (in *instance) PropertyCount() int {
	if in.blueprint == nil {
		return 0
	}
	return in.blueprint.PropertyCount()
}

func (in *instance) PropertyAt(i int) (riv.Property, error) {
	if in.blueprint == nil {
		return riv.Property{}, fmt.Errorf("property index %d out of range", i)
	}
	return in.blueprint.PropertyAt(i)
}

func (in *instance) accessor(name string) (riv.ValueHandle, error) {
	for _, f := range in.def.Panicking {
		if f == name {
			panic(fmt.Sprintf("accessor %q exploded", name))
		}
	}
	for _, f := range in.def.Failing {
		if f == name {
			return nil, fmt.Errorf("accessor %q failed", name)
		}
	}
	if !in.declares(name) {
		return nil, fmt.Errorf("no accessor named %q", name)
	}
	v, ok := in.def.Values[name]
	return &valueHandle{name: name, value: v, present: ok}, nil
}

func (in *instance) declares(name string) bool {
	if in.blueprint == nil {
		_, ok := in.def.Values[name]
		return ok
	}
	for _, p := range in.blueprint.def.Properties {
		if p.Name == name {
			return true
		}
	}
	return false
}

func (in *instance) Number(name string) (riv.ValueHandle, error)  { return in.accessor(name) }
func (in *instance) String(name string) (riv.ValueHandle, error)  { return in.accessor(name) }
func (in *instance) Boolean(name string) (riv.ValueHandle, error) { return in.accessor(name) }
func (in *instance) Color(name string) (riv.ValueHandle, error)   { return in.accessor(name) }

func (in *instance) Enum(name string) (riv.ValueHandle, error) {
	for _, f := range in.def.NoEnumAccessor {
		if f == name {
			return nil, fmt.Errorf("no enum accessor named %q", name)
		}
	}
	return in.accessor(name)
}

func (in *instance) ViewModel(name string) (riv.Instance, error) {
	id, ok := in.def.Nested[name]
	if !ok {
		return nil, fmt.Errorf("no nested instance under %q", name)
	}
	nested, ok := in.file.instances[id]
	if !ok {
		return nil, fmt.Errorf("nested instance %q not found", id)
	}
	return nested, nil
}

// valueHandle implements riv.ValueHandle.
type valueHandle struct {
	name    string
	value   interface{}
	present bool
}

func (h *valueHandle) Value() (interface{}, error) {
	if !h.present {
		return nil, fmt.Errorf("property %q has no value", h.name)
	}
	return h.value, nil
}
