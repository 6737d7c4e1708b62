// Package riv defines the opaque handle surface of the animation runtime.
// The inspection engine only ever queries these handles; it never mutates
// playback or binding state through them.
package riv

// PropertyType is the runtime-level type of a declared view-model property.
type PropertyType int

const (
	TypeUnknown PropertyType = iota
	TypeNumber
	TypeString
	TypeBoolean
	TypeColor
	TypeEnum
	TypeTrigger
	TypeViewModel
)

// String returns the canonical lowercase name used in documents.
func (t PropertyType) String() string {
	switch t {
	case TypeNumber:
		return "number"
	case TypeString:
		return "string"
	case TypeBoolean:
		return "boolean"
	case TypeColor:
		return "color"
	case TypeEnum:
		return "enum"
	case TypeTrigger:
		return "trigger"
	case TypeViewModel:
		return "viewModel"
	default:
		return "unknown"
	}
}

// Property is one declared property of a blueprint or instance.
type Property struct {
	Name string
	Type PropertyType
}

// PropertySource enumerates declared properties. Runtime builds differ: some
// expose an array shape, others only count+index access. Properties reports
// ok=false when the array shape is unavailable and the indexed accessors must
// be used instead.
type PropertySource interface {
	Properties() ([]Property, bool)
	PropertyCount() int
	PropertyAt(i int) (Property, error)
}

// File is the loaded source file: indexed access to artboards, view-model
// definitions and enums.
type File interface {
	ArtboardCount() int
	ArtboardAt(i int) (Artboard, error)
	// ActiveArtboard is the artboard the runtime instantiated at load time.
	ActiveArtboard() (Artboard, error)
	// ViewModelCount reports ok=false when this runtime build has no count
	// accessor; callers must then probe ViewModelAt by index.
	ViewModelCount() (int, bool)
	ViewModelAt(i int) (ViewModelDefinition, error)
	EnumCount() int
	EnumAt(i int) (Enum, error)
	// DefaultInstance returns the default view-model instance bound to an
	// artboard, if the file declares one.
	DefaultInstance(a Artboard) (Instance, error)
}

// ViewModelDefinition is a raw blueprint definition. InstanceCount and
// InstanceNames describe how many instances of this blueprint exist anywhere
// in the source file, independent of where they are bound.
type ViewModelDefinition interface {
	PropertySource
	Name() string
	InstanceCount() int
	InstanceNames() []string
}

// ValueHandle is a live typed property accessor with a current value.
type ValueHandle interface {
	Value() (interface{}, error)
}

// Instance is a live view-model instance. Implementations must be comparable
// so instances can key the recursion visited-set.
type Instance interface {
	PropertySource
	Name() string
	// Definition is the back-reference to the originating blueprint. Not all
	// runtime builds expose it.
	Definition() (ViewModelDefinition, bool)
	Number(name string) (ValueHandle, error)
	String(name string) (ValueHandle, error)
	Boolean(name string) (ValueHandle, error)
	Color(name string) (ValueHandle, error)
	Enum(name string) (ValueHandle, error)
	// ViewModel returns the nested instance bound under a view-model property.
	ViewModel(name string) (Instance, error)
}

// Enum is one globally declared enum.
type Enum struct {
	Name   string
	Values []string
}

// Animation is declared animation metadata.
type Animation struct {
	Name      string
	FPS       float64
	Duration  float64
	WorkStart float64
	WorkEnd   float64
	Loop      string
}

// Artboard gives indexed access to animations and state machines.
type Artboard interface {
	Name() string
	AnimationCount() int
	AnimationAt(i int) (Animation, error)
	StateMachineCount() int
	StateMachineAt(i int) (StateMachine, error)
}

// TypedInput is a strongly-typed state-machine input as the live runtime
// reports it.
type TypedInput struct {
	Name     string
	TypeName string
}

// RawInput is a content-level input record carrying only a numeric type code.
type RawInput struct {
	Name     string
	TypeCode int
}

// StateMachine exposes both input views; calibration joins them by name.
type StateMachine interface {
	Name() string
	Inputs() []TypedInput
	RawInputs() []RawInput
}

// Asset is one embedded asset referenced by the source file.
type Asset struct {
	Name    string
	CDNUUID string
}

// AssetCallback is invoked once per referenced asset during loading. Return
// true to let the runtime proceed with its own default loading.
type AssetCallback func(Asset) bool

// LoadOptions configures a load.
type LoadOptions struct {
	OnAsset AssetCallback
}

// Loader materializes the object graph from raw source bytes. done is invoked
// exactly once. Depending on the runtime build the File handle may arrive as
// done's argument, as Load's return value, or on the loader itself via
// Session(); callers must normalize (see the orchestrator's load adapter).
type Loader interface {
	Load(src []byte, opts LoadOptions, done func(File, error)) File
	Session() File
}
