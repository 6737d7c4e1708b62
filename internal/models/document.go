package models

// Document is the final, JSON-serializable description of one inspected
// animation source file. It is assembled once per inspect session and never
// mutated afterwards.
type Document struct {
	Artboards  []ArtboardDescriptor `json:"artboards"`
	Assets     []AssetRecord        `json:"assets"`
	ViewModels []BlueprintSummary   `json:"allViewModelDefinitionsAndInstances"`
	Enums      []EnumDescriptor     `json:"globalEnums"`
}

// ArtboardDescriptor describes one artboard and everything attached to it.
type ArtboardDescriptor struct {
	Name          string                  `json:"name"`
	Animations    []AnimationDescriptor   `json:"animations"`
	StateMachines []StateMachineDescriptor `json:"stateMachines"`
	ViewModels    []ParsedInstance        `json:"viewModels"`
}

// AnimationDescriptor describes a single linear animation.
type AnimationDescriptor struct {
	Name      string  `json:"name"`
	FPS       float64 `json:"fps"`
	Duration  float64 `json:"duration"`
	WorkStart float64 `json:"workStart"`
	WorkEnd   float64 `json:"workEnd"`
	LoopType  string  `json:"loopType"`
}

// StateMachineDescriptor describes a state machine and its inputs.
type StateMachineDescriptor struct {
	Name   string            `json:"name"`
	Inputs []InputDescriptor `json:"inputs"`
}

// InputDescriptor is one state-machine input with its resolved semantic type
// name ("Number", "Boolean", "Trigger", or "Unknown" when uncalibrated).
type InputDescriptor struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// AssetRecord is one embedded asset observed during loading.
type AssetRecord struct {
	Name    string `json:"name"`
	CDNUUID string `json:"cdnUuid"`
}

// EnumDescriptor is one globally declared enum and its values.
type EnumDescriptor struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// BlueprintSummary is the externalized form of a discovered view-model
// blueprint: its declared properties plus the file-global instance metadata
// the definition reports about itself.
type BlueprintSummary struct {
	BlueprintName string                      `json:"blueprintName"`
	Properties    []ScalarPropertyDeclaration `json:"blueprintProperties"`
	InstanceNames []string                    `json:"instanceNamesFromDefinition"`
	InstanceCount int                         `json:"instanceCountFromDefinition"`
}
