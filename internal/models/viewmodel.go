package models

// PropertyType is the semantic type of a scalar view-model property.
type PropertyType string

const (
	PropertyTypeNumber  PropertyType = "number"
	PropertyTypeString  PropertyType = "string"
	PropertyTypeBoolean PropertyType = "boolean"
	PropertyTypeColor   PropertyType = "color"
	PropertyTypeEnum    PropertyType = "enum"
	PropertyTypeTrigger PropertyType = "trigger"
)

// ScalarPropertyDeclaration is one declared scalar property on a blueprint.
// Names are unique within a blueprint.
type ScalarPropertyDeclaration struct {
	Name string       `json:"name"`
	Type PropertyType `json:"type"`
}

// ScalarProperty is a resolved property value on a parsed instance. Value is
// a plain number/string/bool, or a sentinel string when extraction failed.
type ScalarProperty struct {
	Name  string       `json:"name"`
	Type  PropertyType `json:"type"`
	Value interface{}  `json:"value"`
}

// ParsedInstance is one node of the resolved view-model tree. Nodes are built
// once during a single recursive descent and never mutated afterwards; a node
// is owned by its parent (or by the artboard, for the root).
type ParsedInstance struct {
	InstanceName     string           `json:"instanceName"`
	BlueprintName    string           `json:"blueprintName"`
	Properties       []ScalarProperty `json:"properties"`
	NestedViewModels []ParsedInstance `json:"nestedViewModels"`
	Error            bool             `json:"error,omitempty"`
}
