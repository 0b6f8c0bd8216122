package domain

type NodePropertyType string

const (
	NodePropertyType_String       NodePropertyType = "string"
	NodePropertyType_Text         NodePropertyType = "text"
	NodePropertyType_Integer      NodePropertyType = "integer"
	NodePropertyType_Number       NodePropertyType = "number"
	NodePropertyType_Float        NodePropertyType = "float"
	NodePropertyType_Boolean      NodePropertyType = "boolean"
	NodePropertyType_Array        NodePropertyType = "array"
	NodePropertyType_Map          NodePropertyType = "map"
	NodePropertyType_CodeEditor   NodePropertyType = "code_editor"
	NodePropertyType_ListTagInput NodePropertyType = "list_tag_input"
)

type CodeLanguageType string

const (
	CodeLanguageType_JSON CodeLanguageType = "json"
)

type NodeProperty struct {
	Key         string           `json:"key" yaml:"key"`
	Name        string           `json:"name" yaml:"name"`
	Description string           `json:"description" yaml:"description"`
	Required    bool             `json:"required" yaml:"required"`
	Hidden      bool             `json:"hidden,omitempty" yaml:"hidden,omitempty"`
	Advanced    bool             `json:"advanced,omitempty" yaml:"advanced,omitempty"` // collapsed under "options" in the editor
	Type        NodePropertyType `json:"type" yaml:"type"`
	IsSecret    bool             `json:"is_secret,omitempty" yaml:"is_secret,omitempty"`
	Default     any              `json:"default,omitempty" yaml:"default,omitempty"`

	Placeholder string `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Help        string `json:"help,omitempty" yaml:"help,omitempty"`

	ShowIf *ShowIf `json:"show_if,omitempty" yaml:"show_if,omitempty"`

	Options      []NodePropertyOption         `json:"options,omitempty" yaml:"options,omitempty"`
	MultipleOpts []MultipleNodePropertyOption `json:"multiple_opts,omitempty" yaml:"multiple_opts,omitempty"`
	NumberOpts   *NumberPropertyOptions       `json:"number_opts,omitempty" yaml:"number_opts,omitempty"`
	ArrayOpts    *ArrayPropertyOptions        `json:"array_opts,omitempty" yaml:"array_opts,omitempty"`
	MapOpts      *MapPropertyOptions          `json:"map_opts,omitempty" yaml:"map_opts,omitempty"`

	CodeLanguage CodeLanguageType `json:"code_language,omitempty" yaml:"code_language,omitempty"`

	ExpressionChoice bool `json:"expression_choice" yaml:"expression_choice"`
}

type NodePropertyOption struct {
	Label       string `json:"label" yaml:"label"`
	Value       any    `json:"value" yaml:"value"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

type ShowIf struct {
	PropertyKey string `json:"property_key" yaml:"property_key"`
	Values      []any  `json:"values" yaml:"values"`
}

type NumberPropertyOptions struct {
	Min     float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max     float64 `json:"max,omitempty" yaml:"max,omitempty"`
	Default float64 `json:"default,omitempty" yaml:"default,omitempty"`
	Step    float64 `json:"step,omitempty" yaml:"step,omitempty"`
}

type ArrayPropertyOptions struct {
	MinItems       int              `json:"min_items,omitempty" yaml:"min_items,omitempty"`
	MaxItems       int              `json:"max_items,omitempty" yaml:"max_items,omitempty"`
	ItemType       NodePropertyType `json:"item_type" yaml:"item_type"`
	ItemProperties []NodeProperty   `json:"item_properties,omitempty" yaml:"item_properties,omitempty"`
}

type MapPropertyOptions struct {
	Properties []NodeProperty `json:"properties" yaml:"properties"`
}

type MultipleNodePropertyOption struct {
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
}

// Defaults collects the declared default of every property, recursing into map options.
func Defaults(properties []NodeProperty) map[string]any {
	defaults := map[string]any{}

	for _, property := range properties {
		if property.MapOpts != nil {
			nested := Defaults(property.MapOpts.Properties)
			if len(nested) > 0 {
				defaults[property.Key] = nested
			}

			continue
		}

		if property.Default != nil {
			defaults[property.Key] = property.Default
		}
	}

	return defaults
}

// WithDefaults returns settings with every missing key filled from defaults. Nested maps
// are merged key by key; settings always win.
func WithDefaults(defaults, settings map[string]any) map[string]any {
	merged := make(map[string]any, len(defaults)+len(settings))

	for key, value := range defaults {
		merged[key] = value
	}

	for key, value := range settings {
		nestedDefaults, okDefaults := merged[key].(map[string]any)
		nestedSettings, okSettings := value.(map[string]any)

		if okDefaults && okSettings {
			merged[key] = WithDefaults(nestedDefaults, nestedSettings)
			continue
		}

		merged[key] = value
	}

	return merged
}
