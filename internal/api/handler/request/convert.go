package request

// ConvertDTO asks for the conversion of one node. Node is a descriptor
// document; SemanticClass overrides the class it declares.
type ConvertDTO struct {
	SemanticClass string         `json:"semantic_class"`
	Package       string         `json:"package" validate:"omitempty,max=64"`
	Node          map[string]any `json:"node" validate:"required"`
}

// RunDTO starts a batch conversion of the descriptors under INPUT_DIR/Path
type RunDTO struct {
	Path    string `json:"path"`
	Pattern string `json:"pattern"`
	Package string `json:"package" validate:"omitempty,max=64"`
	Workers int    `json:"workers" validate:"omitempty,min=1,max=64"`
}
