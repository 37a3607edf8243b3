package gen

import (
	"encoding/hex"
	"sort"

	"github.com/zeebo/blake3"
)

// Field is an instance field a generated adapter needs next to *nodekit.Base.
// Init, when set, is the expression the constructor assigns to it.
type Field struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Init string `json:"init,omitempty"`
}

// Result is the output of one generator call. Code holds Execute and the
// per-operation handlers; Helpers holds support methods on the same receiver.
type Result struct {
	Class           SemanticClass  `json:"class"`
	NodeName        string         `json:"node_name"`
	TypeName        string         `json:"type_name"`
	Code            string         `json:"code"`
	Imports         []string       `json:"imports"`
	Helpers         string         `json:"helpers"`
	ConversionNotes []string       `json:"conversion_notes"`
	Fields          []Field        `json:"fields,omitempty"`
	Extras          map[string]any `json:"extras"`
	Fingerprint     string         `json:"fingerprint"`
}

// Specialization returns the specialization chosen by the generator, if any
func (r *Result) Specialization() string {
	s, _ := r.Extras["specialization"].(string)
	return s
}

// Fingerprint hashes the emitted source: identical inputs give identical fingerprints
func Fingerprint(typeName, code, helpers string, imports []string) string {
	h := blake3.New()
	sorted := append([]string(nil), imports...)
	sort.Strings(sorted)
	for _, part := range append([]string{typeName, code, helpers}, sorted...) {
		_, _ = h.Write([]byte(part))
		_, _ = h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
