package testrunner

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Metadata is the YAML frontmatter of a Test262 test.
type Metadata struct {
	Description string              `yaml:"description"`
	Features    []string            `yaml:"features"`
	Flags       []string            `yaml:"flags"`
	Includes    []string            `yaml:"includes"`
	Negative    NegativeExpectation `yaml:"negative"`
}

type NegativeExpectation struct {
	Phase string `yaml:"phase"` // "parse", "resolution", "runtime"
	Type  string `yaml:"type"`  // "SyntaxError", "TypeError", etc.
}

// HasFlag reports whether the test carries flag.
func (m *Metadata) HasFlag(flag string) bool {
	for _, f := range m.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// ParseMetadata decodes the frontmatter between /*--- and ---*/. A test
// without frontmatter has empty metadata.
func ParseMetadata(source string) (*Metadata, error) {
	var meta Metadata
	start := strings.Index(source, "/*---")
	if start < 0 {
		return &meta, nil
	}
	end := strings.Index(source[start:], "---*/")
	if end < 0 {
		return nil, fmt.Errorf("unterminated frontmatter")
	}
	if err := yaml.Unmarshal([]byte(source[start+5:start+end]), &meta); err != nil {
		return nil, fmt.Errorf("frontmatter: %w", err)
	}
	return &meta, nil
}

// isUnsupportedFeature reports proposals and host facilities the engine
// does not implement.
func isUnsupportedFeature(feature string) bool {
	switch feature {
	case "Atomics", "SharedArrayBuffer", "Temporal", "ShadowRealm", "Intl",
		"decorators", "FinalizationRegistry", "WeakRef", "IsHTMLDDA",
		"dynamic-import", "import-assertions", "import-attributes", "json-modules",
		"source-phase-imports", "top-level-await", "regexp-v-flag",
		"resizable-arraybuffer", "explicit-resource-management":
		return true
	}
	return false
}
