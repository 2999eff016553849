package rules

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
)

const (
	keyFieldExtractors = "field_extractors"
	keyRequiredField   = "required_field"
)

// LoadFile reads a YAML (or JSON) rules file and returns the compiled RuleSet.
// Every failure is a configuration error.
func LoadFile(path string, logger *slog.Logger) (*RuleSet, error) {
	if logger == nil {
		logger = slog.Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, common.ConfigError(fmt.Sprintf("read rules file %s", path), err)
	}
	rs, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if !rs.Has(rs.RequiredField()) {
		logger.Warn("rules.required_field.unmatched",
			"required_field", rs.RequiredField(),
			"fields", rs.Fields(),
			"path", path,
		)
	}
	logger.Info("rules.loaded", "path", path, "fields", rs.Len(), "required_field", rs.RequiredField())
	return rs, nil
}

// Parse decodes and validates rules file content. Field order follows the document.
func Parse(data []byte) (*RuleSet, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, common.ConfigError("decode rules file", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, common.ConfigError("rules file is empty", nil)
	}

	// schema check runs on the JSON form of the document
	var generic any
	if err := doc.Decode(&generic); err != nil {
		return nil, common.ConfigError("decode rules file", err)
	}
	asJSON, err := json.Marshal(generic)
	if err != nil {
		return nil, common.ConfigError("rules file is not a string-keyed mapping", err)
	}
	if err := ValidateJSONAgainstSchema(BuildConfigJSONSchema(), asJSON); err != nil {
		return nil, common.ConfigError("invalid rules file", err)
	}

	root := doc.Content[0]
	var (
		entries  []Entry
		required string
	)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]
		switch key.Value {
		case keyFieldExtractors:
			for j := 0; j+1 < len(val.Content); j += 2 {
				entries = append(entries, Entry{Field: scalar(val.Content[j]), Pattern: scalar(val.Content[j+1])})
			}
		case keyRequiredField:
			required = scalar(val)
		}
	}
	return New(entries, required)
}

func scalar(n *yaml.Node) string {
	if n.Kind == yaml.AliasNode && n.Alias != nil {
		return n.Alias.Value
	}
	return n.Value
}
