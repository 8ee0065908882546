// Package policyfile reads and writes policy documents in JSON, JSONC or
// YAML. A document holds one policy or a list of them.
package policyfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	themis_errors "github.com/dev-mohitbeniwal/themis/errors"
	"github.com/dev-mohitbeniwal/themis/model"
)

type Format string

const (
	FormatJSON  Format = "json"
	FormatJSONC Format = "jsonc"
	FormatYAML  Format = "yaml"
)

// FormatFor picks the format from the file extension. Unknown extensions
// are read as JSONC, which accepts plain JSON too.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".json":
		return FormatJSON
	default:
		return FormatJSONC
	}
}

// Load reads path and returns its policies, normalized and validated.
func Load(path string) ([]model.Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy file: %w", err)
	}
	return Parse(data, FormatFor(path))
}

func Parse(data []byte, format Format) ([]model.Policy, error) {
	raw, err := toJSON(data, format)
	if err != nil {
		return nil, err
	}

	var policies []model.Policy
	trimmed := bytes.TrimSpace(raw)
	switch {
	case len(trimmed) == 0:
		return nil, fmt.Errorf("%w: empty policy file", themis_errors.ErrSchemaViolation)
	case trimmed[0] == '[':
		if err := json.Unmarshal(trimmed, &policies); err != nil {
			return nil, fmt.Errorf("%w: %v", themis_errors.ErrSchemaViolation, err)
		}
	default:
		var policy model.Policy
		if err := json.Unmarshal(trimmed, &policy); err != nil {
			return nil, fmt.Errorf("%w: %v", themis_errors.ErrSchemaViolation, err)
		}
		policies = []model.Policy{policy}
	}
	if len(policies) == 0 {
		return nil, fmt.Errorf("%w: no policies in file", themis_errors.ErrSchemaViolation)
	}

	seen := make(map[string]int, len(policies))
	for i := range policies {
		if err := policies[i].Normalize(); err != nil {
			return nil, fmt.Errorf("policy %d: %w", i, err)
		}
		if j, dup := seen[policies[i].Name]; dup {
			return nil, fmt.Errorf("%w: policies %d and %d are both named %q",
				themis_errors.ErrSchemaViolation, j, i, policies[i].Name)
		}
		seen[policies[i].Name] = i
	}
	return policies, nil
}

// toJSON converts YAML and JSONC input into plain JSON so every format goes
// through the same value codec.
func toJSON(data []byte, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return data, nil
	case FormatJSONC:
		return jsonc.ToJSON(data), nil
	case FormatYAML:
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: %v", themis_errors.ErrSchemaViolation, err)
		}
		out, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", themis_errors.ErrSchemaViolation, err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown policy file format %q", format)
	}
}

// Write stores policies at path in the format its extension names. A single
// policy is written as an object.
func Write(path string, policies ...model.Policy) error {
	var doc any = policies
	if len(policies) == 1 {
		doc = policies[0]
	}

	var (
		data []byte
		err  error
	)
	if FormatFor(path) == FormatYAML {
		// round trip through JSON so values keep their JSON shape
		var generic any
		raw, merr := json.Marshal(doc)
		if merr != nil {
			return merr
		}
		if err := json.Unmarshal(raw, &generic); err != nil {
			return err
		}
		data, err = yaml.Marshal(generic)
	} else {
		data, err = json.MarshalIndent(doc, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return fmt.Errorf("encode policies: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// DefaultPolicy lets every principal list and execute, and denies anything
// else.
func DefaultPolicy() model.Policy {
	return model.Policy{
		Version:       model.DefaultPolicyVersion,
		Name:          "default-policy",
		Description:   "Default policy for a Themis deployment",
		DefaultEffect: model.EffectDeny,
		Rules: []model.Rule{
			{
				Name:                "unrestricted-access",
				Description:         "All principals can list and execute",
				Effect:              model.EffectAllow,
				PrincipalConditions: []model.Condition{},
				ResourceConditions:  []model.Condition{},
				Actions:             []string{"list", "execute"},
			},
		},
	}
}
