package rules

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"fastrecycle-hq/salvage/pkg/amount"
)

// Top-level document fields. Matching is case-insensitive.
const (
	fieldKeywords = "keywords"
	fieldExclude  = "exclude"
)

// OutputRule converts matched weight into a target entity.
type OutputRule struct {
	// Target is the entity produced.
	Target string `yaml:"recycleTo" json:"recycleTo"`

	// Ratio is the yield per unit of item weight. Never negative.
	Ratio amount.Amount `yaml:"matRatio" json:"matRatio"`
}

// MatchRule binds a match-key to its output rules. An empty Rules list means
// "matches, yields nothing".
type MatchRule struct {
	Key   string       `json:"key"`
	Rules []OutputRule `json:"rules"`
}

// RuleDocument is one parsed configuration source.
type RuleDocument struct {
	// Source names the document (file path or label).
	Source string

	// MatchRules keeps the order of the keys in the document.
	MatchRules []MatchRule

	// ExcludedKeys lists identifiers whose items are never processed.
	ExcludedKeys []string
}

// Lookup returns the rules bound to key, compared case-insensitively.
func (d *RuleDocument) Lookup(key string) ([]OutputRule, bool) {
	folded := Fold(key)
	for _, mr := range d.MatchRules {
		if Fold(mr.Key) == folded {
			return mr.Rules, true
		}
	}
	return nil, false
}

// DecodeDocument parses a rule document:
//
//	{"Keywords": {"leather": [{"recycleTo": "Skyrim.esm|0xDB5D2", "matRatio": 0.1}]},
//	 "Exclude": ["Skyrim.esm|0xA8668"]}
//
// JSON and YAML spellings are both accepted.
func DecodeDocument(source string, data []byte) (*RuleDocument, error) {
	root, err := decodeRoot(source, data)
	if err != nil {
		return nil, err
	}

	if root.Kind != yaml.MappingNode {
		return nil, &ValidationError{
			Source:  source,
			Line:    root.Line,
			Message: fmt.Sprintf("document must be a mapping, got %s", kindName(root.Kind)),
		}
	}

	doc := &RuleDocument{Source: source}
	for i := 0; i+1 < len(root.Content); i += 2 {
		name, value := root.Content[i], root.Content[i+1]
		switch strings.ToLower(name.Value) {
		case fieldKeywords:
			if doc.MatchRules, err = decodeMatchRules(source, name.Value, value); err != nil {
				return nil, err
			}
		case fieldExclude:
			if doc.ExcludedKeys, err = decodeIdentifiers(source, name.Value, value); err != nil {
				return nil, err
			}
		}
	}

	return doc, nil
}

// DecodeExclusions parses an exclusion document: a list of identifiers.
func DecodeExclusions(source string, data []byte) (*RuleDocument, error) {
	root, err := decodeRoot(source, data)
	if err != nil {
		return nil, err
	}

	keys, err := decodeIdentifiers(source, "", root)
	if err != nil {
		return nil, err
	}
	return &RuleDocument{Source: source, ExcludedKeys: keys}, nil
}

func decodeRoot(source string, data []byte) (*yaml.Node, error) {
	if !utf8.Valid(data) {
		return nil, &LoadError{
			Source:  source,
			Message: "document contains invalid UTF-8 encoding",
		}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &ValidationError{Source: source, Message: "document is empty"}
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, &ParseError{
			Source:  source,
			Line:    errorLine(err),
			Message: "invalid JSON/YAML",
			Cause:   err,
		}
	}
	if node.Kind != yaml.DocumentNode || len(node.Content) == 0 {
		return nil, &ValidationError{Source: source, Message: "document is empty"}
	}
	return node.Content[0], nil
}

func decodeMatchRules(source, field string, node *yaml.Node) ([]MatchRule, error) {
	if isNull(node) {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, &ValidationError{
			Source:    source,
			FieldPath: field,
			Line:      node.Line,
			Message:   fmt.Sprintf("expected a mapping of match-keys, got %s", kindName(node.Kind)),
		}
	}

	seen := make(map[string]string, len(node.Content)/2)
	out := make([]MatchRule, 0, len(node.Content)/2)

	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, listNode := node.Content[i], node.Content[i+1]
		key := strings.TrimSpace(keyNode.Value)
		path := field + "." + key

		if keyNode.Kind != yaml.ScalarNode || key == "" {
			return nil, &ValidationError{
				Source:    source,
				FieldPath: field,
				Line:      keyNode.Line,
				Message:   "match-key must be a non-empty string",
			}
		}
		if prev, dup := seen[Fold(key)]; dup {
			return nil, &ValidationError{
				Source:  source,
				Key:     key,
				Line:    keyNode.Line,
				Message: fmt.Sprintf("match-key duplicates %q (keys are case-insensitive)", prev),
			}
		}
		seen[Fold(key)] = key

		if listNode.Kind != yaml.SequenceNode {
			return nil, &ValidationError{
				Source:    source,
				Key:       key,
				FieldPath: path,
				Line:      listNode.Line,
				Message:   fmt.Sprintf("expected a list of output rules, got %s", kindName(listNode.Kind)),
			}
		}

		rules := make([]OutputRule, 0, len(listNode.Content))
		for j, ruleNode := range listNode.Content {
			rule, err := decodeOutputRule(source, key, fmt.Sprintf("%s[%d]", path, j), ruleNode)
			if err != nil {
				return nil, err
			}
			rules = append(rules, rule)
		}
		out = append(out, MatchRule{Key: key, Rules: rules})
	}

	return out, nil
}

func decodeOutputRule(source, key, path string, node *yaml.Node) (OutputRule, error) {
	invalid := func(line int, msg string, cause error) error {
		return &ValidationError{
			Source:    source,
			Key:       key,
			FieldPath: path,
			Line:      line,
			Message:   msg,
			Cause:     cause,
		}
	}

	if node.Kind != yaml.MappingNode {
		return OutputRule{}, invalid(node.Line, fmt.Sprintf("expected an output rule mapping, got %s", kindName(node.Kind)), nil)
	}

	var (
		rule     OutputRule
		hasRatio bool
	)
	for i := 0; i+1 < len(node.Content); i += 2 {
		name, value := node.Content[i], node.Content[i+1]
		switch name.Value {
		case "recycleTo":
			if value.Kind != yaml.ScalarNode {
				return OutputRule{}, invalid(value.Line, "recycleTo must be a string", nil)
			}
			rule.Target = strings.TrimSpace(value.Value)
		case "matRatio":
			if err := value.Decode(&rule.Ratio); err != nil {
				return OutputRule{}, invalid(value.Line, "invalid matRatio", unwrapYAML(err))
			}
			hasRatio = true
		}
	}

	if rule.Target == "" {
		return OutputRule{}, invalid(node.Line, "recycleTo is required", nil)
	}
	if !hasRatio {
		return OutputRule{}, invalid(node.Line, "matRatio is required", nil)
	}
	return rule, nil
}

func decodeIdentifiers(source, field string, node *yaml.Node) ([]string, error) {
	if isNull(node) {
		return nil, nil
	}
	if node.Kind != yaml.SequenceNode {
		return nil, &ValidationError{
			Source:    source,
			FieldPath: field,
			Line:      node.Line,
			Message:   fmt.Sprintf("expected a list of identifiers, got %s", kindName(node.Kind)),
		}
	}

	ids := make([]string, 0, len(node.Content))
	for i, item := range node.Content {
		id := strings.TrimSpace(item.Value)
		if item.Kind != yaml.ScalarNode || id == "" {
			return nil, &ValidationError{
				Source:    source,
				FieldPath: fmt.Sprintf("%s[%d]", field, i),
				Line:      item.Line,
				Message:   "identifier must be a non-empty string",
			}
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func isNull(node *yaml.Node) bool {
	return node.Kind == yaml.ScalarNode && node.Tag == "!!null"
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "list"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "unknown"
	}
}

var lineRe = regexp.MustCompile(`line (\d+)`)

// errorLine pulls the line number out of a yaml.v3 error message.
func errorLine(err error) int {
	m := lineRe.FindStringSubmatch(err.Error())
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}

// unwrapYAML strips the *yaml.TypeError wrapper around custom unmarshaler errors.
func unwrapYAML(err error) error {
	var te *yaml.TypeError
	if errors.As(err, &te) && len(te.Errors) == 1 {
		return errors.New(te.Errors[0])
	}
	return err
}
