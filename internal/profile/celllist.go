package profile

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// CellList is a sorted, de-duplicated list of 1-based cell numbers. In
// configuration files it may be written as a list of integers or as a
// comma-separated string such as "3, 7".
type CellList []int

// NewCellList sorts and de-duplicates cells.
func NewCellList(cells ...int) CellList {
	out := slices.Clone(cells)
	slices.Sort(out)
	return slices.Compact(out)
}

// ParseCellList parses a comma-separated list. Empty items are skipped.
func ParseCellList(s string) (CellList, error) {
	var cells []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("cell list: %q is not a number", part)
		}
		cells = append(cells, n)
	}
	return NewCellList(cells...), nil
}

func (c CellList) String() string {
	parts := make([]string, len(c))
	for i, n := range c {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ", ")
}

// UnmarshalTOML implements toml.Unmarshaler.
func (c *CellList) UnmarshalTOML(v any) error {
	switch v := v.(type) {
	case string:
		parsed, err := ParseCellList(v)
		if err != nil {
			return err
		}
		*c = parsed
	case int64:
		*c = CellList{int(v)}
	case []any:
		cells := make([]int, 0, len(v))
		for _, item := range v {
			n, ok := item.(int64)
			if !ok {
				return fmt.Errorf("cell list: unexpected item %v (%T)", item, item)
			}
			cells = append(cells, int(n))
		}
		*c = NewCellList(cells...)
	default:
		return fmt.Errorf("cell list: unexpected value %v (%T)", v, v)
	}
	return nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *CellList) UnmarshalJSON(data []byte) error {
	var cells []int
	if err := json.Unmarshal(data, &cells); err == nil {
		*c = NewCellList(cells...)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("cell list: expected list or string: %w", err)
	}
	parsed, err := ParseCellList(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (c *CellList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		var cells []int
		if err := node.Decode(&cells); err != nil {
			return fmt.Errorf("cell list: %w", err)
		}
		*c = NewCellList(cells...)
		return nil
	case yaml.ScalarNode:
		parsed, err := ParseCellList(node.Value)
		if err != nil {
			return err
		}
		*c = parsed
		return nil
	}
	return fmt.Errorf("cell list: unexpected YAML node at line %d", node.Line)
}
