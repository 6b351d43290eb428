package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// paramOptions holds the bind parameter flags shared by statement commands.
type paramOptions struct {
	Args    []string
	RawArgs bool
}

func (o *paramOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&o.Args, "arg", "a", nil, "Bind parameter for the next ? placeholder (repeatable)")
	cmd.Flags().BoolVar(&o.RawArgs, "raw-args", false, "Bind --arg values as text instead of decoding them")
}

func (o *paramOptions) params() ([]any, error) {
	return parseParams(o.Args, o.RawArgs)
}

// parseParams converts --arg values into bind parameters. Values are
// decoded as YAML scalars unless raw is set.
func parseParams(values []string, raw bool) ([]any, error) {
	params := make([]any, 0, len(values))
	for i, v := range values {
		if raw {
			params = append(params, v)
			continue
		}
		p, err := decodeParam(v)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		params = append(params, p)
	}
	return params, nil
}

// decodeParam turns "1" into int64, "1.5" into float64, "null" into nil and
// "true" into bool. Quoted values and anything else, dates included, stay text.
func decodeParam(s string) (any, error) {
	if s == "" {
		return "", nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(s), &doc); err != nil {
		return nil, fmt.Errorf("invalid value %q: %w", s, err)
	}
	if len(doc.Content) == 0 {
		return s, nil
	}

	node := doc.Content[0]
	if node.Kind != yaml.ScalarNode {
		return nil, fmt.Errorf("value %q must be a scalar (use --raw-args to bind it as text)", s)
	}

	switch node.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return nil, fmt.Errorf("invalid value %q: %w", s, err)
		}
		return b, nil
	case "!!int":
		var n int64
		if err := node.Decode(&n); err != nil {
			return nil, fmt.Errorf("value %q overflows a 64-bit integer", s)
		}
		return n, nil
	case "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return nil, fmt.Errorf("invalid value %q: %w", s, err)
		}
		return f, nil
	default:
		// !!str, !!timestamp, !!binary and custom tags bind as written.
		return node.Value, nil
	}
}
