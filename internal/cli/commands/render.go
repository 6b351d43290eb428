package commands

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/litedb/internal/store"
	"github.com/muesli/termenv"
	"gopkg.in/yaml.v3"
)

// renderResult writes rows in the given format. Results without columns
// are reported as an affected-row count.
func renderResult(w io.Writer, result *store.Result, format string) error {
	if result == nil {
		return nil
	}
	if len(result.Columns) == 0 {
		return renderAffected(w, result, format)
	}

	switch format {
	case "json":
		return renderJSON(w, result)
	case "yaml":
		return renderYAML(w, result)
	case "csv":
		return renderCSV(w, result)
	case "md", "markdown":
		return renderMarkdown(w, result)
	default:
		return renderTable(w, result)
	}
}

func renderAffected(w io.Writer, result *store.Result, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]int64{
			"rows_affected":  result.RowsAffected,
			"last_insert_id": result.LastInsertID,
		})
	case "yaml":
		return encodeYAML(w, map[string]int64{
			"rows_affected":  result.RowsAffected,
			"last_insert_id": result.LastInsertID,
		})
	default:
		_, err := fmt.Fprintf(w, "(%d rows affected)\n", result.RowsAffected)
		return err
	}
}

func newTableWriter(w io.Writer, result *store.Result) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)

	header := make(table.Row, len(result.Columns))
	for i, col := range result.Columns {
		header[i] = col
	}
	t.AppendHeader(header)

	for _, r := range result.Rows {
		row := make(table.Row, len(result.Columns))
		for i, col := range result.Columns {
			row[i] = formatValue(r[col])
		}
		t.AppendRow(row)
	}
	return t
}

func renderTable(w io.Writer, result *store.Result) error {
	if len(result.Rows) == 0 {
		_, err := fmt.Fprintln(w, "(0 rows)")
		return err
	}

	t := newTableWriter(w, result)
	t.SetStyle(tableStyle(w))
	t.Render()
	_, err := fmt.Fprintf(w, "(%d rows)\n", len(result.Rows))
	return err
}

// tableStyle picks a colored style for color-capable terminals and the
// plain light style otherwise. NO_COLOR and CLICOLOR_FORCE are honored.
func tableStyle(w io.Writer) table.Style {
	if termenv.NewOutput(w).EnvColorProfile() == termenv.Ascii {
		return table.StyleLight
	}
	return table.StyleColoredBright
}

func renderMarkdown(w io.Writer, result *store.Result) error {
	if len(result.Rows) == 0 {
		_, err := fmt.Fprintln(w, "(0 rows)")
		return err
	}
	newTableWriter(w, result).RenderMarkdown()
	return nil
}

func renderCSV(w io.Writer, result *store.Result) error {
	newTableWriter(w, result).RenderCSV()
	return nil
}

func renderJSON(w io.Writer, result *store.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result.Rows)
}

// renderYAML emits a sequence of mappings that keeps the column order.
func renderYAML(w io.Writer, result *store.Result) error {
	seq := &yaml.Node{Kind: yaml.SequenceNode, Content: []*yaml.Node{}}
	if len(result.Rows) == 0 {
		seq.Style = yaml.FlowStyle
	}
	for _, r := range result.Rows {
		m := &yaml.Node{Kind: yaml.MappingNode}
		for _, col := range result.Columns {
			val := &yaml.Node{}
			if err := val.Encode(yamlValue(r[col])); err != nil {
				return fmt.Errorf("failed to encode column %s: %w", col, err)
			}
			m.Content = append(m.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: col},
				val,
			)
		}
		seq.Content = append(seq.Content, m)
	}
	return encodeYAML(w, seq)
}

func encodeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func yamlValue(v any) any {
	if b, ok := v.([]byte); ok {
		return blobLiteral(b)
	}
	return v
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return blobLiteral(x)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func blobLiteral(b []byte) string {
	return "x'" + hex.EncodeToString(b) + "'"
}
