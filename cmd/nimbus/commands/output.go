package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/kaigouthro/nimbus/internal/constants"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Common string constants used throughout the commands package.
const (
	NotAvailable = "N/A"

	// Output formats.
	OutputFormatJSON  = "json"
	OutputFormatYAML  = "yaml"
	OutputFormatTable = "table"

	Unlimited = "unlimited"
	None      = "-"
)

// output is where commands write; tests swap it.
var output io.Writer = os.Stdout

// OutputRenderer handles different output formats.
type OutputRenderer[T any] struct {
	RenderTable func(data T) error
}

// Render outputs data in the format selected by --output.
func (o *OutputRenderer[T]) Render(data T) error {
	switch viper.GetString("output") {
	case OutputFormatJSON:
		return renderJSON(data)
	case OutputFormatYAML:
		return renderYAML(data)
	default:
		return o.RenderTable(data)
	}
}

func renderJSON(data any) error {
	encoder := json.NewEncoder(output)
	encoder.SetIndent("", "  ")

	err := encoder.Encode(data)
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}

func renderYAML(data any) error {
	encoder := yaml.NewEncoder(output)
	encoder.SetIndent(constants.JSONIndentSize)

	err := encoder.Encode(data)
	if err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return encoder.Close()
}

func newTable(headers ...any) *tablewriter.Table {
	table := tablewriter.NewWriter(output)
	table.Header(headers...)

	return table
}

func renderTable(table *tablewriter.Table) error {
	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func printEmpty(what string) error {
	_, err := fmt.Fprintf(output, "No %s found\n", what)

	return err
}

func orNone(s string) string {
	if s == "" {
		return None
	}

	return s
}

func ptrOrNone[T any](v *T) string {
	if v == nil {
		return None
	}

	return fmt.Sprint(*v)
}

func formatTime(t *time.Time) string {
	if t == nil {
		return None
	}

	return t.Format("2006-01-02 15:04")
}

func formatLimit(limit int) string {
	if limit < 0 {
		return Unlimited
	}

	return strconv.Itoa(limit)
}

func formatUsed(used int) string {
	if used < 0 {
		return NotAvailable
	}

	return strconv.Itoa(used)
}
