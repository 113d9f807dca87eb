package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/flowlens/flowlens/engine/core"
)

// ExportFormat represents the export format
type ExportFormat string

const (
	FormatJSON ExportFormat = "json"
	FormatYAML ExportFormat = "yaml"
	FormatCSV  ExportFormat = "csv"
)

// ParseFormat resolves a user-supplied format name
func ParseFormat(name string) (ExportFormat, error) {
	switch ExportFormat(strings.ToLower(strings.TrimSpace(name))) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML:
		return FormatYAML, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unsupported export format: %s (want json, yaml, or csv)", name)
	}
}

// ExportOptions contains options for exporting analysis results
type ExportOptions struct {
	Format  ExportFormat `json:"format"`
	Pretty  bool         `json:"pretty"`  // For JSON: pretty formatting
	Headers bool         `json:"headers"` // For CSV: include headers
}

// DefaultExportOptions returns default export options
func DefaultExportOptions(format ExportFormat) *ExportOptions {
	opts := &ExportOptions{
		Format:  format,
		Headers: true,
	}
	if format == FormatJSON {
		opts.Pretty = true
	}
	return opts
}

// Exporter writes analysis results to different formats. JSON and YAML
// carry the full result; CSV flattens the execution steps into a table.
type Exporter struct {
	options *ExportOptions
}

// NewExporter creates a new exporter with the specified options
func NewExporter(options *ExportOptions) *Exporter {
	if options == nil {
		options = DefaultExportOptions(FormatJSON)
	}
	return &Exporter{
		options: options,
	}
}

// Export writes the result to the specified writer
func (e *Exporter) Export(writer io.Writer, result *core.AnalysisResult) error {
	if result == nil {
		return fmt.Errorf("no analysis result to export")
	}

	switch e.options.Format {
	case FormatJSON:
		return e.exportJSON(writer, result)
	case FormatYAML:
		return e.exportYAML(writer, result)
	case FormatCSV:
		return e.exportCSV(writer, result)
	default:
		return fmt.Errorf("unsupported export format: %s", e.options.Format)
	}
}

// exportJSON exports the full result as JSON
func (e *Exporter) exportJSON(writer io.Writer, result *core.AnalysisResult) error {
	var data []byte
	var err error

	if e.options.Pretty {
		data, err = json.MarshalIndent(result, "", "  ")
	} else {
		data, err = json.Marshal(result)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	_, err = writer.Write(data)
	return err
}

// exportYAML exports the full result as YAML
func (e *Exporter) exportYAML(writer io.Writer, result *core.AnalysisResult) error {
	encoder := yaml.NewEncoder(writer)
	encoder.SetIndent(2)
	if err := encoder.Encode(result); err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return encoder.Close()
}

// exportCSV exports the execution steps as a step table
func (e *Exporter) exportCSV(writer io.Writer, result *core.AnalysisResult) error {
	csvWriter := csv.NewWriter(writer)
	defer csvWriter.Flush()

	if e.options.Headers {
		header := []string{"step", "line", "kind", "category", "weight", "description", "memory_events"}
		if err := csvWriter.Write(header); err != nil {
			return fmt.Errorf("failed to write CSV headers: %w", err)
		}
	}

	for i := range result.Steps {
		step := &result.Steps[i]
		row := []string{
			strconv.Itoa(step.StepNumber),
			strconv.Itoa(step.Line),
			string(step.Kind),
			string(step.Category),
			strconv.Itoa(step.ComplexityWeight),
			step.Description,
			formatMemoryEvents(step.MemoryEvents),
		}
		if err := csvWriter.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	if err := csvWriter.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}

// formatMemoryEvents flattens step events into one CSV cell
func formatMemoryEvents(events []core.MemoryEvent) string {
	if len(events) == 0 {
		return ""
	}
	parts := make([]string, 0, len(events))
	for _, event := range events {
		parts = append(parts, fmt.Sprintf("%s %s (%s)", event.Action, event.Variable, event.Kind))
	}
	return strings.Join(parts, "; ")
}

// ExportResult represents the result of an export operation
type ExportResult struct {
	Format    ExportFormat `json:"format"`
	StepCount int          `json:"step_count"`
	Size      int64        `json:"size"`
	Error     string       `json:"error,omitempty"`
}

// ExportWithMetadata exports the result and reports what was written
func (e *Exporter) ExportWithMetadata(writer io.Writer, result *core.AnalysisResult) (*ExportResult, error) {
	countingWriter := &countingWriter{writer: writer}

	err := e.Export(countingWriter, result)

	meta := &ExportResult{
		Format: e.options.Format,
		Size:   countingWriter.count,
	}
	if result != nil {
		meta.StepCount = len(result.Steps)
	}
	if err != nil {
		meta.Error = err.Error()
	}
	return meta, err
}

// countingWriter is a wrapper that counts bytes written
type countingWriter struct {
	writer io.Writer
	count  int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.writer.Write(p)
	cw.count += int64(n)
	return n, err
}
