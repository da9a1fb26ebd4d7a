package exporter

import (
	"encoding/json"
	"fmt"
	"io"

	"feasibility/internal/feasibility"
)

// Export writes result to out in the requested format
func Export(out io.Writer, format Format, result *feasibility.AnalysisResult) error {
	switch format {
	case FormatJSON, "":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		return nil
	case FormatCSV:
		return WriteAnalysisCSV(out, result)
	case FormatXLSX:
		return WriteAnalysisXLSX(out, result)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}
