package exporter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Format names an output encoding
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// notApplicable is printed for metrics that are undefined for a project
const notApplicable = "n/a"

// ParseFormat resolves a user supplied format name
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatCSV, FormatXLSX:
		return f, nil
	case "":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported format %q: use json, csv or xlsx", s)
	}
}

// Extension returns the file extension of the format, including the dot
func (f Format) Extension() string {
	return "." + string(f)
}

// formatFloat formats a value with exactly 2 decimal places
func formatFloat(f float64) string {
	return decimal.NewFromFloat(f).StringFixed(2)
}

// formatOptional formats a value that may be undefined
func formatOptional(f *float64) string {
	if f == nil {
		return notApplicable
	}
	return formatFloat(*f)
}

// formatOptionalInt formats an integer that may be undefined
func formatOptionalInt(i *int) string {
	if i == nil {
		return notApplicable
	}
	return strconv.Itoa(*i)
}

// formatPercent formats a percentage value with a trailing sign
func formatPercent(f float64) string {
	return formatFloat(f) + "%"
}
