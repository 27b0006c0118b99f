package export

import (
	"fmt"
	"strings"
)

// Supported formats.
const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

// Dataset defines tabular export content.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// Build flattens records into a dataset using the provided row mapper.
func Build[T any](headers []string, records []T, row func(T) map[string]string) Dataset {
	rows := make([]map[string]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, row(record))
	}
	return Dataset{Headers: headers, Rows: rows}
}

// File is a rendered export ready to be sent to the client.
type File struct {
	Name        string
	ContentType string
	Body        []byte
}

// Render encodes the dataset in the requested format.
func Render(format string, data Dataset, title string) (*File, error) {
	base := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(title)), " ", "-")
	if base == "" {
		base = "export"
	}

	switch strings.ToLower(format) {
	case "", FormatCSV:
		body, err := NewCSVExporter().Render(data)
		if err != nil {
			return nil, err
		}
		return &File{Name: base + ".csv", ContentType: "text/csv", Body: body}, nil
	case FormatPDF:
		body, err := NewPDFExporter().Render(data, title)
		if err != nil {
			return nil, err
		}
		return &File{Name: base + ".pdf", ContentType: "application/pdf", Body: body}, nil
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}
