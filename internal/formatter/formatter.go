// package formatter exports word count results to various formats (CSV, Markdown, plain text, JSON, PDF)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/desertthunder/wordcount/internal/models"
	"github.com/desertthunder/wordcount/internal/shared"
)

// Format names an export format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "md"
	FormatText     Format = "txt"
	FormatPDF      Format = "pdf"
)

// Formats lists every supported export format.
var Formats = []Format{FormatJSON, FormatCSV, FormatMarkdown, FormatText, FormatPDF}

// ParseFormat resolves a format name. "markdown" and "text" are accepted as aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "txt", "text":
		return FormatText, nil
	case "pdf":
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("%w: unsupported format %q", shared.ErrInvalidArgument, s)
	}
}

// ContentType returns the MIME type served for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case FormatPDF:
		return "application/pdf"
	default:
		return "text/plain; charset=utf-8"
	}
}

// Filename returns the default download name for a result, e.g. "<id>.csv".
func (f Format) Filename(result *models.Result) string {
	return fmt.Sprintf("%s.%s", result.ID(), f)
}

// Export is the JSON document for a result.
type Export struct {
	ID          string             `json:"id"`
	URL         string             `json:"url"`
	CreatedAt   time.Time          `json:"created_at"`
	TotalWords  int                `json:"total_words"`
	UniqueWords int                `json:"unique_words"`
	Words       []models.WordCount `json:"words"`
}

// NewExport builds the JSON document for result using the stop-word-filtered counts.
func NewExport(result *models.Result) Export {
	words := result.Sorted()
	return Export{
		ID:          result.ID(),
		URL:         result.URL(),
		CreatedAt:   result.CreatedAt(),
		TotalWords:  result.TotalWords(),
		UniqueWords: len(words),
		Words:       words,
	}
}

// Render converts result to the given format.
func Render(result *models.Result, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return ExportToJSON(result)
	case FormatCSV:
		return ExportToCSV(result)
	case FormatMarkdown:
		return ExportToMarkdown(result)
	case FormatText:
		return ExportToText(result)
	case FormatPDF:
		return ExportToPDF(result)
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", shared.ErrInvalidArgument, format)
	}
}

// ExportToJSON converts a Result to indented JSON.
func ExportToJSON(result *models.Result) ([]byte, error) {
	return shared.MarshalJSON(NewExport(result), true)
}

// ExportToCSV converts a Result to CSV format with columns: Word, Count
func ExportToCSV(result *models.Result) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"Word", "Count"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, wc := range result.Sorted() {
		if err := writer.Write([]string{wc.Word, strconv.Itoa(wc.Count)}); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a Result to a Markdown document with a word/count table.
func ExportToMarkdown(result *models.Result) ([]byte, error) {
	var buf bytes.Buffer
	words := result.Sorted()

	buf.WriteString(fmt.Sprintf("# Word counts for %s\n\n", result.URL()))
	buf.WriteString(fmt.Sprintf("**Result**: %s\n", result.ID()))
	buf.WriteString(fmt.Sprintf("**Total words**: %d\n", result.TotalWords()))
	buf.WriteString(fmt.Sprintf("**Unique words** (excluding stop words): %d\n\n", len(words)))

	buf.WriteString("| Word | Count |\n")
	buf.WriteString("| --- | ---: |\n")
	for _, wc := range words {
		buf.WriteString(fmt.Sprintf("| %s | %d |\n", escapeMarkdown(wc.Word), wc.Count))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a Result to plain text format
func ExportToText(result *models.Result) ([]byte, error) {
	var buf bytes.Buffer
	words := result.Sorted()

	buf.WriteString(fmt.Sprintf("URL: %s\n", result.URL()))
	buf.WriteString(fmt.Sprintf("Result: %s\n", result.ID()))
	buf.WriteString(fmt.Sprintf("Words: %d total, %d unique\n\n", result.TotalWords(), len(words)))

	width := 0
	for _, wc := range words {
		width = max(width, len(wc.Word))
	}
	for i, wc := range words {
		buf.WriteString(fmt.Sprintf("%d. %-*s %d\n", i+1, width, wc.Word, wc.Count))
	}

	return buf.Bytes(), nil
}

// ExportToPDF renders a Result as a single-column A4 report.
func ExportToPDF(result *models.Result) ([]byte, error) {
	p := gofpdf.New("P", "mm", "A4", "")
	tr := p.UnicodeTranslatorFromDescriptor("")
	p.AddPage()

	p.SetFont("Arial", "B", 14)
	p.Cell(40, 10, "Word count report")
	p.Ln(12)

	p.SetFont("Arial", "", 10)
	p.Cell(40, 6, tr("URL: "+result.URL()))
	p.Ln(6)
	p.Cell(40, 6, fmt.Sprintf("Result: %s", result.ID()))
	p.Ln(6)
	p.Cell(40, 6, fmt.Sprintf("Total words: %d", result.TotalWords()))
	p.Ln(10)

	p.SetFont("Arial", "B", 10)
	p.CellFormat(120, 7, "Word", "1", 0, "L", false, 0, "")
	p.CellFormat(30, 7, "Count", "1", 1, "R", false, 0, "")

	p.SetFont("Arial", "", 10)
	for _, wc := range result.Sorted() {
		p.CellFormat(120, 6, tr(wc.Word), "1", 0, "L", false, 0, "")
		p.CellFormat(30, 6, strconv.Itoa(wc.Count), "1", 1, "R", false, 0, "")
	}

	var buf bytes.Buffer
	if err := p.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteExport renders result in format and writes it to path.
//
// Defaults to {result.ID}.{format} as the filename.
func WriteExport(result *models.Result, format Format, path string) (string, error) {
	if path == "" {
		path = format.Filename(result)
	}

	data, err := Render(result, format)
	if err != nil {
		return "", fmt.Errorf("failed to generate %s: %w", format, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s file: %w", format, err)
	}

	return path, nil
}

func escapeMarkdown(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
