package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/shashiranjanraj/ecomsynth/pkg/storage"
)

// Output formats.
const (
	FormatTable = "table"
	FormatCSV   = "csv"
	FormatJSON  = "json"
)

var Formats = []string{FormatTable, FormatCSV, FormatJSON}

// Render writes every result to w in the given format.
func Render(w io.Writer, format string, results []Result) error {
	switch format {
	case FormatTable:
		for i, r := range results {
			if i > 0 {
				fmt.Fprintln(w)
			}
			if err := renderTable(w, r); err != nil {
				return err
			}
		}
		return nil
	case FormatCSV:
		for i, r := range results {
			if i > 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "# %s\n", r.Name)
			if err := renderCSV(w, r); err != nil {
				return err
			}
		}
		return nil
	case FormatJSON:
		doc := make([]jsonResult, len(results))
		for i, r := range results {
			doc[i] = jsonResult{Query: r.Name, Title: r.Title, Rows: r.Data}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	default:
		return fmt.Errorf("report: unknown format %q (supported: %s)", format, strings.Join(Formats, ", "))
	}
}

// WriteFiles stores one file per result on disk, named after the query.
// Table format is written as .txt.
func WriteFiles(disk storage.Disk, format string, results []Result) ([]string, error) {
	ext := map[string]string{FormatTable: ".txt", FormatCSV: ".csv", FormatJSON: ".json"}[format]
	if ext == "" {
		return nil, fmt.Errorf("report: unknown format %q (supported: %s)", format, strings.Join(Formats, ", "))
	}

	var written []string
	for _, r := range results {
		var buf bytes.Buffer
		var err error
		switch format {
		case FormatTable:
			err = renderTable(&buf, r)
		case FormatCSV:
			err = renderCSV(&buf, r)
		case FormatJSON:
			enc := json.NewEncoder(&buf)
			enc.SetIndent("", "  ")
			err = enc.Encode(r.Data)
		}
		if err != nil {
			return written, err
		}
		name := r.Name + ext
		if err := disk.Put(name, buf.Bytes()); err != nil {
			return written, fmt.Errorf("report: write %s: %w", name, err)
		}
		written = append(written, disk.Location(name))
	}
	return written, nil
}

type jsonResult struct {
	Query string `json:"query"`
	Title string `json:"title"`
	Rows  any    `json:"rows"`
}

func renderTable(w io.Writer, r Result) error {
	fmt.Fprintf(w, "%s\n%s\n", r.Title, strings.Repeat("=", len(r.Title)))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(r.Header, "\t"))
	for _, row := range r.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	if len(r.Rows) == 0 {
		fmt.Fprintln(tw, "(no rows)")
	}
	return tw.Flush()
}

func renderCSV(w io.Writer, r Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(r.Header); err != nil {
		return err
	}
	if err := cw.WriteAll(r.Rows); err != nil {
		return err
	}
	return cw.Error()
}
