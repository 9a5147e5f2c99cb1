package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/jrsteele09/go-waterres-client/resources"
	"github.com/pkg/errors"
)

// render writes v as indented JSON, or as a table built by rows.
func render(w io.Writer, opts *options, v any, header []string, rows func(add func(cols ...any))) error {
	switch opts.output {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "", "table":
	default:
		return errors.Errorf("[render] unknown output format %q", opts.output)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	rows(func(cols ...any) {
		cells := make([]string, len(cols))
		for i, c := range cols {
			cells[i] = cell(c)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	})
	return tw.Flush()
}

func cell(v any) string {
	switch v := v.(type) {
	case nil:
		return "-"
	case string:
		if v == "" {
			return "-"
		}
		return v
	case resources.Timestamp:
		if v.IsZero() {
			return "-"
		}
		return v.Format(time.DateTime)
	case *float64:
		if v == nil {
			return "-"
		}
		return fmt.Sprint(*v)
	case bool:
		if v {
			return "yes"
		}
		return "no"
	default:
		return fmt.Sprint(v)
	}
}

func pageFooter[T any](w io.Writer, opts *options, page *resources.Page[T]) {
	if opts.json() {
		return
	}
	pages := page.TotalPages
	if pages == 0 && page.Size > 0 {
		pages = (page.Total + int64(page.Size) - 1) / int64(page.Size)
	}
	fmt.Fprintf(w, "\npage %d of %d, %d total\n", page.Page, pages, page.Total)
}
