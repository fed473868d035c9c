package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/timmy/uthos/objectstorage"
)

// render prints v as indented JSON, or as a table built by rows.
func (a *app) render(v interface{}, header []string, rows func(add func(cols ...string))) error {
	if a.output == "json" {
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	rows(func(cols ...string) {
		fmt.Fprintln(tw, strings.Join(cols, "\t"))
	})
	return tw.Flush()
}

// message prints a one line confirmation, or {"status":...} with -o json.
func (a *app) message(format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	if a.output == "json" {
		return a.render(map[string]string{"status": "success", "message": msg}, nil, nil)
	}
	_, err := fmt.Fprintln(a.out, msg)
	return err
}

// humanBytes renders a quantity the API reports in bytes.
func humanBytes(q objectstorage.Quantity) string {
	n, err := q.Int64()
	if err != nil || n < 0 {
		return string(q)
	}
	return humanize.IBytes(uint64(n))
}

// gigabytes renders a bucket size, which the API reports in GB.
func gigabytes(q objectstorage.Quantity) string {
	if q == "" {
		return "-"
	}
	return string(q) + " GB"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
