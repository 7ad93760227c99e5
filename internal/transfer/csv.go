package transfer

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/lazypower/lifeclock/internal/store"
)

const (
	csvDate = "2006-01-02"
	csvTime = "15:04:05"
)

var csvHeader = []string{"Date", "Time", "Category", "Question", "Choice", "Value", "Weight"}

// ExportCSV writes one row per choice. Question and Choice are always quoted;
// the other columns never contain separators and are written bare.
func ExportCSV(w io.Writer, choices []store.Choice) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(strings.Join(csvHeader, ",") + "\n")
	for _, c := range choices {
		ts := c.Timestamp.UTC()
		fmt.Fprintf(bw, "%s,%s,%s,%s,%s,%s,%d\n",
			ts.Format(csvDate),
			ts.Format(csvTime),
			c.Category,
			quote(c.Question),
			quote(c.Choice),
			c.Value,
			c.Weight,
		)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// ImportCSV parses a table written by ExportCSV and appends each row to dst.
// Timestamps are rebuilt from the Date and Time columns in UTC.
func ImportCSV(ctx context.Context, r io.Reader, dst Appender) (int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(csvHeader)

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return 0, &ImportError{Err: errors.New("empty file")}
	}
	if err != nil {
		return 0, &ImportError{Err: fmt.Errorf("read header: %w", err)}
	}
	for i, name := range csvHeader {
		if !strings.EqualFold(strings.TrimSpace(header[i]), name) {
			return 0, &ImportError{Err: fmt.Errorf("column %d is %q, want %q", i+1, header[i], name)}
		}
	}

	imported := 0
	for row := 1; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return imported, nil
		}
		if err != nil {
			return imported, &ImportError{Row: row, Err: err}
		}
		c, err := parseRow(rec)
		if err != nil {
			return imported, &ImportError{Row: row, Err: err}
		}
		n, err := appendAll(ctx, dst, []store.Choice{c}, row)
		imported += n
		if err != nil {
			return imported, err
		}
	}
}

func parseRow(rec []string) (store.Choice, error) {
	ts, err := time.ParseInLocation(csvDate+" "+csvTime, rec[0]+" "+rec[1], time.UTC)
	if err != nil {
		return store.Choice{}, fmt.Errorf("timestamp: %w", err)
	}
	weight, err := strconv.Atoi(strings.TrimSpace(rec[6]))
	if err != nil {
		return store.Choice{}, fmt.Errorf("weight: %w", err)
	}
	return store.Choice{
		Timestamp: ts,
		Category:  store.Category(rec[2]),
		Question:  rec[3],
		Choice:    rec[4],
		Value:     rec[5],
		Weight:    weight,
	}, nil
}
