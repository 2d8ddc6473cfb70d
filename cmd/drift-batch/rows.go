package main

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/theimaginaryfoundation/tonal-drift/drift"
	"github.com/theimaginaryfoundation/tonal-drift/drift/fileutils"
)

// row is one input record keyed by column name. Non-string JSON values are
// coerced to text.
type row map[string]string

// readRows loads a .csv (header row required), .jsonl/.ndjson or .json array file.
func readRows(path string) ([]row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readCSVRows(f)
	case ".jsonl", ".ndjson":
		return readJSONLRows(f)
	case ".json":
		return readJSONArrayRows(f)
	default:
		return nil, fmt.Errorf("unsupported input extension %q (want .csv, .jsonl or .json)", filepath.Ext(path))
	}
}

func readCSVRows(r io.Reader) ([]row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("csv input is empty")
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	var rows []row
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		out := make(row, len(header))
		for i, col := range header {
			if i < len(rec) {
				out[col] = rec[i]
			}
		}
		rows = append(rows, out)
	}
}

func readJSONLRows(r io.Reader) ([]row, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	var rows []row
	for n := 1; sc.Scan(); n++ {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		obj, err := decodeObject(line)
		if err != nil {
			return nil, fmt.Errorf("jsonl line %d: %w", n, err)
		}
		rows = append(rows, obj)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read jsonl: %w", err)
	}
	return rows, nil
}

func readJSONArrayRows(r io.Reader) ([]row, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var items []map[string]any
	if err := dec.Decode(&items); err != nil {
		return nil, fmt.Errorf("decode json array: %w", err)
	}
	rows := make([]row, 0, len(items))
	for _, item := range items {
		rows = append(rows, coerceRow(item))
	}
	return rows, nil
}

func decodeObject(b []byte) (row, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, err
	}
	return coerceRow(obj), nil
}

func coerceRow(obj map[string]any) row {
	out := make(row, len(obj))
	for k, v := range obj {
		out[k] = drift.CoerceText(v)
	}
	return out
}

func hasColumn(rows []row, col string) bool {
	for _, r := range rows {
		if _, ok := r[col]; ok {
			return true
		}
	}
	return false
}

// truthy accepts 1, 1.0, true and yes.
func truthy(v string) bool {
	v = strings.TrimSpace(strings.ToLower(v))
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f == 1
	}
	return v == "yes" || v == "y"
}

func writeCSVFile(path string, header []string, table [][]string) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	if err := w.WriteAll(table); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return fileutils.WriteFileAtomicSameDir(path, bytes.TrimRight(buf.Bytes(), "\n"), 0o644)
}

// markdownPreview renders the first n rows as a GitHub table.
func markdownPreview(header []string, table [][]string, n int) string {
	var b strings.Builder
	b.WriteString("| " + strings.Join(escapeCells(header), " | ") + " |\n")
	b.WriteString("|" + strings.Repeat(" --- |", len(header)) + "\n")
	for i, rec := range table {
		if i >= n {
			break
		}
		b.WriteString("| " + strings.Join(escapeCells(rec), " | ") + " |\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func escapeCells(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		c = strings.ReplaceAll(c, "|", `\|`)
		out[i] = strings.Join(strings.Fields(c), " ")
	}
	return out
}

func newLineEncoder(w io.Writer) *json.Encoder {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc
}
