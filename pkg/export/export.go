// Package export turns a finished run log into the CSV and JSON deliverables.
package export

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
	"time"

	"sinacrawler/pkg/models"
)

// Files describes the artifacts written by Finalize
type Files struct {
	CSV     string
	JSON    string
	Records int
}

// BaseName returns the export file stem, e.g. sina-1669879400-20240501_120000UTC
func BaseName(platform, uid string, now time.Time) string {
	return fmt.Sprintf("%s-%s-%sUTC", platform, uid, now.UTC().Format("20060102_150405"))
}

// Finalize streams the NDJSON log at logPath into <base>.csv and <base>.json
// under dir. The log is left in place; removing it is the caller's decision.
func Finalize(logPath, dir, platform, uid string, now time.Time) (*Files, error) {
	base := filepath.Join(dir, BaseName(platform, uid, now))
	files := &Files{
		CSV:  base + ".csv",
		JSON: base + ".json",
	}

	in, err := os.Open(logPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open run log: %w", err)
	}
	defer in.Close()

	var n int
	err = writeAtomic(files.CSV, func(csvOut io.Writer) error {
		return writeAtomic(files.JSON, func(jsonOut io.Writer) error {
			var convErr error
			n, convErr = convert(in, csvOut, jsonOut)
			return convErr
		})
	})
	if err != nil {
		return nil, err
	}

	files.Records = n
	return files, nil
}

// convert copies each log line into the JSON array and one CSV row
func convert(in io.Reader, csvOut, jsonOut io.Writer) (int, error) {
	decoder := json.NewDecoder(bufio.NewReader(in))
	csvWriter := csv.NewWriter(csvOut)

	if err := csvWriter.Write(models.CSVColumns); err != nil {
		return 0, fmt.Errorf("failed to write CSV header: %w", err)
	}
	if _, err := io.WriteString(jsonOut, "["); err != nil {
		return 0, err
	}

	n := 0
	for {
		var raw json.RawMessage
		if err := decoder.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return n, fmt.Errorf("run log line %d is not valid JSON: %w", n+1, err)
		}

		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			return n, fmt.Errorf("run log line %d is not a JSON object: %w", n+1, err)
		}

		row := make([]string, len(models.CSVColumns))
		for i, col := range models.CSVColumns {
			row[i] = CSVValue(fields[col])
		}
		if err := csvWriter.Write(row); err != nil {
			return n, fmt.Errorf("failed to write CSV row: %w", err)
		}

		if n > 0 {
			if _, err := io.WriteString(jsonOut, ","); err != nil {
				return n, err
			}
		}
		var compact bytes.Buffer
		if err := json.Compact(&compact, raw); err != nil {
			return n, err
		}
		if _, err := jsonOut.Write(compact.Bytes()); err != nil {
			return n, err
		}
		n++
	}

	if _, err := io.WriteString(jsonOut, "]"); err != nil {
		return n, err
	}
	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return n, fmt.Errorf("failed to flush CSV: %w", err)
	}
	return n, nil
}

// CSVValue renders one JSON field as a CSV cell. Absent and null fields become
// models.MissingValue, strings are written unquoted and everything else keeps
// its JSON text.
func CSVValue(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return models.MissingValue
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return s
		}
	}
	return string(trimmed)
}

// writeAtomic writes path through a temporary file and renames it into place
func writeAtomic(path string, write func(io.Writer) error) error {
	tempFile := path + ".tmp"
	out, err := os.Create(tempFile)
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	buffered := bufio.NewWriter(out)
	err = write(buffered)
	if err == nil {
		err = buffered.Flush()
	}
	closeErr := out.Close()

	if err != nil {
		os.Remove(tempFile)
		return err
	}
	if closeErr != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to close %s: %w", filepath.Base(path), closeErr)
	}

	if err := os.Rename(tempFile, path); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}
	return nil
}
