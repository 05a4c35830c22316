package results

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// maxRecordLine bounds a single escaped diagnostic line. Crash backtraces
// from large toolchains run to hundreds of kilobytes.
const maxRecordLine = 8 << 20

// ReadLog reads every record from the log at path, in append order.
func ReadLog(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open results log: %w", err)
	}
	defer f.Close()
	return ReadRecords(f)
}

// ReadRecords decodes two-line records from r until EOF. A trailing triple
// line without its diagnostic line is an error: the log is written a full
// record at a time, so a dangling line means truncation.
func ReadRecords(r io.Reader) ([]Record, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxRecordLine)

	var records []Record
	for sc.Scan() {
		triple := sc.Text()
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return nil, fmt.Errorf("read record %d: %w", len(records), err)
			}
			return nil, fmt.Errorf("truncated log: triple %q has no diagnostic line", triple)
		}
		diag, err := Unescape(sc.Text())
		if err != nil {
			return nil, fmt.Errorf("record %d (%s): %w", len(records), triple, err)
		}
		records = append(records, Record{Triple: triple, Diagnostic: diag})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read results log: %w", err)
	}
	return records, nil
}
