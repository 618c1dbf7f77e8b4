// Package sr2 reads SR2 system-response files: a header line, an
// acquisition line and a whitespace-separated float matrix.
package sr2

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Response is a parsed system response.
type Response struct {
	Header      string
	Channel     int
	Repetitions int
	Datapoints  int
	BeginDate   string
	BeginTime   string
	EndDate     string
	EndTime     string
	Data        [][]float64
}

// Parse reads an SR2 stream. The acquisition line holds channel,
// repetitions and datapoints followed by begin date and time as three words
// each, a separator word, and end date and time.
func Parse(r io.Reader) (*Response, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	resp := &Response{}
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		switch n {
		case 1:
			resp.Header = line
			continue
		case 2:
			if err := resp.parseAcquisition(line); err != nil {
				return nil, fmt.Errorf("sr2 line 2: %w", err)
			}
			continue
		}
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		row := make([]float64, len(fields))
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("sr2 line %d: %w", n, err)
			}
			row[i] = v
		}
		resp.Data = append(resp.Data, row)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read sr2: %w", err)
	}
	if n < 2 {
		return nil, fmt.Errorf("sr2: missing acquisition line")
	}
	return resp, nil
}

func join(words []string, lo, hi int, sep string) string {
	if lo >= len(words) {
		return ""
	}
	if hi > len(words) {
		hi = len(words)
	}
	return strings.Join(words[lo:hi], sep)
}

func (r *Response) parseAcquisition(line string) error {
	words := strings.Fields(line)
	if len(words) < 3 {
		return fmt.Errorf("want at least 3 fields, got %d", len(words))
	}
	for i, dst := range []*int{&r.Channel, &r.Repetitions, &r.Datapoints} {
		v, err := strconv.Atoi(words[i])
		if err != nil {
			return fmt.Errorf("field %d: %w", i+1, err)
		}
		*dst = v
	}
	r.BeginDate = join(words, 3, 6, "-")
	r.BeginTime = join(words, 6, 9, ":")
	r.EndDate = join(words, 10, 13, "-")
	r.EndTime = join(words, 13, 16, ":")
	return nil
}

// ParseFile parses the SR2 file at path.
func ParseFile(path string) (*Response, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sr2: %w", err)
	}
	defer f.Close()
	resp, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return resp, nil
}
