package xyz

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// lineReader yields lines without their terminators and counts them.
type lineReader struct {
	r    *bufio.Reader
	n    int
	back *string
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{r: bufio.NewReaderSize(r, 64<<10)}
}

func (lr *lineReader) next() (string, bool, error) {
	if lr.back != nil {
		s := *lr.back
		lr.back = nil
		lr.n++
		return s, true, nil
	}
	s, err := lr.r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", false, err
	}
	if s == "" && err != nil {
		return "", false, nil
	}
	lr.n++
	return strings.TrimRight(s, "\r\n"), true, nil
}

func (lr *lineReader) unread(s string) {
	lr.back = &s
	lr.n--
}

var reDivider = regexp.MustCompile(`^/(([\s=]*)|([\s-]*))$`)

// rawHeader is the untyped result of tokenizing the header section.
type rawHeader struct {
	values  *Header
	columns []string
}

// readHeader consumes marker-prefixed lines and stops before the first body line.
func readHeader(lr *lineReader) (*rawHeader, error) {
	h := &rawHeader{values: NewHeader()}
	pending := ""
	pendingLine := 0
	for {
		line, ok, err := lr.next()
		if err != nil {
			return nil, fmt.Errorf("read header: %w", err)
		}
		if !ok {
			if pending != "" {
				return nil, &MalformedHeaderError{Line: pendingLine, Key: pending, Reason: "end of input before value line"}
			}
			return h, nil
		}
		if !strings.HasPrefix(line, "/") {
			lr.unread(line)
			if pending != "" {
				return nil, &MalformedHeaderError{Line: pendingLine, Key: pending, Reason: "data starts before value line"}
			}
			return h, nil
		}
		if reDivider.MatchString(line) {
			continue
		}
		if strings.HasPrefix(line, "/ ") {
			h.columns = columnTokens(line[1:])
			if pending == "" {
				continue
			}
		}
		text := strings.TrimSpace(line[1:])
		if text == "HEADER:" {
			continue
		}
		if pending != "" {
			h.values.Set(pending, StringValue(text))
			pending = ""
			continue
		}
		switch {
		case strings.HasPrefix(text, "Number of gates for channel"):
			h.values.Set("number of gates for channel "+gateChannel(text, " is"), StringValue(lastField(text)))
		case strings.HasPrefix(text, "Gates for channel"):
			value := ""
			if i := strings.LastIndex(text, ": "); i >= 0 {
				value = text[i+2:]
			}
			h.values.Set("gate times for channel "+gateChannel(text, ":"), StringValue(value))
		default:
			pending = strings.ToLower(text)
			pendingLine = lr.n
		}
	}
}

func columnTokens(s string) []string {
	var out []string
	for _, tok := range strings.Fields(s) {
		tok = strings.Trim(strings.ToLower(tok), ",")
		if tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

// gateChannel returns the last token before sep, which holds the channel number.
func gateChannel(text, sep string) string {
	if i := strings.Index(text, sep); i >= 0 {
		text = text[:i]
	}
	return strings.ToLower(lastField(text))
}

func lastField(s string) string {
	f := strings.Fields(s)
	if len(f) == 0 {
		return ""
	}
	return f[len(f)-1]
}

// typeValues converts every raw string value into its inferred type.
func typeValues(h *Header) {
	for _, k := range h.Keys() {
		v, _ := h.Get(k)
		if v.Kind == String {
			h.Set(k, InferValue(v.Str))
		}
	}
}
