// Package alc reads and writes ALC column-mapping files, which assign
// canonical field names to 1-based column positions of an XYZ body.
package alc

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Meta keys carry file-level settings instead of column positions.
var metaKeys = map[string]bool{"Version": true, "System": true, "ChannelsNumber": true, "Dummy": true}

var supportedFields = []*regexp.Regexp{
	regexp.MustCompile(`^Date$`),
	regexp.MustCompile(`^Line$`),
	regexp.MustCompile(`^Magnetic$`),
	regexp.MustCompile(`^Misc1$`),
	regexp.MustCompile(`^Misc2$`),
	regexp.MustCompile(`^Misc3$`),
	regexp.MustCompile(`^Misc4$`),
	regexp.MustCompile(`^PowerLineMonitor$`),
	regexp.MustCompile(`^RxPitch$`),
	regexp.MustCompile(`^RxRoll$`),
	regexp.MustCompile(`^Time$`),
	regexp.MustCompile(`^Topography$`),
	regexp.MustCompile(`^TxAltitude$`),
	regexp.MustCompile(`^TxOffTime$`),
	regexp.MustCompile(`^TxOnTime$`),
	regexp.MustCompile(`^TxPeakTime$`),
	regexp.MustCompile(`^TxPitch$`),
	regexp.MustCompile(`^TxRoll$`),
	regexp.MustCompile(`^TxRxHoriSep$`),
	regexp.MustCompile(`^TxRxVertSep$`),
	regexp.MustCompile(`^UTMX$`),
	regexp.MustCompile(`^UTMY$`),
	regexp.MustCompile(`^Current_Ch01$`),
	regexp.MustCompile(`^Current_Ch02$`),
	regexp.MustCompile(`^Gate_Ch01.*`),
	regexp.MustCompile(`^Gate_Ch02.*`),
	regexp.MustCompile(`^STD_Ch01.*`),
	regexp.MustCompile(`^STD_Ch02.*`),
}

// IsSupported reports whether a canonical field name is on the allow-list.
func IsSupported(name string) bool {
	for _, re := range supportedFields {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}

// Field is one Name=Position assignment. Position is 1-based; 0 means unset.
type Field struct {
	Name     string
	Position int
}

// File is a parsed ALC file.
type File struct {
	Meta   map[string]string
	Fields []Field
}

// Parse reads Name=Position lines.
func Parse(r io.Reader) (*File, error) {
	f := &File{Meta: map[string]string{}}
	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		name, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("alc line %d: missing '='", n)
		}
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)
		if metaKeys[name] {
			f.Meta[name] = value
			continue
		}
		pos := 0
		if value != "*" && value != "" {
			p, err := strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("alc line %d: position %q for %s: %w", n, value, name, err)
			}
			if p > 0 {
				pos = p
			}
		}
		f.Fields = append(f.Fields, Field{Name: name, Position: pos})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read alc: %w", err)
	}
	return f, nil
}

// ParseFile parses the ALC file at path.
func ParseFile(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open alc: %w", err)
	}
	defer fh.Close()
	return Parse(fh)
}

// Mapping resolves supported fields against the physical column order and
// returns physical column name -> canonical name.
func (f *File) Mapping(columns []string) (map[string]string, error) {
	out := map[string]string{}
	for _, fd := range f.Fields {
		if fd.Position == 0 || !IsSupported(fd.Name) {
			continue
		}
		if fd.Position > len(columns) {
			return nil, fmt.Errorf("alc field %s: position %d outside %d columns", fd.Name, fd.Position, len(columns))
		}
		out[columns[fd.Position-1]] = fd.Name
	}
	return out, nil
}

// Channels counts the distinct gate channels among Gate_ChNN fields.
func Channels(names []string) int {
	seen := map[string]bool{}
	for _, n := range names {
		if !strings.HasPrefix(n, "Gate_Ch") {
			continue
		}
		ch, _, _ := strings.Cut(strings.TrimPrefix(n, "Gate_Ch"), "_")
		seen[ch] = true
	}
	return len(seen)
}

// Dump writes an ALC file describing the supported fields found in columns.
func Dump(w io.Writer, columns []string, system string) error {
	if system == "" {
		system = "Unknown"
	}
	var fields []Field
	var names []string
	for i, c := range columns {
		if IsSupported(c) {
			fields = append(fields, Field{Name: c, Position: i + 1})
			names = append(names, c)
		}
	}
	bw := bufio.NewWriter(w)
	write := func(name string, value any) {
		fmt.Fprintf(bw, "%-22s%v\n", name+"=", value)
	}
	write("Version", 2)
	write("System", system)
	write("Dummy", "*")
	write("ChannelsNumber", Channels(names))
	for _, fd := range fields {
		write(fd.Name, fd.Position)
	}
	return bw.Flush()
}

// MetaKeys returns the meta keys present, sorted.
func (f *File) MetaKeys() []string {
	out := make([]string, 0, len(f.Meta))
	for k := range f.Meta {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
