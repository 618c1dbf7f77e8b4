// Package projection resolves coordinate reference systems named in survey
// headers and moves coordinates between the ones the tool can compute.
package projection

import (
	_ "embed"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	WGS84       = 4326
	WebMercator = 3857
)

// ErrUnsupportedCRS reports an EPSG code Transform cannot compute.
var ErrUnsupportedCRS = errors.New("unsupported coordinate reference system")

//go:embed names.yaml
var namesYAML []byte

type nameEntry struct {
	EPSG  int      `yaml:"epsg"`
	Names []string `yaml:"names"`
}

var (
	namesOnce sync.Once
	names     []nameEntry
	namesErr  error
)

func loadNames() ([]nameEntry, error) {
	namesOnce.Do(func() {
		if err := yaml.Unmarshal(namesYAML, &names); err != nil {
			namesErr = fmt.Errorf("decode projection names: %w", err)
			return
		}
		for i := range names {
			for j, n := range names[i].Names {
				names[i].Names[j] = squash(n)
			}
		}
	})
	return names, namesErr
}

var (
	reEPSG    = regexp.MustCompile(`(?i)\(\s*epsg\s*:\s*([0-9]+)\s*\)`)
	reUTMZone = regexp.MustCompile(`\butm zone ([0-9]{1,2}) ?([ns])?\b`)
	rePunct   = regexp.MustCompile(`[^a-z0-9]+`)
)

func squash(s string) string {
	return strings.TrimSpace(rePunct.ReplaceAllString(strings.ToLower(s), " "))
}

// Resolve finds the EPSG code a header text refers to: an explicit
// "(epsg:N)" first, then a UTM zone phrase, then the name table.
func Resolve(text string) (int, bool) {
	if m := reEPSG.FindStringSubmatch(text); m != nil {
		code, err := strconv.Atoi(m[1])
		if err == nil {
			return code, true
		}
	}
	s := squash(text)
	if s == "" {
		return 0, false
	}
	if m := reUTMZone.FindStringSubmatch(s); m != nil {
		zone, _ := strconv.Atoi(m[1])
		if zone >= 1 && zone <= 60 {
			south := m[2] == "s" || strings.Contains(s, " south")
			switch {
			case strings.Contains(s, "etrs"):
				return 25800 + zone, true
			case strings.Contains(s, "nad83") || strings.Contains(s, "nad 83"):
				return 26900 + zone, true
			case south:
				return 32700 + zone, true
			default:
				return 32600 + zone, true
			}
		}
	}
	table, err := loadNames()
	if err != nil {
		return 0, false
	}
	best, bestLen := 0, 0
	padded := " " + s + " "
	for _, e := range table {
		for _, n := range e.Names {
			if len(n) > bestLen && strings.Contains(padded, " "+n+" ") {
				best, bestLen = e.EPSG, len(n)
			}
		}
	}
	return best, bestLen > 0
}

// Supported reports whether Transform can read or write code.
func Supported(code int) bool {
	_, ok := lookup(code)
	return ok
}
