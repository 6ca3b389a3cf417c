package tapecmp

import (
	"fmt"
	"time"

	"github.com/dlclark/regexp2"
)

// MaskTimeout limits the time a single mask may spend on one line.
const MaskTimeout = 2 * time.Second

// DatePattern matches run dates like 01/02/23 that simulation codes embed in
// their output.
const (
	DatePattern     = `\d{2}/\d{2}/\d{2}`
	DatePlaceholder = `XX/XX/XX`
)

// Mask rewrites every match of Pattern in a line to Replace. Replace may
// refer to groups with $1 or ${name}.
type Mask struct {
	Pattern string
	Replace string

	rgx *regexp2.Regexp
}

// NewMask compiles a normalization mask.
func NewMask(pattern, replace string) (*Mask, error) {
	rgx, err := regexp2.Compile(pattern, regexp2.None)
	if err != nil {
		return nil, fmt.Errorf("mask '%s': %w", pattern, err)
	}
	rgx.MatchTimeout = MaskTimeout
	return &Mask{Pattern: pattern, Replace: replace, rgx: rgx}, nil
}

// DateMask replaces run dates with DatePlaceholder.
func DateMask() *Mask {
	m, err := NewMask(DatePattern, DatePlaceholder)
	if err != nil {
		panic(err)
	}
	return m
}

func DefaultMasks() []*Mask { return []*Mask{DateMask()} }

func (m *Mask) Apply(line string) (string, error) {
	if m.rgx == nil {
		tmp, err := NewMask(m.Pattern, m.Replace)
		if err != nil {
			return line, err
		}
		m.rgx = tmp.rgx
	}
	res, err := m.rgx.Replace(line, m.Replace, -1, -1)
	if err != nil {
		return line, fmt.Errorf("mask '%s': %w", m.Pattern, err)
	}
	return res, nil
}

// Normalize applies all masks in order to a copy of lines.
func Normalize(lines []string, masks ...*Mask) ([]string, error) {
	res := make([]string, len(lines))
	copy(res, lines)
	for _, m := range masks {
		for i, l := range res {
			var err error
			if res[i], err = m.Apply(l); err != nil {
				return nil, fmt.Errorf("line %d: %w", i+1, err)
			}
		}
	}
	return res, nil
}
