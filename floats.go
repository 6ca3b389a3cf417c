package tapecmp

import (
	"errors"
	"fmt"
	"iter"
	"regexp"
	"strconv"
)

// The exponent needs an explicit sign while the exponent mark is optional. So
// "1.5-3" is 1.5E-3 and "1e5" only yields the token "1".
var floatRgx = regexp.MustCompile(`([-+]?\d+)(\.\d+)?(([eE])?[-+]\d+)?`)

// Float is a floating point token found in a line of text.
type Float struct {
	// Text is the complete matched text
	Text string
	// Int is the integer part including its optional sign
	Int string
	// Frac is the fractional part including the period. It may be empty.
	Frac string
	// Exp is the exponent part including the optional mark and the
	// mandatory sign. It may be empty.
	Exp string
	// Pos is the byte offset of Text in the scanned line
	Pos int
}

// FloatError reports a float token that cannot be converted into a number.
type FloatError struct {
	Float Float
	err   error
}

func (e *FloatError) Error() string {
	return fmt.Sprintf("float token '%s': %s", e.Float.Text, e.err)
}

func (e *FloatError) Unwrap() error { return e.err }

// Floats returns the float tokens of line from left to right. The sequence
// scans lazily and can be iterated more than once.
func Floats(line string) iter.Seq[Float] {
	return func(yield func(Float) bool) {
		for pos := 0; pos < len(line); {
			m := floatRgx.FindStringSubmatchIndex(line[pos:])
			if m == nil {
				return
			}
			if !yield(newFloat(line, pos, m)) {
				return
			}
			pos += m[1]
		}
	}
}

// AllFloats collects all float tokens of line.
func AllFloats(line string) (res []Float) {
	for f := range Floats(line) {
		res = append(res, f)
	}
	return res
}

func newFloat(line string, off int, m []int) Float {
	group := func(g int) string {
		if m[2*g] < 0 {
			return ""
		}
		return line[off+m[2*g] : off+m[2*g+1]]
	}
	return Float{
		Text: group(0),
		Int:  group(1),
		Frac: group(2),
		Exp:  group(3),
		Pos:  off + m[0],
	}
}

// HasMark reports whether the exponent is introduced with 'e' or 'E'.
func (f Float) HasMark() bool {
	return f.Exp != "" && (f.Exp[0] == 'e' || f.Exp[0] == 'E')
}

// Value converts the token into a number. If Text is not a valid number by
// itself and the exponent has no mark, the value is rebuilt from its parts
// as Int+Frac+"E"+Exp. Values out of the float64 range are returned as ±Inf
// or 0 without an error.
func (f Float) Value() (float64, error) {
	v, err := parseFloat(f.Text)
	if err == nil {
		return v, nil
	}
	if f.Exp != "" && !f.HasMark() {
		if v, rerr := parseFloat(f.Int + f.Frac + "E" + f.Exp); rerr == nil {
			return v, nil
		}
	}
	return 0, &FloatError{Float: f, err: err}
}

func parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if errors.Is(err, strconv.ErrRange) {
		return v, nil
	}
	return v, err
}
