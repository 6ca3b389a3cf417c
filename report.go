package tapecmp

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"strings"

	"git.fractalqb.de/fractalqb/icontainer/islist"
)

// Kinds of line mismatches
type MismatchKind int

const (
	// The lines differ and the reference line has no floats.
	TextDiffers MismatchKind = iota + 1
	// Reference and trial line have a different number of floats.
	FloatCount
	// At least one pair of floats is out of tolerance.
	FloatValues
	// A float token could not be converted to a number.
	FloatSyntax
)

func (k MismatchKind) String() string {
	switch k {
	case TextDiffers:
		return "text"
	case FloatCount:
		return "float-count"
	case FloatValues:
		return "float-values"
	case FloatSyntax:
		return "float-syntax"
	}
	return fmt.Sprintf("MismatchKind(%d)", int(k))
}

// ValueMismatch is a pair of positional floats out of tolerance.
type ValueMismatch struct {
	Ref, Trial Float
}

func (vm ValueMismatch) String() string {
	return fmt.Sprintf("%s and %s are not equal", vm.Ref.Text, vm.Trial.Text)
}

// Mismatch records a reference line that does not match its trial line.
type Mismatch struct {
	// Line is the 1-based line number
	Line       int
	Ref, Trial string
	Kind       MismatchKind
	// RefFloats and TrialFloats are the token counts of both lines
	RefFloats, TrialFloats int
	// Values lists the out of tolerance pairs for Kind FloatValues
	Values []ValueMismatch
	// Err is set for Kind FloatSyntax
	Err error

	islsNext *Mismatch
}

// Reason describes why the line mismatches.
func (m *Mismatch) Reason() string {
	switch m.Kind {
	case TextDiffers:
		return "text differs"
	case FloatCount:
		return fmt.Sprintf("wrong number of floats: %d reference, %d trial",
			m.RefFloats,
			m.TrialFloats,
		)
	case FloatValues:
		vms := make([]string, len(m.Values))
		for i, vm := range m.Values {
			vms[i] = vm.String()
		}
		return strings.Join(vms, "; ")
	case FloatSyntax:
		return m.Err.Error()
	}
	return m.Kind.String()
}

func (m *Mismatch) String() string {
	return fmt.Sprintf("line %d: %s", m.Line, m.Reason())
}

// WriteTo writes the diff record block of the mismatch.
func (m *Mismatch) WriteTo(w io.Writer) (n int64, err error) {
	c, err := fmt.Fprintf(w, "***************\n*** %[1]d ***\n!%[2]s--- %[1]d ---\n!%[3]s",
		m.Line,
		terminated(m.Ref),
		terminated(m.Trial),
	)
	return int64(c), err
}

func terminated(line string) string {
	if Terminator(line) == "" {
		return line + "\n"
	}
	return line
}

// ListNext to implement intrusive singly linked list
func (m *Mismatch) ListNext() islist.Node {
	if m.islsNext == nil {
		return nil
	}
	return m.islsNext
}

// SetListNext to implement intrusive singly linked list
func (m *Mismatch) SetListNext(n islist.Node) {
	if n == nil {
		m.islsNext = nil
	} else {
		m.islsNext = n.(*Mismatch)
	}
}

// Report accumulates the mismatches of one reference/trial comparison.
type Report struct {
	RefName, TrialName   string
	RefLines, TrialLines int

	mms *islist.List
}

func (r *Report) add(m *Mismatch) {
	if r.mms == nil {
		r.mms = islist.New(m)
	} else {
		r.mms.PushBack(m)
	}
}

// Len returns the number of mismatching lines.
func (r *Report) Len() int {
	if r.mms == nil {
		return 0
	}
	return r.mms.Len()
}

// Equivalent reports whether reference and trial have the same number of
// lines and no line mismatches.
func (r *Report) Equivalent() bool {
	return r.RefLines == r.TrialLines && r.Len() == 0
}

// Mismatches iterates the mismatches in line order.
func (r *Report) Mismatches() iter.Seq[*Mismatch] {
	return func(yield func(*Mismatch) bool) {
		if r.mms == nil {
			return
		}
		for n := r.mms.Front(); n != nil; n = n.ListNext() {
			if !yield(n.(*Mismatch)) {
				return
			}
		}
	}
}

// WriteTo writes the diff report. The header naming reference and trial is
// only written if both names are known.
func (r *Report) WriteTo(w io.Writer) (n int64, err error) {
	bw := bufio.NewWriter(w)
	if r.RefName != "" && r.TrialName != "" {
		c, err := fmt.Fprintf(bw, "*** %s ***\n--- %s ---\n", r.RefName, r.TrialName)
		n += int64(c)
		if err != nil {
			return n, err
		}
	}
	for m := range r.Mismatches() {
		c, err := m.WriteTo(bw)
		n += c
		if err != nil {
			return n, err
		}
	}
	return n, bw.Flush()
}

func (r *Report) String() string {
	var sb strings.Builder
	r.WriteTo(&sb)
	return sb.String()
}
