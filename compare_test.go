package tapecmp

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func ExampleCompare() {
	cmpr := Compare{
		Tolerance: DefaultTolerance,
		Masks:     DefaultMasks(),
		OnMismatch: func(m *Mismatch) {
			fmt.Println(m)
		},
	}
	rep, err := cmpr.Strings(
		"run 01/02/23\nk = 1.00000001\nx 1.0 2.0\n",
		"run 05/06/24\nk = 1.00000002\nx 1.0 9.0\n",
	)
	fmt.Println(err)
	fmt.Print(rep)
	// Output:
	// line 3: 2.0 and 9.0 are not equal
	// 1 mismatches
	// ***************
	// *** 3 ***
	// !x 1.0 2.0
	// --- 3 ---
	// !x 1.0 9.0
}

func TestCompare_identical(t *testing.T) {
	lines := []string{"hello\n", "x 1.0 2.0\n", "no newline"}
	rep, err := (&Compare{}).Lines(lines, lines)
	require.NoError(t, err)
	assert.True(t, rep.Equivalent())
	assert.Zero(t, rep.Len())
	assert.Empty(t, rep.String())
}

func TestCompare_withinTolerance(t *testing.T) {
	cmpr := Compare{Tolerance: Tolerance{Relative: 1e-6, Absolute: 1e-8}}
	rep, err := cmpr.Lines(
		[]string{"k = 1.00000001\n"},
		[]string{"k = 1.00000002\n"},
	)
	require.NoError(t, err)
	assert.True(t, rep.Equivalent())
}

func TestCompare_textAroundFloatsIgnored(t *testing.T) {
	cmpr := Compare{Tolerance: DefaultTolerance}
	_, err := cmpr.Lines(
		[]string{"energy 1.0\n"},
		[]string{"ENERGY 1.0\n"},
	)
	assert.NoError(t, err)
}

func TestCompare_valueMismatch(t *testing.T) {
	cmpr := Compare{Tolerance: DefaultTolerance}
	rep, err := cmpr.Lines(
		[]string{"same\n", "x 1.0 2.0 3.0 4.0\n"},
		[]string{"same\n", "x 1.0 9.0 3.0 8.0\n"},
	)
	assert.Equal(t, MismatchCount(1), err)
	assert.True(t, IsMismatch(err))
	assert.False(t, rep.Equivalent())
	var mms []*Mismatch
	for m := range rep.Mismatches() {
		mms = append(mms, m)
	}
	require.Len(t, mms, 1)
	m := mms[0]
	assert.Equal(t, 2, m.Line)
	assert.Equal(t, FloatValues, m.Kind)
	require.Len(t, m.Values, 2)
	assert.Equal(t, "2.0 and 9.0 are not equal", m.Values[0].String())
	assert.Equal(t, "4.0 and 8.0 are not equal", m.Values[1].String())
	assert.Equal(t, "2.0 and 9.0 are not equal; 4.0 and 8.0 are not equal", m.Reason())
}

func TestCompare_floatCount(t *testing.T) {
	cmpr := Compare{Tolerance: DefaultTolerance}
	rep, err := cmpr.Lines(
		[]string{"a 1.0 2.0\n"},
		[]string{"a 1.0\n"},
	)
	assert.True(t, IsMismatch(err))
	require.Equal(t, 1, rep.Len())
	for m := range rep.Mismatches() {
		assert.Equal(t, FloatCount, m.Kind)
		assert.Equal(t, 2, m.RefFloats)
		assert.Equal(t, 1, m.TrialFloats)
		assert.Empty(t, m.Values)
		assert.Contains(t, m.Reason(), "wrong number of floats")
	}
}

func TestCompare_textMismatch(t *testing.T) {
	rep, err := (&Compare{Tolerance: DefaultTolerance}).Lines(
		[]string{"hello\n"},
		[]string{"world\n"},
	)
	assert.Equal(t, MismatchCount(1), err)
	assert.Equal(t, "***************\n*** 1 ***\n!hello\n--- 1 ---\n!world\n", rep.String())
}

func TestCompare_trialFloatsWithoutReferenceFloats(t *testing.T) {
	_, err := (&Compare{Tolerance: DefaultTolerance}).Lines(
		[]string{"hello\n"},
		[]string{"hello 1.0\n"},
	)
	assert.Equal(t, MismatchCount(1), err)
}

func TestCompare_lineCount(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	cmpr := Compare{Tolerance: DefaultTolerance, Log: zap.New(core)}
	ref := make([]string, 10)
	trial := make([]string, 9)
	for i := range ref {
		ref[i] = fmt.Sprintf("line %d\n", i)
	}
	for i := range trial {
		trial[i] = "other\n"
	}
	rep, err := cmpr.Lines(ref, trial)
	var lce *LineCountError
	require.True(t, errors.As(err, &lce))
	assert.Equal(t, LineCountError{Ref: 10, Trial: 9}, *lce)
	assert.True(t, IsMismatch(err))
	assert.False(t, rep.Equivalent())
	assert.Zero(t, rep.Len())
	assert.Empty(t, rep.String())
	assert.Equal(t, 1, logs.Len())
}

func TestCompare_fullPass(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	var seen []int
	cmpr := Compare{
		Tolerance:  DefaultTolerance,
		Log:        zap.New(core),
		OnMismatch: func(m *Mismatch) { seen = append(seen, m.Line) },
	}
	_, err := cmpr.Lines(
		[]string{"a\n", "b 1\n", "c 1 2\n", "d\n"},
		[]string{"A\n", "b 2\n", "c 1\n", "d\n"},
	)
	assert.Equal(t, MismatchCount(3), err)
	assert.Equal(t, []int{1, 2, 3}, seen)
	assert.Equal(t, 1, logs.FilterMessage("text differs").Len())
	assert.Equal(t, 1, logs.FilterMessage("1 and 2 are not equal").Len())
	assert.Equal(t, 1, logs.FilterMessage("wrong number of floats").Len())
}

func TestCompare_dateMask(t *testing.T) {
	ref := []string{"run date: 01/02/23\n"}
	trial := []string{"run date: 05/06/24\n"}
	t.Run("masked", func(t *testing.T) {
		cmpr := Compare{Masks: DefaultMasks()}
		_, err := cmpr.Lines(ref, trial)
		assert.NoError(t, err)
		assert.Equal(t, "run date: 01/02/23\n", ref[0], "input modified")
	})
	t.Run("unmasked", func(t *testing.T) {
		_, err := (&Compare{}).Lines(ref, trial)
		assert.True(t, IsMismatch(err))
	})
}

func TestCompare_idempotent(t *testing.T) {
	cmpr := Compare{Tolerance: DefaultTolerance, Masks: DefaultMasks()}
	ref := []string{"t 01/01/99 1.0\n", "hello\n", "x 1.0 2.0\n", "a 1.0 2.0\n"}
	trial := []string{"t 12/12/12 1.0\n", "world\n", "x 1.0 9.0\n", "a 1.0\n"}
	rep1, err1 := cmpr.Lines(ref, trial)
	rep2, err2 := cmpr.Lines(ref, trial)
	assert.Equal(t, err1, err2)
	assert.Equal(t, rep1.Equivalent(), rep2.Equivalent())
	assert.Equal(t, rep1.String(), rep2.String())
	assert.Equal(t, 3, rep1.Len())
}

func TestCompare_floatSyntax(t *testing.T) {
	cmpr := Compare{Tolerance: DefaultTolerance}
	m := cmpr.line(1, "v 1\n", "v 2\n")
	require.NotNil(t, m)
	assert.Equal(t, FloatValues, m.Kind)

	// Grammar matches always convert, so the defect path is checked on the
	// token level.
	_, err := Float{Text: "1.2.3", Int: "1", Frac: ".2.3"}.Value()
	var ferr *FloatError
	assert.ErrorAs(t, err, &ferr)
}

func TestCompare_overflow(t *testing.T) {
	cmpr := Compare{Tolerance: Tolerance{Relative: 1e-9, Absolute: 1e-10}}
	for _, trial := range []string{"x 5.0+000\n", "x -1.0+999\n", "x 1.0+300\n"} {
		rep, err := cmpr.Lines([]string{"x 1.0+999\n"}, []string{trial})
		assert.Equal(t, MismatchCount(1), err, trial)
		for m := range rep.Mismatches() {
			assert.Equal(t, FloatValues, m.Kind, trial)
		}
	}
	rep, err := cmpr.Lines([]string{"x 1.0+999\n"}, []string{"x 1.00+999\n"})
	assert.NoError(t, err)
	assert.True(t, rep.Equivalent())
}

func TestCompare_Files(t *testing.T) {
	dir := t.TempDir()
	ref := filepath.Join(dir, "referenceTape25")
	trial := filepath.Join(dir, "tape25")
	require.NoError(t, os.WriteFile(ref, []byte("a 1.0\nb 2.0\n"), 0666))
	require.NoError(t, os.WriteFile(trial, []byte("a 1.0\nb 3.0\n"), 0666))
	rep, err := (&Compare{Tolerance: DefaultTolerance}).Files(ref, trial)
	assert.True(t, IsMismatch(err))
	out := rep.String()
	assert.True(t, strings.HasPrefix(out,
		fmt.Sprintf("*** %s ***\n--- %s ---\n***************\n*** 2 ***\n", ref, trial)),
		out)

	_, err = (&Compare{}).Files(ref, filepath.Join(dir, "tape99"))
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.False(t, IsMismatch(err))
}
