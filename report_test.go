package tapecmp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReport_WriteTo(t *testing.T) {
	rep := &Report{RefName: "referenceTape25", TrialName: "tape25", RefLines: 3, TrialLines: 3}
	rep.add(&Mismatch{Line: 1, Ref: "a\n", Trial: "b\n", Kind: TextDiffers})
	rep.add(&Mismatch{Line: 3, Ref: "c\r\n", Trial: "d", Kind: TextDiffers})
	var sb strings.Builder
	n, err := rep.WriteTo(&sb)
	assert.NoError(t, err)
	const want = `*** referenceTape25 ***
--- tape25 ---
***************
*** 1 ***
!a
--- 1 ---
!b
***************
*** 3 ***
!c` + "\r\n" + `--- 3 ---
!d
`
	assert.Equal(t, want, sb.String())
	assert.Equal(t, int64(len(want)), n)
	assert.Equal(t, 2, rep.Len())
	assert.False(t, rep.Equivalent())
}

func TestReport_order(t *testing.T) {
	rep := new(Report)
	for i := 1; i <= 5; i++ {
		rep.add(&Mismatch{Line: i, Kind: TextDiffers})
	}
	var lines []int
	for m := range rep.Mismatches() {
		lines = append(lines, m.Line)
		if m.Line == 4 {
			break
		}
	}
	assert.Equal(t, []int{1, 2, 3, 4}, lines)
}

func TestMismatch_Reason(t *testing.T) {
	assert.Equal(t, "text differs", (&Mismatch{Kind: TextDiffers}).Reason())
	assert.Equal(t, "wrong number of floats: 2 reference, 1 trial",
		(&Mismatch{Kind: FloatCount, RefFloats: 2, TrialFloats: 1}).Reason())
	assert.Equal(t, "float-syntax", FloatSyntax.String())
	assert.Equal(t, "MismatchKind(0)", MismatchKind(0).String())
}
