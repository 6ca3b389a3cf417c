/*
Package tapecmp compares text output of numeric simulation codes, called
trial tapes, against reference tapes. The comparison is strict about the
text and the number of lines but tolerates small drift of floating point
numbers embedded in the lines.

Reference and trial are compared line by line. Lines are never realigned:
if the number of lines differs, the tapes are not equivalent and no line is
compared at all. Otherwise each pair of lines is handled like this:

  - Lines with identical text match.
  - If the reference line contains no float, any difference is a mismatch.
  - If reference and trial line contain a different number of floats, it is a
    mismatch.
  - Otherwise the floats are compared pairwise by position. The lines match if
    every pair is equal within the tolerance, even if the text around the
    numbers is different.

# Floats

Floats are found with this grammar:

	float := sign? digits ("." digits)? (mark? sign digits)?
	sign  := "+" | "-"
	mark  := "e" | "E"

Note that the sign of an exponent is required while the mark is optional.
This fits the way Fortran codes write numbers to tapes, e.g.

	 1.234567+5 2.000000-3

contains the floats 1.234567E+5 and 2.0E-3. On the other hand "1e5" is only
the float "1" followed by the text "e5".

# Tolerance

Two values a and b are equal if

	|a-b| <= max(|a|,|b|)*Relative + Absolute

The absolute error guards values near zero where the relative error alone is
meaningless. A zero Tolerance requires exact equality.

# Masks

Simulation codes like to put the date of the run into their output. Before
lines are compared, masks can rewrite parts of both reference and trial
lines. DateMask replaces dates like 01/02/23 with XX/XX/XX.

# Diff Report

Each mismatching line is written to the diff report as a block

	***************
	*** 3 ***
	!k = 1.0 2.0
	--- 3 ---
	!k = 1.0 9.0

with the 1-based line number, the reference line and the trial line.
*/
package tapecmp
