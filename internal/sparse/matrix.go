/*
Package sparse implements a simple sparse integer matrix, used for the GLR
parser's GOTO table. Every entry holds up to two int32 values
(allowing a cell to record a shift/reduce or reduce/reduce conflict pair).

Ported near-verbatim from github.com/npillmayer/gorgo/lr/sparse: triplet
(COO) encoding, kept sorted by (row, col) for a short-circuiting linear scan.
*/
package sparse

import "fmt"

// DefaultNullValue is the default empty-value for matrices (min int32).
const DefaultNullValue = -2147483648

type intPair struct {
	a, b int32
}

func newIntPair(a, b int32) intPair { return intPair{a, b} }

func addIntValue(v intPair, n, nullval int32) intPair {
	switch {
	case v.a == nullval:
		v.a = n
	case v.b == nullval:
		v.b = n
	default:
		v.b = n // entry full: overwrite second, mirrors the teacher's policy
	}
	return v
}

type triplet struct {
	row, col int
	value    intPair
}

func (t *triplet) storedLeftOf(i, j int) bool {
	return t.row < i || (t.row == i && t.col < j)
}

func (t *triplet) storedAt(i, j int) bool {
	return t.row == i && t.col == j
}

// IntMatrix is a sparse matrix of (up to two) int32 values per cell.
type IntMatrix struct {
	values  []triplet
	rowcnt  int
	colcnt  int
	nullval int32
}

// NewIntMatrix creates a new m x n sparse matrix; nullValue denotes an empty
// cell (use DefaultNullValue if you have no specific requirement).
func NewIntMatrix(m, n int, nullValue int32) *IntMatrix {
	return &IntMatrix{rowcnt: m, colcnt: n, nullval: nullValue}
}

// M returns the row count.
func (m *IntMatrix) M() int { return m.rowcnt }

// N returns the column count.
func (m *IntMatrix) N() int { return m.colcnt }

// NullValue returns this matrix' null value.
func (m *IntMatrix) NullValue() int32 { return m.nullval }

// ValueCount returns the number of (row,col) positions holding a value.
func (m *IntMatrix) ValueCount() int { return len(m.values) }

// Value returns the primary value at (i,j), or NullValue.
func (m *IntMatrix) Value(i, j int) int32 {
	for k := range m.values {
		t := &m.values[k]
		if !t.storedLeftOf(i, j) {
			if t.storedAt(i, j) {
				return t.value.a
			}
			break
		}
	}
	return m.nullval
}

// Values returns the pair of values at (i,j), or (NullValue, NullValue).
func (m *IntMatrix) Values(i, j int) (int32, int32) {
	for k := range m.values {
		t := &m.values[k]
		if !t.storedLeftOf(i, j) {
			if t.storedAt(i, j) {
				return t.value.a, t.value.b
			}
			break
		}
	}
	return m.nullval, m.nullval
}

// Set overwrites the primary value at (i,j).
func (m *IntMatrix) Set(i, j int, value int32) *IntMatrix {
	return m.setOrAdd(i, j, value, false)
}

// Add inserts a second value at (i,j), recording a table conflict, or sets
// the primary value if the cell was empty.
func (m *IntMatrix) Add(i, j int, value int32) *IntMatrix {
	return m.setOrAdd(i, j, value, true)
}

func (m *IntMatrix) setOrAdd(i, j int, value int32, doAdd bool) *IntMatrix {
	at := 0
	for k := range m.values {
		t := &m.values[k]
		if !t.storedLeftOf(i, j) {
			if t.storedAt(i, j) {
				if doAdd {
					m.values[k].value = addIntValue(t.value, value, m.nullval)
				} else {
					m.values[k].value = newIntPair(value, m.nullval)
				}
				return m
			}
			break
		}
		at++
	}
	tnew := triplet{row: i, col: j, value: newIntPair(value, m.nullval)}
	m.values = append(m.values, tnew)
	copy(m.values[at+1:], m.values[at:])
	m.values[at] = tnew
	return m
}

func (p intPair) String() string {
	return fmt.Sprintf("[%d,%d]", p.a, p.b)
}
