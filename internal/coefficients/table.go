package coefficients

import "sync/atomic"

// Table owns the Set used by a pricing session. Readers get a copy of the
// current Set; Replace swaps the whole value.
type Table struct {
	cur atomic.Pointer[Set]
}

// NewTable returns a Table holding s.
func NewTable(s Set) *Table {
	t := &Table{}
	t.Replace(s)
	return t
}

// Current returns the Set in effect.
func (t *Table) Current() Set {
	return *t.cur.Load()
}

// Replace installs s as the current Set.
func (t *Table) Replace(s Set) {
	t.cur.Store(&s)
}
