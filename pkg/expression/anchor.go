package expression

import "sync"

// Anchor tracks the target range of the node being edited together with the
// offset accumulated from import statements inserted while the form is open.
// It is safe for concurrent use.
type Anchor struct {
	mu     sync.Mutex
	target *LineRange
	offset int
}

// NewAnchor returns an anchor for target. A nil target is allowed.
func NewAnchor(target *LineRange) *Anchor {
	a := &Anchor{}
	if target != nil {
		t := *target
		a.target = &t
	}
	return a
}

// Add records n more characters inserted ahead of the target.
func (a *Anchor) Add(n int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.offset += n
}

// Offset reports the accumulated insertion offset.
func (a *Anchor) Offset() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.offset
}

// StartLine returns the adjusted start of the target, or nil.
func (a *Anchor) StartLine() *LinePosition {
	a.mu.Lock()
	defer a.mu.Unlock()
	return AdjustedStart(a.target, a.offset)
}

// Target returns the adjusted target range, or nil.
func (a *Anchor) Target() *LineRange {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.target == nil {
		return nil
	}
	adjusted := a.target.Adjust(a.offset)
	return &adjusted
}
