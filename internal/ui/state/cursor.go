package state

// Advance moves index by delta with wraparound over length positions.
// Stepping past the end wraps to 0 and stepping below 0 wraps to length-1.
// Only deltas of -1 and +1 are supported; any other delta, and any call on
// an empty collection, is a no-op that reports false.
func Advance(index, delta, length int) (int, bool) {
	if length <= 0 || (delta != 1 && delta != -1) {
		return index, false
	}
	next := index + delta
	if next >= length {
		next = 0
	}
	if next < 0 {
		next = length - 1
	}
	return next, true
}

// WindowFor returns the viewport offset that keeps index visible in a window
// of windowLength rows starting at top. The viewport only moves as far as
// needed: up to index when index is above it, down until index is the last
// row when index is below it.
func WindowFor(index, top, windowLength int) int {
	if windowLength < 1 {
		windowLength = 1
	}
	if top < 0 {
		top = 0
	}
	if index < top {
		return index
	}
	if index >= top+windowLength {
		return index - windowLength + 1
	}
	return top
}

// Viewport is the cursor and scroll offset of one scrollable list.
type Viewport struct {
	Index int
	Top   int
}

// Step advances the cursor over length rows and recomputes the offset for a
// window of windowLength rows. It reports whether the cursor moved.
func (v *Viewport) Step(delta, length, windowLength int) bool {
	next, ok := Advance(v.Index, delta, length)
	if !ok {
		return false
	}
	moved := next != v.Index
	v.Index = next
	v.Top = WindowFor(v.Index, v.Top, windowLength)
	return moved
}

// Visible reports whether pos lies inside the window.
func (v Viewport) Visible(pos, windowLength int) bool {
	return pos >= v.Top && pos < v.Top+windowLength
}
