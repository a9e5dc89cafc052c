package network

// SequenceFilter drops frames that arrive out of order when the server stamps
// them with a sequence number. Frames without one always pass.
type SequenceFilter struct {
	last uint64
	seen bool
}

// Accept reports whether a frame with seq should be applied, and if so
// records seq as the last applied sequence number.
func (f *SequenceFilter) Accept(seq *uint64) bool {
	if seq == nil {
		return true
	}
	if f.seen && *seq <= f.last {
		return false
	}
	f.last = *seq
	f.seen = true
	return true
}

// Last returns the last applied sequence number, if any frame carried one.
func (f *SequenceFilter) Last() (uint64, bool) {
	return f.last, f.seen
}
