package mbslave

// bsearchThreshold mirrors mbcoil_find_desc's BSEARCH_THRESHOLD constant: below
// this many descriptors a linear scan wins on cache locality, at or above it
// binary search takes over. Descriptor tables are kept sorted by start
// address so either strategy agrees on the result.
const bsearchThreshold = 16

// addressed is implemented by any descriptor table entry that occupies a
// contiguous address range, letting findDescriptor work generically across
// coil, register and file descriptor slices.
type addressed interface {
	startAddr() uint16
	count() uint16
}

// findDescriptor returns the index of the descriptor covering addr, or -1 if
// none does. Entries must be sorted ascending by startAddr with no overlap;
// nothing here checks this, the caller building the table must uphold it.
func findDescriptor[T addressed](table []T, addr uint16) int {
	if len(table) < bsearchThreshold {
		for i, d := range table {
			if addr >= d.startAddr() && addr < d.startAddr()+d.count() {
				return i
			}
		}
		return -1
	}

	lo, hi := 0, len(table)-1
	for lo <= hi {
		mid := lo + (hi-lo)/2
		d := table[mid]
		switch {
		case addr < d.startAddr():
			hi = mid - 1
		case addr >= d.startAddr()+d.count():
			lo = mid + 1
		default:
			return mid
		}
	}
	return -1
}
