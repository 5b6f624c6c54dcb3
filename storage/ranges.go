package storage

import (
	"github.com/ruteri/sites-portal-backend/interfaces"
)

// applyRange slices data the way an HTTP server answers "bytes=start-end":
// the end is inclusive, an absent end reads to the end of the data and an
// absent start selects the last End bytes.
func applyRange(data []byte, r *interfaces.Range) []byte {
	if r == nil || (r.Start == nil && r.End == nil) {
		return data
	}

	size := uint64(len(data))
	if r.Start == nil {
		suffix := *r.End
		if suffix >= size {
			return data
		}
		return data[size-suffix:]
	}

	start := *r.Start
	if start >= size {
		return []byte{}
	}
	end := size
	if r.End != nil && *r.End < size-1 {
		end = *r.End + 1
	}
	if end <= start {
		return []byte{}
	}
	return data[start:end]
}
