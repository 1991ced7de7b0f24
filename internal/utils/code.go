package utils

import (
	"fmt"
	"strconv"
	"sync/atomic"
	"time"
)

var codeSeq atomic.Uint64

// NewBookingCode returns a new human-readable booking code of the form
// REQ<digits>: the current Unix time in milliseconds followed by a
// three-digit process-local sequence.  The sequence keeps codes unique even
// when several bookings land within the same millisecond; global uniqueness
// is still enforced by the store's unique index on the code column.
func NewBookingCode() string {
	ms := time.Now().UTC().UnixMilli()
	seq := codeSeq.Add(1) % 1000
	return "REQ" + strconv.FormatInt(ms, 10) + fmt.Sprintf("%03d", seq)
}

// ParseRFC3339 parses a timestamp in RFC 3339 form and normalizes it to UTC.
func ParseRFC3339(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
