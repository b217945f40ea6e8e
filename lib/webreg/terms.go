package webreg

import "strconv"

// SeqID is the service's internal sequence number for a term.
type SeqID int64

func (s SeqID) String() string {
	return strconv.FormatInt(int64(s), 10)
}

// Term cycle offsets relative to winter. The service skips one slot
// between summer session 3 and fall.
var termOffsets = map[string]int64{
	"WI": 0,
	"SP": 10,
	"S1": 20,
	"S2": 30,
	"S3": 40,
	"SU": 50,
	"FA": 60,
}

// Winter 2022 anchors the sequence; each academic year advances it by
// 70.
const (
	anchorYear  = 22
	anchorSeqID = 5190
)

// TermSeqID computes the sequence id for a term code such as "FA23".
// Returns 0 for anything it cannot read.
func TermSeqID(term string) SeqID {
	if len(term) != 4 {
		return 0
	}
	offset, ok := termOffsets[term[:2]]
	if !ok {
		return 0
	}
	year, err := strconv.ParseInt(term[2:], 10, 64)
	if err != nil {
		return 0
	}
	return SeqID(anchorSeqID + (year-anchorYear)*70 + offset)
}
