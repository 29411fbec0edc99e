package reminder

import "time"

// Offset is one named lead time before an event at which a reminder fires.
// The Label doubles as the ledger key, so it must stay stable across
// releases for deduplication to hold.
type Offset struct {
	Label string
	Days  int
}

// Duration returns the lead time as a time.Duration.
func (o Offset) Duration() time.Duration {
	return time.Duration(o.Days) * 24 * time.Hour
}

// DefaultOffsets returns the fixed reminder schedule: 7, 2 and 1 days
// before the event, evaluated independently of each other.
func DefaultOffsets() []Offset {
	return []Offset{
		{Label: "7 days before", Days: 7},
		{Label: "2 days before", Days: 2},
		{Label: "1 day before", Days: 1},
	}
}

// OffsetByLabel looks up an offset in the default set.
func OffsetByLabel(label string) (Offset, bool) {
	for _, o := range DefaultOffsets() {
		if o.Label == label {
			return o, true
		}
	}
	return Offset{}, false
}
