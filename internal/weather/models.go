package weather

// Snapshot is the normalized current-conditions view of one location.
// Values keep their display units so the cached body and the API response
// are the same document.
type Snapshot struct {
	Location    string `json:"location"`
	Temperature string `json:"temperature"`
	Description string `json:"description"`
	Humidity    string `json:"humidity"`
	WindSpeed   string `json:"windSpeed"`
	Source      string `json:"source"`
}

// OutcomeKind tags an Outcome.
type OutcomeKind uint8

const (
	OutcomeFailure OutcomeKind = iota
	OutcomeSuccess
)

// Failure is the per-location error record returned in place of a snapshot.
type Failure struct {
	Location string `json:"location"`
	Error    string `json:"error"`
}

// Outcome is the resolution result for one index of a batch.
// The zero value is an empty failure.
type Outcome struct {
	Kind     OutcomeKind
	Snapshot Snapshot
	Failure  Failure
}

func Succeeded(s Snapshot) Outcome {
	return Outcome{Kind: OutcomeSuccess, Snapshot: s}
}

func Failed(location, reason string) Outcome {
	return Outcome{Kind: OutcomeFailure, Failure: Failure{Location: location, Error: reason}}
}

// OK reports whether the outcome carries a snapshot.
func (o Outcome) OK() bool {
	return o.Kind == OutcomeSuccess
}

// MarshalJSON emits either the snapshot object or the {location, error} record.
func (o Outcome) MarshalJSON() ([]byte, error) {
	if o.OK() {
		return json.Marshal(o.Snapshot)
	}
	return json.Marshal(o.Failure)
}

// PendingFetch is a batch index that has to go upstream.
type PendingFetch struct {
	Index    int
	Location string
	Key      string
}
