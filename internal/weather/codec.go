package weather

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// EncodeSnapshot produces the textual cache body for s.
func EncodeSnapshot(s Snapshot) ([]byte, error) {
	return json.Marshal(s)
}

// DecodeSnapshot parses a cache body. Bodies that parse but are not a
// snapshot (null, {}, an entry without a location) are reported as
// ErrCorruptEntry so the caller can refetch.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	var s *Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrCorruptEntry, err)
	}
	if s == nil || s.Location == "" {
		return Snapshot{}, ErrCorruptEntry
	}
	return *s, nil
}
