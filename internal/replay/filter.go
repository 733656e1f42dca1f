package replay

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// AircraftFilter is the allow-list of aircraft ids. An empty filter passes
// everything.
type AircraftFilter map[uint64]struct{}

// ParseAircraftFilter builds the union of a comma-separated hex id list and
// a comma-separated decimal id list (either may be empty). The decimal list
// also accepts prefixed forms like 0xAB1234.
func ParseAircraftFilter(hexList, decList string) (AircraftFilter, error) {
	f := make(AircraftFilter)

	add := func(list string, base int) error {
		if list == "" {
			return nil
		}
		for _, tok := range strings.Split(list, ",") {
			tok = strings.TrimSpace(tok)
			if tok == "" {
				continue
			}
			id, err := strconv.ParseUint(tok, base, 64)
			if err != nil {
				return fmt.Errorf("invalid aircraft id %q: %w", tok, err)
			}
			f[id] = struct{}{}
		}
		return nil
	}

	if err := add(hexList, 16); err != nil {
		return nil, err
	}
	if err := add(decList, 0); err != nil {
		return nil, err
	}
	return f, nil
}

// Empty reports whether the filter passes everything.
func (f AircraftFilter) Empty() bool {
	return len(f) == 0
}

// Match reports whether id passes the filter.
func (f AircraftFilter) Match(id uint64) bool {
	if len(f) == 0 {
		return true
	}
	_, ok := f[id]
	return ok
}

// IDs returns the selected ids in ascending order, for diagnostics.
func (f AircraftFilter) IDs() []uint64 {
	ids := make([]uint64, 0, len(f))
	for id := range f {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
