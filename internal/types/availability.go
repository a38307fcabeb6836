package types

// AvailabilityMap maps a field key to the sorted set of option ids currently
// realizable for that field. It is entirely derived and recomputed after
// every configuration change.
//
// A field absent from the map has not been computed yet and must be left
// untouched by auto-correction; a field present with an empty slice has been
// computed to have no valid option and must be cleared.
type AvailabilityMap map[string][]int

// Has reports whether the id is available for the field.
func (m AvailabilityMap) Has(field string, id int) bool {
	for _, v := range m[field] {
		if v == id {
			return true
		}
	}
	return false
}

// Computed reports whether availability has been resolved for the field.
func (m AvailabilityMap) Computed(field string) bool {
	_, ok := m[field]
	return ok
}

// Clone returns a deep copy.
func (m AvailabilityMap) Clone() AvailabilityMap {
	out := make(AvailabilityMap, len(m))
	for k, v := range m {
		out[k] = append([]int(nil), v...)
	}
	return out
}
