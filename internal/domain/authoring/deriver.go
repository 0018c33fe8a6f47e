package authoring

// DeriveTrackToWarehouse reports whether the order is expected to generate
// warehouse receipt activity on fulfillment: true iff at least one line
// carries a resolved catalog item reference (an inventory line with an item
// picked, or a new-item line whose creation call has completed). A purely
// custom order is not inventory-tracked, and neither is the empty set.
//
// The flag is recomputed from the draft set on every read and copied verbatim
// into the submission payload; the operator cannot edit it independently.
func DeriveTrackToWarehouse(lines []OrderLineDraft) bool {
	for idx := range lines {
		if lines[idx].HasItemRef() {
			return true
		}
	}
	return false
}
