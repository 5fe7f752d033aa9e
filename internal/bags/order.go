// Package bags orders the versioned bag snapshots of one migration unit.
package bags

import (
	"sort"

	"github.com/edtke/archivecheck/internal/models"
)

// Less is the version-chain comparator. The chain origin (BagID == BaseID)
// always sorts first regardless of timestamps; other elements sort by
// creation time. Creation times truncated to the same second do not order
// two non-origin versions, so bag id decides lexicographically to keep the
// order deterministic.
func Less(a, b models.BagInfo) bool {
	switch {
	case a.IsChainOrigin() && !b.IsChainOrigin():
		return true
	case !a.IsChainOrigin() && b.IsChainOrigin():
		return false
	}
	if !a.Created.Equal(b.Created) {
		return a.Created.Before(b.Created)
	}
	return a.BagID < b.BagID
}

// Sort orders a version chain in place, oldest version first.
func Sort(chain []models.BagInfo) {
	sort.SliceStable(chain, func(i, j int) bool { return Less(chain[i], chain[j]) })
}
