package models

import "time"

// BagInfo describes one versioned bag snapshot of a migration unit.
// Bags sharing a BaseID form a version chain; the element whose BagID equals
// BaseID is the chain origin.
type BagInfo struct {
	BagID   string
	BaseID  string
	Created time.Time
	DOI     string
	URN     string
}

// IsChainOrigin reports whether the bag is the first version of its chain.
func (b BagInfo) IsChainOrigin() bool {
	return b.BagID == b.BaseID
}
