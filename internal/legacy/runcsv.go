package legacy

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/edtke/archivecheck/internal/common"
)

// RunRecord is one row of the transformation-run CSV: the recorded outcome
// of migrating one legacy dataset. The CSV row is authoritative for the
// transformation outcome.
type RunRecord struct {
	UnitID             string
	DOI                string
	StatusComment      string
	TransformationKind string
	BagIDV1            string
	BagIDV2            string
}

// TransformationKind value marking datasets whose accessible rendition sits
// next to an archival copy under the original/ prefix.
const KindOriginalVersioned = "original_versioned"

// Succeeded reports whether the transformation completed; anything without
// "OK" in the status comment is skipped entirely.
func (r RunRecord) Succeeded() bool {
	return strings.Contains(r.StatusComment, "OK")
}

// NoPayload reports whether the unit migrated without payload files; only
// the placeholder migration files are expected then.
func (r RunRecord) NoPayload() bool {
	return strings.Contains(r.StatusComment, "no payload")
}

// Deleted reports whether the dataset was deleted in the legacy system
// after migration; its expected dataset record becomes a tombstone.
func (r RunRecord) Deleted() bool {
	return strings.Contains(r.StatusComment, "deleted")
}

// OriginalVersioned reports whether original/ prefix stripping applies.
func (r RunRecord) OriginalVersioned() bool {
	return r.TransformationKind == KindOriginalVersioned
}

// ExpectedVersions counts the bag ids the transformation produced; a row
// without any still represents one migrated version.
func (r RunRecord) ExpectedVersions() int {
	n := 0
	if r.BagIDV1 != "" {
		n++
	}
	if r.BagIDV2 != "" {
		n++
	}
	if n == 0 {
		n = 1
	}
	return n
}

// Column positions in the transformation-run CSV.
const (
	runUnitID = iota
	runDOI
	runStatusComment
	runTransformationKind
	runBagIDV1
	runBagIDV2
	runFieldCount
)

// ReadRunCSV parses the transformation-run CSV (header row expected) into
// records, preserving row order.
func ReadRunCSV(r io.Reader) ([]RunRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var (
		records []RunRecord
		first   = true
	)
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("transformation-run csv: %w: %v", common.ErrMalformedRecord, err)
		}
		if first {
			first = false
			continue
		}
		if len(row) < runFieldCount {
			return nil, fmt.Errorf("transformation-run csv: %w: got %d fields, want %d",
				common.ErrMalformedRecord, len(row), runFieldCount)
		}
		records = append(records, RunRecord{
			UnitID:             strings.TrimSpace(row[runUnitID]),
			DOI:                strings.TrimSpace(row[runDOI]),
			StatusComment:      row[runStatusComment],
			TransformationKind: strings.TrimSpace(row[runTransformationKind]),
			BagIDV1:            strings.TrimSpace(row[runBagIDV1]),
			BagIDV2:            strings.TrimSpace(row[runBagIDV2]),
		})
	}
	return records, nil
}
