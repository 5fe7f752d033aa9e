package resolve

import (
	"context"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/edtke/archivecheck/internal/common"
	"github.com/edtke/archivecheck/internal/logging"
	"github.com/edtke/archivecheck/internal/rights"
)

// Field positions in the index-service answer line.
const (
	idxDatasetID = iota
	idxAvailable
	idxRights
	idxDepositor
	indexFieldCount
)

// ResolveIndexLine parses the single tabular line the dataset index service
// answers for one dataset: comma-separated, optionally quoted fields holding
// the availability date, a multi-valued rights field and the depositor.
//
// The rights field carries comma-separated tokens of mixed provenance; the
// first token naming a known access category wins. When no token matches,
// the most restrictive category is assumed and a warning is logged.
func ResolveIndexLine(ctx context.Context, line string, log logging.Logger) (DatasetRights, error) {
	r := csv.NewReader(strings.NewReader(strings.TrimSpace(line)))
	r.FieldsPerRecord = -1
	record, err := r.Read()
	if err != nil {
		return DatasetRights{}, fmt.Errorf("index line: %w: %v", common.ErrMalformedRecord, err)
	}
	if len(record) < indexFieldCount {
		return DatasetRights{}, fmt.Errorf("index line: %w: got %d fields, want %d",
			common.ErrMalformedRecord, len(record), indexFieldCount)
	}

	ds := DatasetRights{
		Available: strings.TrimSpace(record[idxAvailable]),
		Depositor: strings.TrimSpace(record[idxDepositor]),
	}

	ds.Category = rights.NoAccess
	matched := false
	for _, tok := range strings.Split(record[idxRights], ",") {
		if c, ok := rights.ParseCategory(tok); ok {
			ds.Category = c
			matched = true
			break
		}
	}
	if !matched {
		log.Warn(ctx, "no known access category in index answer, assuming most restrictive",
			"dataset", record[idxDatasetID], "rights", record[idxRights])
	}

	return ds, nil
}
