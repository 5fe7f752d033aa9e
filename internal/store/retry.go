package store

import (
	"context"
	"errors"

	"github.com/edtke/archivecheck/internal/common"
	"github.com/edtke/archivecheck/internal/logging"
	"github.com/edtke/archivecheck/internal/models"
)

// maxDuplicateSequence caps how far the saver walks the duplicate-sequence
// discriminator before giving a record up.
const maxDuplicateSequence = 10

// RetriedSave creates f, recovering from duplicate-key conflicts on
// (doi, expected_path) by incrementing the record's DuplicateSequence and
// trying again. Colliding records therefore receive sequence values 0, 1, 2,
// ... in the order they are offered. Past the cap the record is dropped with
// an error log: bounded data loss, never a crash. Any non-conflict failure
// propagates to the caller.
func RetriedSave(ctx context.Context, s ExpectedStore, log logging.Logger, f *models.ExpectedFile) error {
	for {
		err := s.CreateFile(ctx, f)
		if err == nil {
			return nil
		}
		if !errors.Is(err, common.ErrUniqueViolation) {
			return err
		}
		f.DuplicateSequence++
		if f.DuplicateSequence > maxDuplicateSequence {
			log.Error(ctx, "dropping expected file after too many duplicate-key conflicts",
				"doi", f.DOI, "path", f.ExpectedPath, "sequence", f.DuplicateSequence)
			return nil
		}
	}
}
