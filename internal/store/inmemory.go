package store

import (
	"context"
	"fmt"

	"github.com/edtke/archivecheck/internal/common"
	"github.com/edtke/archivecheck/internal/models"
)

type fileKey struct {
	doi  string
	path string
	seq  int
}

// InMemoryStore is a map-backed ExpectedStore enforcing the same uniqueness
// constraints as the Postgres schema. Used in tests and dry runs.
type InMemoryStore struct {
	Files    []*models.ExpectedFile
	Datasets []*models.ExpectedDataset

	fileKeys map[fileKey]struct{}
	doiKeys  map[string]struct{}
	nextID   int64
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		fileKeys: map[fileKey]struct{}{},
		doiKeys:  map[string]struct{}{},
	}
}

func (s *InMemoryStore) CreateFile(ctx context.Context, f *models.ExpectedFile) error {
	k := fileKey{doi: f.DOI, path: f.ExpectedPath, seq: f.DuplicateSequence}
	if _, ok := s.fileKeys[k]; ok {
		return fmt.Errorf("expected file %s %s: %w", f.DOI, f.ExpectedPath, common.ErrUniqueViolation)
	}
	s.nextID++
	f.ID = s.nextID
	s.fileKeys[k] = struct{}{}
	cp := *f
	s.Files = append(s.Files, &cp)
	return nil
}

func (s *InMemoryStore) CreateDataset(ctx context.Context, d *models.ExpectedDataset) error {
	if _, ok := s.doiKeys[d.DOI]; ok {
		return fmt.Errorf("expected dataset %s: %w", d.DOI, common.ErrUniqueViolation)
	}
	s.doiKeys[d.DOI] = struct{}{}
	cp := *d
	s.Datasets = append(s.Datasets, &cp)
	return nil
}

func (s *InMemoryStore) DeleteByDOI(ctx context.Context, doi string) error {
	files := s.Files[:0]
	for _, f := range s.Files {
		if f.DOI == doi {
			delete(s.fileKeys, fileKey{doi: f.DOI, path: f.ExpectedPath, seq: f.DuplicateSequence})
			continue
		}
		files = append(files, f)
	}
	s.Files = files

	datasets := s.Datasets[:0]
	for _, d := range s.Datasets {
		if d.DOI == doi {
			delete(s.doiKeys, d.DOI)
			continue
		}
		datasets = append(datasets, d)
	}
	s.Datasets = datasets
	return nil
}
