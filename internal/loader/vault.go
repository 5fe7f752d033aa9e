package loader

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/edtke/archivecheck/internal/bags"
	"github.com/edtke/archivecheck/internal/common"
	"github.com/edtke/archivecheck/internal/fetch"
	"github.com/edtke/archivecheck/internal/logging"
	"github.com/edtke/archivecheck/internal/models"
	"github.com/edtke/archivecheck/internal/resolve"
	"github.com/edtke/archivecheck/internal/rights"
	"github.com/edtke/archivecheck/internal/store"
)

// VaultLoader derives expected records from the bag store. Given one bag id
// it resolves the unit's full version chain, orders it, and derives every
// chain element with that element's own DOI.
type VaultLoader struct {
	Deps
	Fetcher fetch.Fetcher

	// BaseURL is the bag store root; member documents live under
	// BaseURL/bags/<uuid>/..., the chain lookup under BaseURL/bag-sequence.
	BaseURL string
}

// Load processes one bag store unit to completion.
func (l *VaultLoader) Load(ctx context.Context, bagID string) error {
	chain, err := l.Chain(ctx, bagID)
	if err != nil {
		return err
	}
	return l.LoadChain(ctx, chain)
}

// Chain resolves and orders the version chain containing bagID. An unknown
// bag yields an empty chain, not an error. The batch driver uses the member
// DOIs to clear previously derived records before re-deriving.
func (l *VaultLoader) Chain(ctx context.Context, bagID string) ([]models.BagInfo, error) {
	if _, err := uuid.Parse(bagID); err != nil {
		return nil, fmt.Errorf("bag id %q: %w", bagID, common.ErrMalformedRecord)
	}
	log := l.Log.With("bag", bagID)

	chain, err := l.resolveChain(ctx, bagID, log)
	if err != nil {
		return nil, err
	}
	if len(chain) == 0 {
		log.Info(ctx, "bag not found in store, nothing to derive")
		return nil, nil
	}
	bags.Sort(chain)
	return chain, nil
}

// LoadChain derives every element of an already ordered chain.
func (l *VaultLoader) LoadChain(ctx context.Context, chain []models.BagInfo) error {
	for _, member := range chain {
		if err := l.loadVersion(ctx, member, len(chain)); err != nil {
			return err
		}
	}
	return nil
}

// resolveChain looks the version chain up and fetches each member's
// bag-info. The lookup does not guarantee order; the caller re-sorts.
func (l *VaultLoader) resolveChain(ctx context.Context, bagID string, log logging.Logger) ([]models.BagInfo, error) {
	body, err := l.Fetcher.Fetch(ctx, l.BaseURL+"/bag-sequence?contains="+bagID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("bag %s: %w", bagID, err)
	}

	var chain []models.BagInfo
	for _, id := range strings.Fields(body) {
		if _, err := uuid.Parse(id); err != nil {
			log.Warn(ctx, "ignoring malformed member id in bag sequence", "member", id)
			continue
		}
		infoBody, err := l.Fetcher.Fetch(ctx, l.memberRef(id, "bag-info.txt"))
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				log.Warn(ctx, "chain member without bag-info, skipping", "member", id)
				continue
			}
			return nil, fmt.Errorf("bag %s: %w", id, err)
		}
		info, err := bags.ParseBagInfo(id, infoBody)
		if err != nil {
			return nil, err
		}
		chain = append(chain, info)
	}
	return chain, nil
}

// loadVersion derives one chain element: payload files from the manifest,
// rights from the descriptive metadata, placeholders, and the dataset row.
func (l *VaultLoader) loadVersion(ctx context.Context, member models.BagInfo, versions int) error {
	log := l.Log.With("bag", member.BagID, "doi", member.DOI)

	ds, perFile, err := l.descriptiveRights(ctx, member, log)
	if err != nil {
		return err
	}
	defaults := ds.Defaults()

	entries, err := l.manifest(ctx, member, log)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		fact := fileFact{
			legacyPath: strings.TrimPrefix(entry.Path, "data/"),
			sha1:       entry.SHA1,
			fileRights: perFile[entry.Path],
		}
		expected := buildExpectedFile(member.DOI, fact, false, defaults)
		if err := store.RetriedSave(ctx, l.Store, l.Log, expected); err != nil {
			return fmt.Errorf("bag %s file %s: %w", member.BagID, entry.Path, err)
		}
	}

	if err := savePlaceholders(ctx, l.Deps, member.DOI, vaultMigrationFiles, defaults); err != nil {
		return fmt.Errorf("bag %s: %w", member.BagID, err)
	}
	return saveDataset(ctx, l.Deps, member.DOI, ds, versions, member.Created, false)
}

func (l *VaultLoader) descriptiveRights(ctx context.Context, member models.BagInfo, log logging.Logger) (resolve.DatasetRights, map[string]rights.FileRights, error) {
	body, err := l.Fetcher.Fetch(ctx, l.memberRef(member.BagID, "metadata/dataset.xml"))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			log.Warn(ctx, "bag without descriptive metadata, assuming most restrictive rights")
			return resolve.DatasetRights{Category: rights.NoAccess}, nil, nil
		}
		return resolve.DatasetRights{}, nil, fmt.Errorf("bag %s: %w", member.BagID, err)
	}
	ds, perFile, err := resolve.ResolveDescriptive(ctx, body, log)
	if err != nil {
		return resolve.DatasetRights{}, nil, fmt.Errorf("bag %s: %w", member.BagID, err)
	}
	return ds, perFile, nil
}

func (l *VaultLoader) manifest(ctx context.Context, member models.BagInfo, log logging.Logger) ([]bags.ManifestEntry, error) {
	body, err := l.Fetcher.Fetch(ctx, l.memberRef(member.BagID, "manifest-sha1.txt"))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			log.Info(ctx, "bag without payload manifest, placeholder files only")
			return nil, nil
		}
		return nil, fmt.Errorf("bag %s: %w", member.BagID, err)
	}
	entries, err := bags.ParseManifest(body)
	if err != nil {
		return nil, fmt.Errorf("bag %s: %w", member.BagID, err)
	}
	return entries, nil
}

func (l *VaultLoader) memberRef(bagID, name string) string {
	return l.BaseURL + "/bags/" + bagID + "/" + name
}
