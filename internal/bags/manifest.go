package bags

import (
	"fmt"
	"strings"

	"github.com/edtke/archivecheck/internal/common"
)

// ManifestEntry is one payload line of a bag's manifest-sha1.txt.
type ManifestEntry struct {
	SHA1 string
	Path string
}

// ParseManifest reads tab-separated "sha1<TAB>path" lines, one per payload
// file, preserving line order. Empty lines are skipped.
func ParseManifest(body string) ([]ManifestEntry, error) {
	var entries []ManifestEntry
	for i, line := range strings.Split(body, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		sha, path, ok := strings.Cut(line, "\t")
		if !ok || strings.TrimSpace(sha) == "" || strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("manifest line %d: %w", i+1, common.ErrMalformedRecord)
		}
		entries = append(entries, ManifestEntry{
			SHA1: strings.TrimSpace(sha),
			Path: strings.TrimSpace(path),
		})
	}
	return entries, nil
}
