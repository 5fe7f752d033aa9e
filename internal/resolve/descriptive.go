package resolve

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/edtke/archivecheck/internal/common"
	"github.com/edtke/archivecheck/internal/logging"
	"github.com/edtke/archivecheck/internal/rights"
)

// ResolveDescriptive walks the descriptive metadata document of one dataset
// and returns the dataset-level rights plus the per-file overrides keyed by
// the file element's filepath attribute.
//
// The walk keeps the current file path as a local value; element names are
// matched by local name so namespace prefixes in the legacy documents do not
// matter. The dataset-level accessRights element is mandatory: its absence
// is a structural error (common.ErrMissingRights). A file element without
// rights sub-elements yields a fully empty rights.FileRights, to be filled
// by ApplyDefaults. A present accessRights element naming an unknown
// category falls back to the most restrictive one with a warning, the same
// policy as the index resolver.
func ResolveDescriptive(ctx context.Context, doc string, log logging.Logger) (DatasetRights, map[string]rights.FileRights, error) {
	var (
		ds          DatasetRights
		perFile     = map[string]rights.FileRights{}
		currentFile string
		seenRights  bool
	)

	dec := xml.NewDecoder(strings.NewReader(doc))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return ds, nil, fmt.Errorf("malformed descriptive metadata: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "file":
				currentFile = attr(t, "filepath")
				if currentFile != "" {
					perFile[currentFile] = rights.FileRights{}
				}
			case "accessRights":
				if currentFile == "" {
					s, err := charData(dec)
					if err != nil {
						return ds, nil, err
					}
					if c, ok := rights.ParseCategory(s); ok {
						ds.Category = c
					} else {
						ds.Category = rights.NoAccess
						log.Warn(ctx, "unknown access category in descriptive metadata, assuming most restrictive",
							"category", s)
					}
					seenRights = true
				}
			case "available":
				if currentFile == "" {
					s, err := charData(dec)
					if err != nil {
						return ds, nil, err
					}
					ds.Available = s
				}
			case "depositor":
				if currentFile == "" {
					s, err := charData(dec)
					if err != nil {
						return ds, nil, err
					}
					ds.Depositor = s
				}
			case "license":
				if uri := attr(t, "uri"); uri != "" && currentFile == "" {
					ds.LicenseURL = uri
					ds.LicenseName = licenseNames[uri]
				}
			case "accessibleToRights":
				if currentFile != "" {
					s, err := charData(dec)
					if err != nil {
						return ds, nil, err
					}
					fr := perFile[currentFile]
					fr.AccessibleTo = strings.TrimSpace(s)
					perFile[currentFile] = fr
				}
			case "visibleToRights":
				if currentFile != "" {
					s, err := charData(dec)
					if err != nil {
						return ds, nil, err
					}
					fr := perFile[currentFile]
					fr.VisibleTo = strings.TrimSpace(s)
					perFile[currentFile] = fr
				}
			}
		case xml.EndElement:
			if t.Name.Local == "file" {
				currentFile = ""
			}
		}
	}

	if !seenRights {
		return ds, nil, fmt.Errorf("descriptive metadata: %w", common.ErrMissingRights)
	}
	return ds, perFile, nil
}

func attr(el xml.StartElement, name string) string {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// charData reads the character content of the element just opened.
func charData(dec *xml.Decoder) (string, error) {
	var sb strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", fmt.Errorf("malformed descriptive metadata: %w", err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			sb.Write(t)
		case xml.EndElement:
			return strings.TrimSpace(sb.String()), nil
		case xml.StartElement:
			if err := dec.Skip(); err != nil {
				return "", fmt.Errorf("malformed descriptive metadata: %w", err)
			}
		}
	}
}
