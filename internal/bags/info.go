package bags

import (
	"fmt"
	"strings"
	"time"

	"github.com/edtke/archivecheck/internal/common"
	"github.com/edtke/archivecheck/internal/models"
)

// Tag keys read from bag-info.txt.
const (
	tagCreated     = "Created"
	tagIsVersionOf = "Is-Version-Of"
	tagDOI         = "DOI"
	tagURN         = "URN"
)

const urnUUIDPrefix = "urn:uuid:"

var createdLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.000-07:00",
	"2006-01-02",
}

// ParseBagInfo reads the bag-info.txt tag file of one bag. Tags are
// "Key: value" lines; unknown keys are ignored. A bag without an
// Is-Version-Of tag is its own chain origin.
func ParseBagInfo(bagID, body string) (models.BagInfo, error) {
	info := models.BagInfo{BagID: bagID, BaseID: bagID}

	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			return info, fmt.Errorf("bag-info of %s: %w", bagID, common.ErrMalformedRecord)
		}
		value = strings.TrimSpace(value)

		switch strings.TrimSpace(key) {
		case tagCreated:
			created, err := parseCreated(value)
			if err != nil {
				return info, fmt.Errorf("bag-info of %s: %w", bagID, err)
			}
			info.Created = created
		case tagIsVersionOf:
			info.BaseID = strings.TrimPrefix(value, urnUUIDPrefix)
		case tagDOI:
			info.DOI = value
		case tagURN:
			info.URN = value
		}
	}
	return info, nil
}

func parseCreated(value string) (time.Time, error) {
	for _, layout := range createdLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable Created value %q: %w", value, common.ErrMalformedRecord)
}
