// Package resolve parses dataset-level default rights and per-file rights
// overrides out of the two legacy metadata encodings: the descriptive XML
// documents stored next to each bag, and the single-line tabular answers of
// the dataset index service. Both encodings resolve to the same
// rights.FileRights / rights.AccessCategory values.
package resolve

import "github.com/edtke/archivecheck/internal/rights"

// DatasetRights is the dataset-level outcome of either resolver.
type DatasetRights struct {
	Category  rights.AccessCategory
	Available string // raw availability date, embargo candidate
	Depositor string

	LicenseURL  string
	LicenseName string
}

// Defaults builds the dataset-wide default file rights: the category's
// accessibility token, open visibility, and the availability date as embargo
// when it lies in the future.
func (d DatasetRights) Defaults() rights.FileRights {
	var r rights.FileRights
	r.SetFileRights(d.Category)
	r.SetEmbargoDate(d.Available)
	return r
}

// licenseNames maps known license URIs to display names. Unknown URIs keep
// an empty name; the URI itself is still recorded.
var licenseNames = map[string]string{
	"http://creativecommons.org/publicdomain/zero/1.0": "CC0 1.0",
	"http://creativecommons.org/licenses/by/4.0":       "CC BY 4.0",
	"http://creativecommons.org/licenses/by-sa/4.0":    "CC BY-SA 4.0",
	"http://opensource.org/licenses/MIT":               "MIT",
}
