package legacy

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/edtke/archivecheck/internal/common"
)

// Accounts maps legacy depositor names to their replacement account names.
// Lookup is exact-match; unknown names pass through unchanged.
type Accounts map[string]string

// Substitute returns the replacement for name, or name itself when no
// mapping exists.
func (a Accounts) Substitute(name string) string {
	if repl, ok := a[name]; ok {
		return repl
	}
	return name
}

// ReadAccounts parses the two-column substitution CSV (legacy,replacement),
// no header.
func ReadAccounts(r io.Reader) (Accounts, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 2

	accounts := Accounts{}
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("account substitution csv: %w: %v", common.ErrMalformedRecord, err)
		}
		accounts[strings.TrimSpace(row[0])] = strings.TrimSpace(row[1])
	}
	return accounts, nil
}
