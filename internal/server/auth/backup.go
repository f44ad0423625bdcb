package auth

import (
	"strings"

	"github.com/saireecmpo/portal/internal/common"
)

// BackupCodeCount is the size of a freshly issued recovery set.
const BackupCodeCount = 10

// GenerateBackupCodes returns n recovery codes, each eight uppercase hex
// characters from four random bytes.
func GenerateBackupCodes(n int) ([]string, error) {
	codes := make([]string, 0, n)
	for i := 0; i < n; i++ {
		s, err := common.MakeRandHexString(4)
		if err != nil {
			return nil, err
		}
		codes = append(codes, strings.ToUpper(s))
	}
	return codes, nil
}

// NormalizeBackupCode folds user input to the stored form, so codes are
// accepted case-insensitively and with stray whitespace.
func NormalizeBackupCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
