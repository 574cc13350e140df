package mailer

import (
	"fmt"
	"strconv"
	"strings"
)

// ConfirmationCode derives the human-presented code for a registration id:
// PREFIX-<id zero-padded to 4>-<3-char uppercase base36 hash>. The hash is
// (id*7531 + 12345) mod 46656, left-padded with '0' to 3 characters. Existing
// printed passes depend on this exact derivation; do not change the constants.
func ConfirmationCode(prefix string, id int64) string {
	hash := strconv.FormatInt((id*7531+12345)%46656, 36)
	for len(hash) < 3 {
		hash = "0" + hash
	}
	return fmt.Sprintf("%s-%04d-%s", prefix, id, strings.ToUpper(hash))
}
