package export

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// collisionKey maps a destination-relative path to the identity it would
// have on a case-insensitive, Unicode-normalizing filesystem (APFS, NTFS):
// forward slashes, NFC normalization, lowercase. Two distinct paths with
// equal keys may alias the same on-disk file, so their writes must be
// serialized.
func collisionKey(rel string) string {
	return strings.ToLower(norm.NFC.String(filepath.ToSlash(rel)))
}
