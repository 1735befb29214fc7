// Package fingerprint detects listing changes between pipeline runs.
//
// The fingerprint covers what is showing and when: venue ids, film
// titles and screening slots. Metadata enrichment never participates,
// so a poster arriving late does not register as a schedule change.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"marquee/internal/catalog"
	"marquee/internal/fileutil"
)

// Compute returns the sha256 hex digest of the catalog's schedule.
// Venues are walked in sorted id order, films in encounter order, and
// each showtime contributes its date_time_screen key, so the digest is
// deterministic for a given schedule.
func Compute(cat *catalog.Catalog) string {
	var parts []string
	for _, id := range cat.VenueIDs() {
		parts = append(parts, id)
		for _, film := range cat.Venues[id].Films {
			parts = append(parts, film.Title)
			for _, st := range film.Showtimes {
				parts = append(parts, st.Key())
			}
		}
	}

	data, err := json.Marshal(parts)
	if err != nil {
		// A []string cannot fail to marshal.
		panic(err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Read returns the previously written fingerprint, or empty when the
// sidecar file does not exist yet.
func Read(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("read fingerprint: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Write persists the fingerprint sidecar atomically.
func Write(path, fp string) error {
	if err := fileutil.WriteFileAtomic(path, []byte(fp+"\n"), 0o644); err != nil {
		return fmt.Errorf("write fingerprint: %w", err)
	}
	return nil
}
