package tile

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrInvalidID = errors.New("invalid provider or style id")

// ValidateID checks that a provider or style id only uses [a-z0-9_], so the
// '-' separator in cache keys can never be ambiguous.
func ValidateID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty", ErrInvalidID)
	}
	for _, r := range id {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '_' {
			return fmt.Errorf("%w: %q", ErrInvalidID, id)
		}
	}
	return nil
}

// Key returns the cache key shared by the memory tier, the disk tier and the
// fetch queue.
//
//	grid:    <provider>-<style>-<x>-<y>-<zoom>
//	quadkey: <provider>-<style>-q<quadkey>
func Key(providerID, styleID string, a Address) string {
	var b strings.Builder
	b.WriteString(providerID)
	b.WriteByte('-')
	b.WriteString(styleID)
	b.WriteByte('-')

	switch v := a.(type) {
	case Quadkey:
		b.WriteByte('q')
		b.WriteString(string(v))
	default:
		g := a.Grid()
		b.WriteString(strconv.Itoa(g.X))
		b.WriteByte('-')
		b.WriteString(strconv.Itoa(g.Y))
		b.WriteByte('-')
		b.WriteString(strconv.Itoa(g.Z))
	}
	return b.String()
}
