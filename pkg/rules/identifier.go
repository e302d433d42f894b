package rules

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
)

// EntityID is a cross-module identifier of the form "Plugin.esp|0x0005ACE4":
// the file that defines the entity and its form id local to that file.
type EntityID struct {
	Plugin string
	FormID uint32
}

// ParseEntityID parses "plugin|formid". The form id may be hexadecimal with a
// 0x prefix or decimal. It reports false for anything else.
func ParseEntityID(s string) (EntityID, bool) {
	plugin, id, ok := strings.Cut(strings.TrimSpace(s), "|")
	if !ok {
		return EntityID{}, false
	}
	plugin = strings.TrimSpace(plugin)
	id = strings.TrimSpace(id)
	if plugin == "" || id == "" {
		return EntityID{}, false
	}

	var (
		n   uint64
		err error
	)
	if rest, hex := strings.CutPrefix(strings.ToLower(id), "0x"); hex {
		n, err = strconv.ParseUint(rest, 16, 32)
	} else {
		n, err = strconv.ParseUint(id, 10, 32)
	}
	if err != nil {
		return EntityID{}, false
	}
	return EntityID{Plugin: plugin, FormID: uint32(n)}, true
}

// String returns the canonical spelling: lower-case plugin, upper-case hex id.
func (id EntityID) String() string {
	return fmt.Sprintf("%s|0x%X", strings.ToLower(id.Plugin), id.FormID)
}

// CanonicalID normalizes s when it is an EntityID and returns it trimmed otherwise.
// Two spellings of the same entity have the same canonical form.
func CanonicalID(s string) string {
	if id, ok := ParseEntityID(s); ok {
		return id.String()
	}
	return strings.TrimSpace(s)
}

// Fold returns the case-folded form of s used for every case-insensitive
// comparison of match-keys, tags and names.
func Fold(s string) string {
	return cases.Fold().String(s)
}
