package deploy

import (
	"fmt"
	"strconv"
	"strings"
)

// GroupID is a card id split once, at load time, into its kind prefix and
// numeric ordinal ("DG070" -> Kind "DG", Ordinal 70). The raw text is kept so
// ids round-trip unchanged through snapshots.
type GroupID struct {
	Kind    string
	Ordinal int
	raw     string
}

// PlaceholderID is the custom, non-catalog enemy group. It never returns to
// the deployment hand when defeated.
var PlaceholderID = MustParseGroupID("DG070")

// ParseGroupID parses ids of the form <letters><digits>. Ids without a
// numeric suffix get Ordinal -1 and sort first.
func ParseGroupID(s string) (GroupID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return GroupID{}, fmt.Errorf("empty group id")
	}
	i := len(s)
	for i > 0 && s[i-1] >= '0' && s[i-1] <= '9' {
		i--
	}
	if i == len(s) {
		return GroupID{Kind: s, Ordinal: -1, raw: s}, nil
	}
	n, err := strconv.Atoi(s[i:])
	if err != nil {
		return GroupID{}, fmt.Errorf("group id %q: %w", s, err)
	}
	return GroupID{Kind: s[:i], Ordinal: n, raw: s}, nil
}

// MustParseGroupID is ParseGroupID for ids known to be valid. Panics otherwise.
func MustParseGroupID(s string) GroupID {
	id, err := ParseGroupID(s)
	if err != nil {
		panic(err)
	}
	return id
}

func (g GroupID) String() string {
	return g.raw
}

// IsZero reports whether the id was never set.
func (g GroupID) IsZero() bool {
	return g.raw == ""
}

func (g GroupID) MarshalText() ([]byte, error) {
	return []byte(g.raw), nil
}

func (g *GroupID) UnmarshalText(b []byte) error {
	id, err := ParseGroupID(string(b))
	if err != nil {
		return err
	}
	*g = id
	return nil
}

// ParseGroupIDs parses a list of raw ids, failing on the first bad one.
func ParseGroupIDs(raw []string) ([]GroupID, error) {
	ids := make([]GroupID, 0, len(raw))
	for _, s := range raw {
		id, err := ParseGroupID(s)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
