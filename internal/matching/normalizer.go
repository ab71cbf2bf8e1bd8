package matching

import (
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// AliasTable maps a canonical skill to the variants that should resolve to it.
type AliasTable map[string][]string

// SkillSet is a set of canonical skills.
type SkillSet map[string]struct{}

func (s SkillSet) Has(skill string) bool {
	_, ok := s[skill]
	return ok
}

func (s SkillSet) Len() int {
	return len(s)
}

// Sorted returns the members in lexical order.
func (s SkillSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Overlap counts how many members of other are also in s.
func (s SkillSet) Overlap(other SkillSet) int {
	n := 0
	for k := range other {
		if s.Has(k) {
			n++
		}
	}
	return n
}

// Normalizer resolves skill tokens to canonical form. It is immutable once
// built and safe for concurrent use.
type Normalizer struct {
	canonical map[string]struct{}
	aliases   map[string]string
}

// NewNormalizer indexes table. When an alias is listed under more than one
// canonical key the key that sorts first owns it; aliases that are themselves
// canonical keys are ignored.
func NewNormalizer(table AliasTable) *Normalizer {
	n := &Normalizer{
		canonical: make(map[string]struct{}, len(table)),
		aliases:   make(map[string]string),
	}

	keys := make([]string, 0, len(table))
	byKey := make(map[string][]string, len(table))
	for k, variants := range table {
		ck := foldToken(k)
		if ck == "" {
			continue
		}
		if _, seen := byKey[ck]; !seen {
			keys = append(keys, ck)
		}
		byKey[ck] = append(byKey[ck], variants...)
		n.canonical[ck] = struct{}{}
	}
	sort.Strings(keys)

	for _, ck := range keys {
		for _, v := range byKey[ck] {
			a := foldToken(v)
			if a == "" {
				continue
			}
			if _, isKey := n.canonical[a]; isKey {
				continue
			}
			if _, taken := n.aliases[a]; taken {
				continue
			}
			n.aliases[a] = ck
		}
	}
	return n
}

// NormalizeSkill maps one token to its canonical form. Unknown tokens come
// back lowercased and trimmed.
func (n *Normalizer) NormalizeSkill(token string) string {
	t := foldToken(token)
	if _, ok := n.canonical[t]; ok {
		return t
	}
	if c, ok := n.aliases[t]; ok {
		return c
	}
	return t
}

var listSeparators = strings.NewReplacer(".", " ", "_", " ")

// NormalizeList cleans each raw token, drops empties and returns the set of
// canonical skills.
func (n *Normalizer) NormalizeList(raw []string) SkillSet {
	out := make(SkillSet, len(raw))
	for _, r := range raw {
		cleaned := strings.Join(strings.Fields(listSeparators.Replace(r)), " ")
		if cleaned == "" {
			continue
		}
		out[n.NormalizeSkill(cleaned)] = struct{}{}
	}
	return out
}

// Size reports the number of canonical skills known to the normalizer.
func (n *Normalizer) Size() int {
	return len(n.canonical)
}

func foldToken(s string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFC.String(s)))
}
