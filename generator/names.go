package generator

import "strings"

type Gender string

const (
	Male      Gender = "male"
	Female    Gender = "female"
	NonBinary Gender = "non-binary"
)

// Participant is a suggested persona name for the prompt.
type Participant struct {
	Name   string `json:"name"`
	Gender Gender `json:"gender"`
}

// NamePool returns the first pool whose match list hits the location, else the default pool.
func (t *Tables) NamePool(location string) (NamePool, bool) {
	loc := strings.ToLower(location)
	var fallback *NamePool
	for i, p := range t.NamePools {
		if containsAny(loc, p.Match) {
			return p, true
		}
		if p.Default && fallback == nil {
			fallback = &t.NamePools[i]
		}
	}
	if fallback == nil {
		return NamePool{}, false
	}
	return *fallback, true
}

// SuggestNames assigns names in male, female, non-binary order, cycling each
// pool. Surnames continue across groups so nobody shares a full name until the
// surname pool wraps.
func (t *Tables) SuggestNames(s Study) []Participant {
	pool, ok := t.NamePool(s.Location)
	if !ok {
		return nil
	}

	out := make([]Participant, 0, s.Male+s.Female+s.NonBinary)
	add := func(first []string, gender Gender, n int) {
		for i := 0; i < n; i++ {
			surname := pool.Surnames[len(out)%len(pool.Surnames)]
			out = append(out, Participant{
				Name:   first[i%len(first)] + " " + surname,
				Gender: gender,
			})
		}
	}
	add(pool.Male, Male, s.Male)
	add(pool.Female, Female, s.Female)
	add(pool.Neutral, NonBinary, s.NonBinary)
	return out
}

// FirstNames returns the first word of each participant name.
func FirstNames(ps []Participant) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		if first, _, _ := strings.Cut(p.Name, " "); first != "" {
			out = append(out, first)
		}
	}
	return out
}
