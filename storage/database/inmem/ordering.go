package inmemdb

import (
	"sort"
	"strings"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/person"
)

// personFields are the fields persons can be ordered by.
var personFields = map[string]func(a, b person.Base) int{
	"firstname": func(a, b person.Base) int {
		return strings.Compare(strings.ToLower(a.Firstname), strings.ToLower(b.Firstname))
	},
	"lastname": func(a, b person.Base) int {
		return strings.Compare(strings.ToLower(a.Lastname), strings.ToLower(b.Lastname))
	},
	"created_at": func(a, b person.Base) int { return compareTimes(a, b, false) },
	"updated_at": func(a, b person.Base) int { return compareTimes(a, b, true) },
}

func compareTimes(a, b person.Base, updated bool) int {
	ta, tb := a.CreatedAt, b.CreatedAt
	if updated {
		ta, tb = a.UpdatedAt, b.UpdatedAt
	}
	switch {
	case ta.Before(tb):
		return -1
	case ta.After(tb):
		return 1
	}
	return 0
}

func checkOrdering(ordering []core.DBOrdering) error {
	for _, ord := range ordering {
		if _, ok := personFields[ord.Field]; !ok {
			return core.NewValidationError(nil, core.FieldError{Field: "ordering", Error: "cannot order by " + ord.Field})
		}
	}
	return nil
}

// sortPersons sorts n persons by ordering, then by creation time and ID.
func sortPersons(n int, base func(i int) person.Base, swap func(i, j int), ordering []core.DBOrdering) error {
	if err := checkOrdering(ordering); err != nil {
		return err
	}
	ords := make([]core.DBOrdering, 0, len(ordering)+1)
	ords = append(ords, ordering...)
	ords = append(ords, core.DBOrdering{Field: "created_at", Ascending: true})
	sort.Sort(personSorter{n: n, base: base, swap: swap, ordering: ords})
	return nil
}

type personSorter struct {
	n        int
	base     func(i int) person.Base
	swap     func(i, j int)
	ordering []core.DBOrdering
}

func (s personSorter) Len() int      { return s.n }
func (s personSorter) Swap(i, j int) { s.swap(i, j) }

func (s personSorter) Less(i, j int) bool {
	a, b := s.base(i), s.base(j)
	for _, ord := range s.ordering {
		c := personFields[ord.Field](a, b)
		if c == 0 {
			continue
		}
		if ord.Ascending {
			return c < 0
		}
		return c > 0
	}
	return a.ID < b.ID
}
