package releases

import (
	"sort"

	gerr "gamestats/internal/errors"
)

// Tally counts names and remembers the order they were first seen.
type Tally struct {
	counts map[string]int
	order  []string
}

func NewTally() *Tally {
	return &Tally{counts: make(map[string]int)}
}

func (t *Tally) Add(name string) {
	if _, ok := t.counts[name]; !ok {
		t.order = append(t.order, name)
	}
	t.counts[name]++
}

func (t *Tally) Get(name string) int { return t.counts[name] }

// Len is the number of distinct names.
func (t *Tally) Len() int { return len(t.order) }

// Total is the sum of all counts.
func (t *Tally) Total() int {
	sum := 0
	for _, c := range t.counts {
		sum += c
	}
	return sum
}

// Names returns the names in first-seen order.
func (t *Tally) Names() []string {
	return append([]string(nil), t.order...)
}

// Map returns a copy of the counts.
func (t *Tally) Map() map[string]int {
	out := make(map[string]int, len(t.counts))
	for k, v := range t.counts {
		out[k] = v
	}
	return out
}

// Max returns the highest count. Ties go to the name seen first.
func (t *Tally) Max() (Entry, error) {
	if len(t.order) == 0 {
		return Entry{}, gerr.NewEmptyAggregate("tally")
	}
	best := Entry{Name: t.order[0], Count: t.counts[t.order[0]]}
	for _, name := range t.order[1:] {
		if c := t.counts[name]; c > best.Count {
			best = Entry{Name: name, Count: c}
		}
	}
	return best, nil
}

// Top returns up to n entries by descending count, ties in first-seen order.
func (t *Tally) Top(n int) []Entry {
	out := make([]Entry, 0, len(t.order))
	for _, name := range t.order {
		out = append(out, Entry{Name: name, Count: t.counts[name]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if n >= 0 && n < len(out) {
		out = out[:n]
	}
	return out
}

// Count folds records into a new tally using field.
func Count(records []Record, field Field) *Tally {
	t := NewTally()
	for _, r := range records {
		for _, name := range field(r) {
			t.Add(name)
		}
	}
	return t
}

// FieldFor maps a list column name to its record accessor.
func FieldFor(column string) (Field, error) {
	switch column {
	case ColumnDevelopers:
		return func(r Record) []string { return r.Developers }, nil
	case ColumnPublishers:
		return func(r Record) []string { return r.Publishers }, nil
	default:
		return nil, gerr.NewInvalidInput("column cannot be tallied", "use Developer(s) or Publisher(s)", map[string]any{"column": column})
	}
}
