// Package listing filters, sorts and selects records client-side, the way
// every management screen presents its table.
package listing

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Direction is a sort order.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// Compare orders two records; it returns a negative number when a sorts
// before b, zero when equal and a positive number otherwise.
type Compare[T any] func(a, b T) int

// Collection holds one page worth of records together with the current
// query, sort and selection.
type Collection[T any] struct {
	items    []T
	id       func(T) string
	search   func(T) []string
	sortKeys map[string]Compare[T]

	query    string
	sortKey  string
	sortDir  Direction
	selected map[string]struct{}
}

// Option configures a Collection.
type Option[T any] func(*Collection[T])

// WithSearch declares the fields matched against the query.
func WithSearch[T any](fields func(T) []string) Option[T] {
	return func(c *Collection[T]) {
		c.search = fields
	}
}

// WithSortKey registers a comparator under a key.
func WithSortKey[T any](key string, cmp Compare[T]) Option[T] {
	return func(c *Collection[T]) {
		c.sortKeys[key] = cmp
	}
}

// WithDefaultSort sets the initial sort key and direction.
func WithDefaultSort[T any](key string, dir Direction) Option[T] {
	return func(c *Collection[T]) {
		c.sortKey = key
		c.sortDir = dir
	}
}

// New returns a collection over items. id must return a unique identifier.
func New[T any](items []T, id func(T) string, opts ...Option[T]) *Collection[T] {
	c := &Collection[T]{
		id:       id,
		sortKeys: make(map[string]Compare[T]),
		selected: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.Replace(items)
	return c
}

// Replace swaps the records after a refresh. Selected ids that no longer
// exist are dropped.
func (c *Collection[T]) Replace(items []T) {
	c.items = append([]T(nil), items...)

	present := make(map[string]struct{}, len(items))
	for _, item := range c.items {
		present[c.id(item)] = struct{}{}
	}
	for id := range c.selected {
		if _, ok := present[id]; !ok {
			delete(c.selected, id)
		}
	}
}

// Len returns the number of records, ignoring the query.
func (c *Collection[T]) Len() int {
	return len(c.items)
}

// SetQuery filters the view to records with a field containing q, ignoring
// case and surrounding whitespace.
func (c *Collection[T]) SetQuery(q string) {
	c.query = strings.ToLower(strings.TrimSpace(q))
}

// SortBy sets the sort key and direction.
func (c *Collection[T]) SortBy(key string, dir Direction) error {
	if _, ok := c.sortKeys[key]; !ok {
		return fmt.Errorf("unknown sort key %q (available: %s)", key, strings.Join(c.SortKeys(), ", "))
	}
	c.sortKey = key
	c.sortDir = dir
	return nil
}

// ToggleSort flips the direction when key is already the sort key and sorts
// ascending by key otherwise.
func (c *Collection[T]) ToggleSort(key string) error {
	if key == c.sortKey {
		if c.sortDir == Ascending {
			c.sortDir = Descending
		} else {
			c.sortDir = Ascending
		}
		return nil
	}
	return c.SortBy(key, Ascending)
}

// Sort returns the current sort key and direction.
func (c *Collection[T]) Sort() (string, Direction) {
	return c.sortKey, c.sortDir
}

// SortKeys returns the registered sort keys in alphabetical order.
func (c *Collection[T]) SortKeys() []string {
	keys := make([]string, 0, len(c.sortKeys))
	for k := range c.sortKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// View returns the records matching the query in sort order.
func (c *Collection[T]) View() []T {
	out := make([]T, 0, len(c.items))
	for _, item := range c.items {
		if c.matches(item) {
			out = append(out, item)
		}
	}

	cmp, ok := c.sortKeys[c.sortKey]
	if !ok {
		return out
	}
	sort.SliceStable(out, func(i, j int) bool {
		r := cmp(out[i], out[j])
		if c.sortDir == Descending {
			return r > 0
		}
		return r < 0
	})
	return out
}

func (c *Collection[T]) matches(item T) bool {
	if c.query == "" || c.search == nil {
		return true
	}
	for _, field := range c.search(item) {
		if strings.Contains(strings.ToLower(field), c.query) {
			return true
		}
	}
	return false
}

// Toggle adds id to the selection, or removes it when already selected.
func (c *Collection[T]) Toggle(id string) {
	if _, ok := c.selected[id]; ok {
		delete(c.selected, id)
		return
	}
	c.selected[id] = struct{}{}
}

// Select adds ids to the selection. Unknown ids are ignored.
func (c *Collection[T]) Select(ids ...string) {
	for _, item := range c.items {
		itemID := c.id(item)
		for _, id := range ids {
			if id == itemID {
				c.selected[id] = struct{}{}
			}
		}
	}
}

// SelectVisible selects every record matching the current query.
func (c *Collection[T]) SelectVisible() {
	for _, item := range c.View() {
		c.selected[c.id(item)] = struct{}{}
	}
}

// ClearSelection empties the selection.
func (c *Collection[T]) ClearSelection() {
	c.selected = make(map[string]struct{})
}

// IsSelected reports whether id is selected.
func (c *Collection[T]) IsSelected(id string) bool {
	_, ok := c.selected[id]
	return ok
}

// Selected returns the selected ids in record order.
func (c *Collection[T]) Selected() []string {
	out := make([]string, 0, len(c.selected))
	for _, item := range c.items {
		id := c.id(item)
		if _, ok := c.selected[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// IDs returns every record id in record order.
func (c *Collection[T]) IDs() []string {
	out := make([]string, 0, len(c.items))
	for _, item := range c.items {
		out = append(out, c.id(item))
	}
	return out
}

var (
	collatorMu sync.Mutex
	collator   = collate.New(language.Und, collate.IgnoreCase)
)

// CompareText orders strings with locale-aware collation, so Arabic and Latin
// names sort the way a reader expects.
func CompareText(a, b string) int {
	collatorMu.Lock()
	defer collatorMu.Unlock()
	return collator.CompareString(a, b)
}

// ByText builds a comparator over a string field.
func ByText[T any](field func(T) string) Compare[T] {
	return func(a, b T) int {
		return CompareText(field(a), field(b))
	}
}

// ByInt builds a comparator over an integer field.
func ByInt[T any](field func(T) int) Compare[T] {
	return func(a, b T) int {
		x, y := field(a), field(b)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	}
}
