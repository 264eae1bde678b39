// Package listview implements client-side search, sort and pagination over
// rows already loaded in memory.
//
// A Table holds the inputs (rows, search term, sort key and direction, page
// size, page). Outputs are recomputed from the inputs on every read, so they
// can never be stale. Changing any input other than the page resets the page
// to 1.
//
// A Table is not safe for concurrent use.
package listview

import (
	"errors"
	"math"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"github.com/mbolis/survey-admin/model"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

const DefaultPageSize = 20

var ErrInvalidPageSize = errors.New("page size must be positive")

// ParseDirection accepts "asc" and "desc", case-insensitively.
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc":
		return Asc, true
	case "desc":
		return Desc, true
	}
	return "", false
}

type Sort struct {
	Key string
	Dir Direction
}

type Options struct {
	// SearchKeys restricts search to these dot-paths. When empty, the whole
	// serialized row is searched.
	SearchKeys []string
	// DateKeys are compared as timestamps when sorting.
	DateKeys        []string
	DefaultSort     *Sort
	InitialPageSize int
	// Language drives string collation. Defaults to English.
	Language language.Tag
}

type Table struct {
	searchKeys []string
	dateKeys   map[string]bool
	collator   *collate.Collator

	rows       []model.Row
	searchTerm string
	sortKey    string
	sortDir    Direction
	page       int
	pageSize   int
}

func New(rows []model.Row, opts Options) *Table {
	lang := opts.Language
	if lang == language.Und {
		lang = language.English
	}
	t := &Table{
		searchKeys: opts.SearchKeys,
		dateKeys:   make(map[string]bool, len(opts.DateKeys)),
		collator:   collate.New(lang),
		rows:       rows,
		sortDir:    Desc,
		page:       1,
		pageSize:   opts.InitialPageSize,
	}
	for _, k := range opts.DateKeys {
		t.dateKeys[k] = true
	}
	if opts.DefaultSort != nil {
		t.sortKey = opts.DefaultSort.Key
		if opts.DefaultSort.Dir != "" {
			t.sortDir = opts.DefaultSort.Dir
		}
	}
	if t.pageSize <= 0 {
		t.pageSize = DefaultPageSize
	}
	return t
}

func (t *Table) Rows() []model.Row  { return t.rows }
func (t *Table) SearchTerm() string { return t.searchTerm }
func (t *Table) SortKey() string    { return t.sortKey }
func (t *Table) SortDir() Direction { return t.sortDir }
func (t *Table) Page() int          { return t.page }
func (t *Table) PageSize() int      { return t.pageSize }
func (t *Table) ResetPage()         { t.page = 1 }

func (t *Table) SetRows(rows []model.Row) {
	t.rows = rows
	t.page = 1
}

func (t *Table) SetSearchTerm(term string) {
	if term != t.searchTerm {
		t.searchTerm = term
		t.page = 1
	}
}

func (t *Table) SetSortKey(key string) {
	if key != t.sortKey {
		t.sortKey = key
		t.page = 1
	}
}

func (t *Table) SetSortDir(dir Direction) {
	if dir != t.sortDir {
		t.sortDir = dir
		t.page = 1
	}
}

func (t *Table) SetPageSize(n int) error {
	if n <= 0 {
		return ErrInvalidPageSize
	}
	if n != t.pageSize {
		t.pageSize = n
		t.page = 1
	}
	return nil
}

// SetPage moves to page n. Pages past the end are allowed and show no rows.
func (t *Table) SetPage(n int) {
	if n < 1 {
		n = 1
	}
	t.page = n
}

// SetSort flips the direction when key is already the sort key, otherwise
// sorts ascending by key.
func (t *Table) SetSort(key string) {
	if key == t.sortKey {
		if t.sortDir == Asc {
			t.SetSortDir(Desc)
		} else {
			t.SetSortDir(Asc)
		}
		return
	}
	t.SetSortKey(key)
	t.SetSortDir(Asc)
}

func (t *Table) Filtered() []model.Row {
	term := strings.ToLower(strings.TrimSpace(t.searchTerm))
	if term == "" {
		return t.rows
	}

	out := make([]model.Row, 0, len(t.rows))
	for _, row := range t.rows {
		if t.matches(row, term) {
			out = append(out, row)
		}
	}
	return out
}

func (t *Table) matches(row model.Row, term string) bool {
	if len(t.searchKeys) == 0 {
		b, err := json.MarshalNoEscape(row)
		if err != nil {
			return false
		}
		return strings.Contains(strings.ToLower(string(b)), term)
	}
	for _, k := range t.searchKeys {
		v, _ := row.Get(k)
		if v != nil && strings.Contains(strings.ToLower(model.String(v)), term) {
			return true
		}
	}
	return false
}

// Sorted returns a sorted copy of Filtered. Ties keep their filtered order.
func (t *Table) Sorted() []model.Row {
	filtered := t.Filtered()
	rows := make([]model.Row, len(filtered))
	copy(rows, filtered)
	if t.sortKey == "" {
		return rows
	}

	key := t.sortKey
	dir := -1
	if t.sortDir == Asc {
		dir = 1
	}
	isDate := t.dateKeys[key]

	sort.SliceStable(rows, func(i, j int) bool {
		av, _ := rows[i].Get(key)
		bv, _ := rows[j].Get(key)
		return compare(av, bv, dir, isDate, t.collator) < 0
	})
	return rows
}

func (t *Table) Total() int {
	return len(t.Sorted())
}

func (t *Table) TotalPages() int {
	return totalPages(t.Total(), t.pageSize)
}

func totalPages(total, pageSize int) int {
	return int(math.Max(1, math.Ceil(float64(total)/float64(pageSize))))
}

// Paginated returns the rows of the current page. The window is clamped to
// the end of the sorted rows.
func (t *Table) Paginated() []model.Row {
	return window(t.Sorted(), t.page, t.pageSize)
}

func window(rows []model.Row, page, pageSize int) []model.Row {
	start := (page - 1) * pageSize
	if start >= len(rows) {
		return []model.Row{}
	}
	end := start + pageSize
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}

// View is a rendering snapshot of the table.
type View struct {
	Rows       []model.Row `json:"rows"`
	Total      int         `json:"total"`
	TotalPages int         `json:"totalPages"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	SortKey    string      `json:"sortKey"`
	SortDir    Direction   `json:"sortDir"`
	SearchTerm string      `json:"searchTerm"`
}

// View computes every output from a single sort pass.
func (t *Table) View() View {
	sorted := t.Sorted()
	return View{
		Rows:       window(sorted, t.page, t.pageSize),
		Total:      len(sorted),
		TotalPages: totalPages(len(sorted), t.pageSize),
		Page:       t.page,
		PageSize:   t.pageSize,
		SortKey:    t.sortKey,
		SortDir:    t.sortDir,
		SearchTerm: t.searchTerm,
	}
}
