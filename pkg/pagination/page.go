// Package pagination holds the page abstraction shared by generated types.
package pagination

// Page is one page of a cursor-paginated listing. An empty NextCursor marks
// the last page.
type Page[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"nextCursor,omitempty"`
}

// HasNext reports whether another page follows.
func (p Page[T]) HasNext() bool { return p.NextCursor != "" }

// Len is the number of items on the page.
func (p Page[T]) Len() int { return len(p.Items) }

// Collect fetches pages starting at cursor until the last one and returns
// every item in order. fetch receives the cursor of the page to load; the
// first call gets the cursor passed to Collect.
func Collect[T any](cursor string, fetch func(cursor string) (Page[T], error)) ([]T, error) {
	var out []T
	for {
		p, err := fetch(cursor)
		if err != nil {
			return out, err
		}
		out = append(out, p.Items...)
		if !p.HasNext() {
			return out, nil
		}
		cursor = p.NextCursor
	}
}
