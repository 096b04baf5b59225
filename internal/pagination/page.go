// Package pagination implements the offset-page envelope returned by every
// list endpoint and consumed by the client store's infinite-scroll append.
package pagination

// Page is the standard envelope for a single page of results.
type Page[T any] struct {
	Content          []T   `json:"content"`
	Number           int   `json:"number"`
	Size             int   `json:"size"`
	TotalElements    int64 `json:"totalElements"`
	TotalPages       int   `json:"totalPages"`
	NumberOfElements int   `json:"numberOfElements"`
	First            bool  `json:"first"`
	Last             bool  `json:"last"`
	Empty            bool  `json:"empty"`
}

// New builds a Page from one page of content plus the total row count.
// number is zero-based. size must be positive.
func New[T any](content []T, number, size int, total int64) Page[T] {
	if content == nil {
		content = []T{}
	}

	totalPages := int(total) / size
	if int(total)%size != 0 {
		totalPages++
	}
	if totalPages == 0 {
		totalPages = 1
	}

	return Page[T]{
		Content:          content,
		Number:           number,
		Size:             size,
		TotalElements:    total,
		TotalPages:       totalPages,
		NumberOfElements: len(content),
		First:            number == 0,
		Last:             number >= totalPages-1,
		Empty:            len(content) == 0,
	}
}

// Clamp normalizes page/size query values the way list handlers expect:
// negative pages become 0, non-positive sizes fall back to def, and sizes
// above max are capped.
func Clamp(page, size, def, max int) (int, int) {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = def
	}
	if size > max {
		size = max
	}
	return page, size
}
