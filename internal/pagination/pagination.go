package pagination

// Page описывает одну страницу элементов.
type Page[T any] struct {
	Items    []T   `json:"items"`
	Page     int   `json:"page"`      // номер страницы (с 1)
	PageSize int   `json:"page_size"` // количество элементов на странице
	HasNext  bool  `json:"has_next"`
	HasPrev  bool  `json:"has_prev"`
	Total    int64 `json:"total"` // общее количество элементов
}

const defaultPageSize = 10

// Normalize приводит page/pageSize к допустимым значениям и возвращает
// limit/offset для запроса в хранилище.
func Normalize(page, pageSize int) (p, size, limit, offset int) {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if page <= 0 {
		page = 1
	}
	return page, pageSize, pageSize, (page - 1) * pageSize
}

// NewPage собирает страницу из уже ограниченного хранилищем среза items
// и общего счётчика total.
func NewPage[T any](items []T, page, pageSize int, total int64) Page[T] {
	page, pageSize, _, offset := Normalize(page, pageSize)

	if items == nil {
		items = []T{}
	}

	return Page[T]{
		Items:    items,
		Page:     page,
		PageSize: pageSize,
		HasPrev:  page > 1,
		HasNext:  int64(offset+len(items)) < total,
		Total:    total,
	}
}
