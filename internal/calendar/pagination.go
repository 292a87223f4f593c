package calendar

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Page описывает одну страницу элементов.
type Page[T any] struct {
	Items    []T  `json:"items"`
	Page     int  `json:"page"`     // номер страницы (с 1)
	PageSize int  `json:"pageSize"` // количество элементов на странице
	HasNext  bool `json:"hasNext"`
	HasPrev  bool `json:"hasPrev"`
	Total    int  `json:"total"` // общее количество элементов
}

// Normalize подставляет дефолты для некорректных page/pageSize
// и возвращает limit/offset для запроса в базу.
func Normalize(page, pageSize int) (p, size, limit, offset int) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	if page <= 0 {
		page = 1
	}
	return page, pageSize, pageSize, (page - 1) * pageSize
}

// FromQuery собирает страницу из уже выбранного базой среза и общего количества.
func FromQuery[T any](items []T, page, pageSize int, total int64) Page[T] {
	page, pageSize, _, offset := Normalize(page, pageSize)
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:    items,
		Page:     page,
		PageSize: pageSize,
		HasNext:  int64(offset+len(items)) < total,
		HasPrev:  page > 1,
		Total:    int(total),
	}
}
