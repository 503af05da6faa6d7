package client

import (
	"net/url"
	"strconv"

	"github.com/ignatzorin/eventmarket-backend/internal/pagination"
)

// Page - страница списка в формате сервера.
type Page[T any] struct {
	Content       []T   `json:"content"`
	PageNumber    int   `json:"pageNumber"`
	PageSize      int   `json:"pageSize"`
	TotalPages    int   `json:"totalPages"`
	TotalElements int64 `json:"totalElements"`
}

// HasNext сообщает, есть ли следующая страница.
func (p Page[T]) HasNext() bool {
	return p.PageNumber+1 < p.TotalPages
}

// PageQuery - параметры пагинации. Нулевые значения оставляют серверные умолчания.
type PageQuery struct {
	Page int
	Size int
	// Sort в формате "поле,направление", например "createdAt,desc".
	Sort string
}

func (q PageQuery) values() url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Size > 0 {
		v.Set("size", strconv.Itoa(q.Size))
	}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	return v
}

// validate повторяет серверные границы, чтобы не тратить запрос.
func (q PageQuery) validate() error {
	if q.Page < 0 {
		return &Error{Kind: KindInvalidInput, Code: "VALIDATION_ERROR", Message: "page не может быть отрицательным"}
	}
	if q.Size > pagination.MaxSize {
		return &Error{Kind: KindInvalidInput, Code: "VALIDATION_ERROR", Message: "size превышает " + strconv.Itoa(pagination.MaxSize)}
	}
	size := q.Size
	if size <= 0 {
		size = pagination.DefaultSize
	}
	if err := pagination.CheckOffset(q.Page, size); err != nil {
		return localError(err)
	}
	return nil
}
