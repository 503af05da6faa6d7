// Package pagination реализует общий контракт постраничных списков:
// page (с нуля), size, sort=field,direction и ответ Page[T].
package pagination

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ignatzorin/eventmarket-backend/internal/pkg/apperror"
)

const (
	DefaultSize = 20
	MaxSize     = 100
	// MaxOffset ограничивает page*size, чтобы смещение не переполнялось.
	MaxOffset = math.MaxInt32
)

type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

type Sort struct {
	Field     string
	Direction Direction
}

// Spec описывает допустимые поля сортировки конкретного списка.
// Fields отображает имя поля API в колонку SQL.
type Spec struct {
	Fields  map[string]string
	Default Sort

	// TieBreaker - уникальная колонка для стабильного порядка между страницами.
	TieBreaker string
}

type Params struct {
	Page int
	Size int
	Sort Sort
}

// Offset возвращает смещение для SQL.
func (p Params) Offset() int {
	return p.Page * p.Size
}

// Parse разбирает строковые параметры запроса. Пустые значения заменяются дефолтами.
func Parse(page, size, sort string, spec Spec) (Params, error) {
	p := Params{Page: 0, Size: DefaultSize, Sort: spec.Default}

	if page != "" {
		n, err := strconv.Atoi(page)
		if err != nil || n < 0 {
			return Params{}, apperror.New(apperror.ErrCodeValidation, "page должен быть неотрицательным целым числом")
		}
		p.Page = n
	}

	if size != "" {
		n, err := strconv.Atoi(size)
		if err != nil || n < 1 {
			return Params{}, apperror.New(apperror.ErrCodeValidation, "size должен быть положительным целым числом")
		}
		if n > MaxSize {
			n = MaxSize
		}
		p.Size = n
	}

	if err := CheckOffset(p.Page, p.Size); err != nil {
		return Params{}, err
	}

	if sort != "" {
		s, err := parseSort(sort, spec)
		if err != nil {
			return Params{}, err
		}
		p.Sort = s
	}

	return p, nil
}

// CheckOffset отклоняет страницу, смещение которой выходит за MaxOffset.
func CheckOffset(page, size int) error {
	if size > 0 && page > MaxOffset/size {
		return apperror.New(apperror.ErrCodeValidation,
			fmt.Sprintf("page при size=%d не может быть больше %d", size, MaxOffset/size))
	}
	return nil
}

func parseSort(raw string, spec Spec) (Sort, error) {
	parts := strings.Split(raw, ",")
	field := strings.TrimSpace(parts[0])
	if _, ok := spec.Fields[field]; !ok {
		return Sort{}, apperror.New(apperror.ErrCodeValidation, fmt.Sprintf("сортировка по полю %q не поддерживается", field))
	}

	dir := spec.Default.Direction
	if dir == "" {
		dir = Asc
	}
	if len(parts) > 1 {
		switch strings.ToUpper(strings.TrimSpace(parts[1])) {
		case "ASC":
			dir = Asc
		case "DESC":
			dir = Desc
		default:
			return Sort{}, apperror.New(apperror.ErrCodeValidation, "направление сортировки должно быть asc или desc")
		}
	}
	if len(parts) > 2 {
		return Sort{}, apperror.New(apperror.ErrCodeValidation, "sort должен иметь вид field,direction")
	}

	return Sort{Field: field, Direction: dir}, nil
}

// OrderBy строит безопасный ORDER BY только из колонок, перечисленных в spec.
func (p Params) OrderBy(spec Spec) string {
	column, ok := spec.Fields[p.Sort.Field]
	if !ok {
		column = spec.Fields[spec.Default.Field]
	}
	dir := p.Sort.Direction
	if dir != Asc && dir != Desc {
		dir = Desc
	}

	clause := "ORDER BY " + column + " " + string(dir)
	if spec.TieBreaker != "" && spec.TieBreaker != column {
		clause += ", " + spec.TieBreaker + " " + string(dir)
	}
	return clause
}

// Page - ответ постраничного списка.
type Page[T any] struct {
	Content       []T   `json:"content"`
	PageNumber    int   `json:"pageNumber"`
	PageSize      int   `json:"pageSize"`
	TotalPages    int   `json:"totalPages"`
	TotalElements int64 `json:"totalElements"`
}

// NewPage собирает страницу; content обрезается до размера страницы.
func NewPage[T any](content []T, p Params, total int64) Page[T] {
	if content == nil {
		content = []T{}
	}
	if p.Size > 0 && len(content) > p.Size {
		content = content[:p.Size]
	}
	return Page[T]{
		Content:       content,
		PageNumber:    p.Page,
		PageSize:      p.Size,
		TotalPages:    TotalPages(total, p.Size),
		TotalElements: total,
	}
}

// TotalPages = ceil(total / size), 0 для пустого набора.
func TotalPages(total int64, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	pages := total / int64(size)
	if total%int64(size) != 0 {
		pages++
	}
	return int(pages)
}
