package api

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// Page 是列表接口的分页信封。
type Page[T any] struct {
	Data     []T  `json:"data"`
	Total    int  `json:"total"`
	Page     int  `json:"page"`
	PageSize int  `json:"pageSize"`
	HasNext  bool `json:"hasNext"`
	HasPrev  bool `json:"hasPrev"`
}

type pagination struct {
	page     int
	pageSize int
}

// parsePagination reads page and pageSize. page below 1 becomes 1 and
// pageSize is clamped to [1, maxSize].
func parsePagination(c *gin.Context, defaultSize, maxSize int) (pagination, error) {
	p := pagination{page: 1, pageSize: defaultSize}
	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return p, fmt.Errorf("invalid page %q", raw)
		}
		p.page = max(n, 1)
	}
	if raw := c.Query("pageSize"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return p, fmt.Errorf("invalid pageSize %q", raw)
		}
		p.pageSize = min(max(n, 1), maxSize)
	}
	return p, nil
}

// listOrder 是 sort/direction 查询参数解析后的排序方式。
type listOrder[T any] struct {
	compare func(a, b T) int
	desc    bool
}

// parseOrder 从 sorters 中选出 sort 对应的比较函数；未给出 sort 时使用默认字段与方向。
func parseOrder[T any](c *gin.Context, sorters map[string]func(a, b T) int, defaultField string, defaultDesc bool) (listOrder[T], error) {
	field := c.Query("sort")
	direction := strings.ToLower(c.Query("direction"))

	o := listOrder[T]{desc: defaultDesc}
	if field == "" {
		field = defaultField
	} else {
		o.desc = false
	}
	cmpFn, ok := sorters[field]
	if !ok {
		return o, fmt.Errorf("unsupported sort %q", field)
	}
	o.compare = cmpFn

	switch direction {
	case "":
	case "asc":
		o.desc = false
	case "desc":
		o.desc = true
	default:
		return o, fmt.Errorf("unsupported direction %q", direction)
	}
	return o, nil
}

// filterItems keeps the items matching every predicate.
func filterItems[T any](items []T, preds ...func(*T) bool) []T {
	out := make([]T, 0, len(items))
next:
	for i := range items {
		for _, keep := range preds {
			if !keep(&items[i]) {
				continue next
			}
		}
		out = append(out, items[i])
	}
	return out
}

// sortItems 稳定排序，相同键保持存储顺序。
func sortItems[T any](items []T, o listOrder[T]) {
	slices.SortStableFunc(items, func(a, b T) int {
		if o.desc {
			return o.compare(b, a)
		}
		return o.compare(a, b)
	})
}

func paginate[T any](items []T, p pagination) Page[T] {
	total := len(items)
	start := min((p.page-1)*p.pageSize, total)
	end := min(start+p.pageSize, total)

	data := make([]T, end-start)
	copy(data, items[start:end])
	return Page[T]{
		Data:     data,
		Total:    total,
		Page:     p.page,
		PageSize: p.pageSize,
		HasNext:  p.page*p.pageSize < total,
		HasPrev:  p.page > 1,
	}
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// splitList parses a comma separated query value, dropping blanks.
func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for part := range strings.SplitSeq(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func compareFold(a, b string) int {
	return cmp.Compare(strings.ToLower(a), strings.ToLower(b))
}
