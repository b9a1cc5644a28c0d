package util

// PageParams 分页参数
type PageParams struct {
	Page   int
	Limit  int
	Offset int
}

// Paginate clamps page to >= 1 and limit to [min, max]; a non-positive limit
// falls back to def.
func Paginate(page, limit, def, min, max int) PageParams {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = def
	}
	if limit < min {
		limit = min
	}
	if limit > max {
		limit = max
	}
	return PageParams{Page: page, Limit: limit, Offset: (page - 1) * limit}
}

// TotalPages 计算总页数
func TotalPages(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
