package recruit

import (
	"strconv"
	"strings"
)

// Slugify lower-cases the title, joins words with '-' and drops everything outside [a-z0-9-].
func Slugify(title string) string {
	fields := strings.Fields(strings.ToLower(title))
	joined := strings.Join(fields, "-")

	var b strings.Builder
	b.Grow(len(joined))
	for _, r := range joined {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// UniqueSlug 在 slug 已被占用时追加数字后缀（-2、-3 ...）。
func UniqueSlug(title string, taken func(string) bool) string {
	base := Slugify(title)
	if base == "" {
		base = "job"
	}
	if !taken(base) {
		return base
	}
	for n := 2; ; n++ {
		candidate := base + "-" + strconv.Itoa(n)
		if !taken(candidate) {
			return candidate
		}
	}
}
