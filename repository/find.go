package repository

import (
	"sort"
	"strings"

	"github.com/facette/natsort"
	"gorm.io/gorm"

	"github.com/camden-git/librarycatalog/database"
)

// applyFindOptions adds projection, ordering and preloads for table to q
func applyFindOptions(q *gorm.DB, table string, opts FindOptions) *gorm.DB {
	if len(opts.Select) > 0 {
		cols := []string{table + ".id"}
		for _, c := range opts.Select {
			if c == "id" {
				continue
			}
			if !strings.Contains(c, ".") {
				c = table + "." + c
			}
			cols = append(cols, c)
		}
		q = q.Select(cols)
	}
	if opts.Sort.Column != "" {
		dir := "ASC"
		if opts.Sort.Desc {
			dir = "DESC"
		}
		q = q.Order(table + "." + opts.Sort.Column + " " + dir)
	}
	for _, rel := range opts.Populate {
		q = q.Preload(rel)
	}
	return q
}

// naturalSort reorders items in place by key when opt asks for natural order
func naturalSort[T any](items []T, opt database.SortOption, key func(T) string) {
	if !opt.Natural {
		return
	}
	sort.SliceStable(items, func(i, j int) bool {
		return natsort.Compare(key(items[i]), key(items[j]))
	})
}
