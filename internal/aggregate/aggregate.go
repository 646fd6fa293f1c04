// Package aggregate folds batch-fetched child rows into their parents.
//
// Child queries are issued once per parent set (never once per parent), then
// grouped in memory. Within one parent the children keep the order in which
// the query returned them.
package aggregate

import "github.com/samber/lo"

// Keysは重複を除いたキーを出現順で返す
func Keys[T any, K comparable](items []T, key func(T) K) []K {
	return lo.Uniq(lo.Map(items, func(it T, _ int) K { return key(it) }))
}

// GroupByは行をキーごとにまとめる。順序は入力のまま
func GroupBy[T any, K comparable](rows []T, key func(T) K) map[K][]T {
	return lo.GroupBy(rows, key)
}

// Foldは親ごとに子を渡す。子がない親には空スライス（nilではない）を渡す
func Fold[P any, C any, K comparable](parents []P, children map[K][]C, key func(P) K, attach func(*P, []C)) {
	for i := range parents {
		cs := lo.ValueOr(children, key(parents[i]), []C{})
		if cs == nil {
			cs = []C{}
		}
		attach(&parents[i], cs)
	}
}
