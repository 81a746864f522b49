package optimizer

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/StudioSol/set"
	"github.com/samber/lo"
)

// Grid : 파라미터 이름 → 후보 값 목록
type Grid map[string][]float64

// ParamSet : 조합 하나
type ParamSet map[string]float64

// Key : 이름 정렬 기준 정규화 문자열 ("fast=8,slow=21")
func (p ParamSet) Key() string {
	names := lo.Keys(p)
	sort.Strings(names)
	parts := lo.Map(names, func(name string, _ int) string {
		return name + "=" + strconv.FormatFloat(p[name], 'g', -1, 64)
	})
	return strings.Join(parts, ",")
}

func (p ParamSet) String() string {
	return "{" + p.Key() + "}"
}

// Expand : 카테시안 곱. 이름 정렬 순서, 값은 입력 순서대로, 중복 조합 제거.
// 빈 그리드는 빈 조합 하나 (기본 파라미터로 한 번 실행)
func Expand(grid Grid) ([]ParamSet, error) {
	names := lo.Keys(grid)
	sort.Strings(names)
	for _, name := range names {
		if len(grid[name]) == 0 {
			return nil, fmt.Errorf("%w: %s has no values", ErrEmptyGrid, name)
		}
	}

	combos := []ParamSet{{}}
	for _, name := range names {
		next := make([]ParamSet, 0, len(combos)*len(grid[name]))
		for _, base := range combos {
			for _, v := range grid[name] {
				p := make(ParamSet, len(base)+1)
				for k, bv := range base {
					p[k] = bv
				}
				p[name] = v
				next = append(next, p)
			}
		}
		combos = next
	}

	seen := set.NewLinkedHashSetString()
	out := make([]ParamSet, 0, len(combos))
	for _, p := range combos {
		// Add 가 길이를 늘리지 않으면 이미 본 조합
		size := seen.Length()
		seen.Add(p.Key())
		if seen.Length() == size {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}
