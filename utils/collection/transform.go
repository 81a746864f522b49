package collection

// GroupBy : 입력 순서를 유지한 채 키별로 묶음
func GroupBy[T any, V comparable](sources []T, f func(T) V) map[V][]T {
	result := make(map[V][]T)
	for _, v := range sources {
		key := f(v)
		result[key] = append(result[key], v)
	}
	return result
}
