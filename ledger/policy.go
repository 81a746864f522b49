package ledger

import (
	"fmt"
	"strings"
)

// ConsumptionPolicy : 청산 시 같은 방향 lot 들을 어떤 순서로 소모할지
type ConsumptionPolicy interface {
	Name() string
	// Order : 삽입 순서로 정렬된 인덱스를 소모 순서로 재배열
	Order(indices []int) []int
}

type lifoPolicy struct{}

func (lifoPolicy) Name() string { return "lifo" }

func (lifoPolicy) Order(indices []int) []int {
	out := make([]int, len(indices))
	for i, idx := range indices {
		out[len(indices)-1-i] = idx
	}
	return out
}

type fifoPolicy struct{}

func (fifoPolicy) Name() string { return "fifo" }

func (fifoPolicy) Order(indices []int) []int {
	return append([]int(nil), indices...)
}

var (
	// LIFO : 가장 최근 진입한 lot 부터 (기본값)
	LIFO ConsumptionPolicy = lifoPolicy{}
	// FIFO : 가장 오래된 lot 부터
	FIFO ConsumptionPolicy = fifoPolicy{}
)

func PolicyByName(name string) (ConsumptionPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "lifo":
		return LIFO, nil
	case "fifo":
		return FIFO, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownPolicy, name)
	}
}
