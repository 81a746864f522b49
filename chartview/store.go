package chartview

import (
	"sort"
	"sync"

	"lotbot/backtest"
	"lotbot/indicator"
)

// Run : 저장된 백테스트 1건과 차트용 지표
type Run struct {
	Result     *backtest.Result
	Indicators []indicator.ChartIndicator
	seq        int
}

// RunStore : run id 로 결과를 보관하는 메모리 저장소
type RunStore struct {
	mu   sync.RWMutex
	runs map[string]*Run
	next int
}

func NewRunStore() *RunStore {
	return &RunStore{runs: make(map[string]*Run)}
}

// Put : 같은 id 가 있으면 덮어쓰되 순서는 유지
func (s *RunStore) Put(res *backtest.Result, indicators []indicator.ChartIndicator) {
	if res == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	seq := s.next
	if old, ok := s.runs[res.RunID]; ok {
		seq = old.seq
	} else {
		s.next++
	}
	s.runs[res.RunID] = &Run{Result: res, Indicators: indicators, seq: seq}
}

func (s *RunStore) Get(id string) (*Run, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	return run, ok
}

// List : 저장된 순서대로
func (s *RunStore) List() []*Run {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Run, 0, len(s.runs))
	for _, run := range s.runs {
		out = append(out, run)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

func (s *RunStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.runs)
}
