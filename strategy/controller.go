package strategy

import (
	"errors"
	"fmt"

	"lotbot/indicator"
	"lotbot/interfaces"
	"lotbot/model"

	"github.com/samber/lo"
)

var (
	ErrMissingIndicator = errors.New("missing indicator")
	ErrUnknownStrategy  = errors.New("unknown strategy")
)

// ChartIndicators : 전체 캔들로 데이터프레임을 만들어 전략 지표를 한 번 계산 (차트용)
func ChartIndicators(strategy interfaces.Strategy, candles []model.Candle) []indicator.ChartIndicator {
	if len(candles) == 0 {
		return nil
	}
	df := model.NewDataframe(candles[0].Pair)
	for _, candle := range candles {
		df.Append(candle)
	}
	return strategy.Indicators(df)
}

// lookup : Indicators 에서 채운 시리즈를 keys 순서대로 꺼냄. 하나라도 없으면 에러
func lookup(df *model.Dataframe, keys ...string) ([]model.Series[float64], error) {
	out := make([]model.Series[float64], 0, len(keys))
	for _, key := range keys {
		s, ok := df.Metadata[key]
		if !ok || s.Length() != df.Len() {
			return nil, fmt.Errorf("%w: %s", ErrMissingIndicator, key)
		}
		out = append(out, s)
	}
	return out, nil
}

// newestLot : 해당 방향에서 가장 최근에 열린 lot
func newestLot(position interfaces.Position, side model.PositionSide) (model.Lot, bool) {
	lots := lo.Filter(position.Lots(), func(lot model.Lot, _ int) bool {
		return lot.Side == side
	})
	if len(lots) == 0 {
		return model.Lot{}, false
	}
	return lots[len(lots)-1], true
}
