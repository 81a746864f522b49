package model

type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
)

// Decision : 전략 플러그인이 봉마다 돌려주는 판단
type Decision struct {
	Action     Action  `json:"action"`
	Confidence float64 `json:"confidence"`

	// Quantity : 0 이면 드라이버가 PositionFraction 으로 수량 산정
	Quantity float64 `json:"quantity,omitempty"`

	TargetPrice *float64 `json:"target_price,omitempty"`
	StopLoss    *float64 `json:"stop_loss,omitempty"`

	// Reduce : 신규 진입 없이 해당 방향 청산만 (BUY=숏 청산, SELL=롱 청산)
	Reduce bool   `json:"reduce,omitempty"`
	Tag    string `json:"tag,omitempty"`
}

func Hold() Decision {
	return Decision{Action: ActionHold}
}

// SideToOpen : 이 판단이 새로 여는 포지션 방향
func (d Decision) SideToOpen() PositionSide {
	if d.Action == ActionSell {
		return SideShort
	}
	return SideLong
}

// SideToClose : 이 판단으로 청산될 수 있는 방향
func (d Decision) SideToClose() PositionSide {
	return d.SideToOpen().Opposite()
}
