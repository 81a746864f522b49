package ledger

import "errors"

var (
	ErrInvalidQuantity = errors.New("invalid quantity")
	ErrInvalidPrice    = errors.New("invalid price")
	ErrInvalidFeeRate  = errors.New("invalid fee rate")
	ErrInvalidSide     = errors.New("invalid position side")
	ErrUnknownPolicy   = errors.New("unknown consumption policy")
)
