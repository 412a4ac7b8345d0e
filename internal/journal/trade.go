package journal

import (
	"math"
	"strings"
	"time"

	"trademind/internal/errors"
	"trademind/internal/models"
	"trademind/pkg/utils"
)

// TradeInput is the raw trade form. PnL is a pointer so that an omitted value
// can be told apart from a breakeven trade.
type TradeInput struct {
	Asset           string           `json:"asset"`
	Direction       models.Direction `json:"direction"`
	EntryPrice      *float64         `json:"entryPrice,omitempty"`
	ExitPrice       *float64         `json:"exitPrice,omitempty"`
	Lots            float64          `json:"lots"`
	PnL             *float64         `json:"pnl"`
	Strategy        string           `json:"strategy"`
	DurationMinutes *int             `json:"durationMinutes,omitempty"`
	Notes           string           `json:"notes,omitempty"`
	Screenshot      string           `json:"screenshot,omitempty"`
}

// Validate checks the required trade fields and returns the first failure.
func (in TradeInput) Validate() error {
	if strings.TrimSpace(in.Asset) == "" {
		return errors.NewValidationError("asset", in.Asset, "asset is required")
	}
	if in.Direction != "" && !in.Direction.Valid() {
		return errors.NewValidationError("direction", in.Direction, "must be Buy or Sell")
	}
	if in.Lots <= 0 || math.IsNaN(in.Lots) || math.IsInf(in.Lots, 0) {
		return errors.NewValidationError("lots", in.Lots, "lots must be greater than zero")
	}
	if in.PnL == nil {
		return errors.NewValidationError("pnl", nil, "pnl is required")
	}
	if math.IsNaN(*in.PnL) || math.IsInf(*in.PnL, 0) {
		return errors.NewValidationError("pnl", *in.PnL, "pnl must be a finite number")
	}
	if in.DurationMinutes != nil && *in.DurationMinutes < 0 {
		return errors.NewValidationError("durationMinutes", *in.DurationMinutes, "duration cannot be negative")
	}
	return nil
}

// NewTrade validates in and stamps it with a fresh id and the given time.
func NewTrade(in TradeInput, now time.Time) (models.Trade, error) {
	if err := in.Validate(); err != nil {
		return models.Trade{}, err
	}

	direction := in.Direction
	if direction == "" {
		direction = models.DirectionBuy
	}

	return models.Trade{
		ID:              utils.NewIDAt(now),
		Asset:           strings.ToUpper(strings.TrimSpace(in.Asset)),
		Direction:       direction,
		EntryPrice:      in.EntryPrice,
		ExitPrice:       in.ExitPrice,
		Lots:            in.Lots,
		PnL:             *in.PnL,
		Strategy:        strings.TrimSpace(in.Strategy),
		Timestamp:       now.UTC().Format(models.TimestampLayout),
		DurationMinutes: in.DurationMinutes,
		Notes:           in.Notes,
		Screenshot:      in.Screenshot,
	}, nil
}
