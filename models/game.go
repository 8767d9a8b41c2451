package models

import (
	"time"

	"lottery/games"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type GameType struct {
	gorm.Model

	Code  string `gorm:"uniqueIndex;size:32;not null" json:"code"`
	Name  string `gorm:"size:64" json:"name"`
	Draws []Draw `gorm:"foreignKey:GameTypeID" json:"-"`
}

type Draw struct {
	gorm.Model

	GameTypeID    uint       `gorm:"index;not null" json:"game_type_id"`
	GameType      GameType   `json:"game_type"`
	Code          string     `gorm:"uniqueIndex;size:32;not null" json:"code"`
	DrawTime      time.Time  `gorm:"index" json:"draw_time"`
	IsClosed      bool       `gorm:"index;not null;default:false" json:"is_closed"`
	WinningNumber *int       `json:"winning_number,omitempty"`
	WinningColor  *string    `gorm:"size:16" json:"winning_color,omitempty"`
	ClosedAt      *time.Time `json:"closed_at,omitempty"`
	Bets          []Bet      `gorm:"foreignKey:DrawID" json:"-"`
}

// WinningOutcome is the declared result; ok is false while the draw is open.
func (d *Draw) WinningOutcome() (games.Outcome, bool) {
	switch {
	case d.WinningNumber != nil:
		return games.Outcome{Number: *d.WinningNumber}, true
	case d.WinningColor != nil:
		return games.Outcome{Color: *d.WinningColor}, true
	}
	return games.Outcome{}, false
}

type BetStatus string

const (
	BetPending BetStatus = "PENDING"
	BetWon     BetStatus = "WON"
	BetLost    BetStatus = "LOST"
)

type Bet struct {
	gorm.Model

	UserID       uint            `gorm:"index:idx_bet_draw_user,priority:2;not null" json:"user_id"`
	DrawID       uint            `gorm:"index:idx_bet_draw_user,priority:1;not null" json:"draw_id"`
	Draw         Draw            `json:"-"`
	Amount       decimal.Decimal `gorm:"type:numeric(20,6);not null" json:"amount"`
	ChosenNumber *int            `json:"chosen_number,omitempty"`
	ChosenColor  *string         `gorm:"size:16" json:"chosen_color,omitempty"`
	Status       BetStatus       `gorm:"size:16;index;not null" json:"status"`
	Payout       decimal.Decimal `gorm:"type:numeric(20,6);not null;default:0" json:"payout"`
}

func (b *Bet) Outcome() games.Outcome {
	var o games.Outcome
	if b.ChosenNumber != nil {
		o.Number = *b.ChosenNumber
	}
	if b.ChosenColor != nil {
		o.Color = *b.ChosenColor
	}
	return o
}

// SetOutcome stores o in whichever column its game kind uses.
func (b *Bet) SetOutcome(o games.Outcome) {
	b.ChosenNumber, b.ChosenColor = nil, nil
	if o.Color != "" {
		color := o.Color
		b.ChosenColor = &color
		return
	}
	number := o.Number
	b.ChosenNumber = &number
}
