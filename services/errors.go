package services

import (
	"lottery/games"

	"github.com/pkg/errors"
)

// Failure reasons. The message is the code rendered to the caller.
var (
	ErrInvalidGameType     = errors.New("INVALID_GAME_TYPE")
	ErrInvalidTicketCount  = errors.New("INVALID_TICKET_COUNT")
	ErrDrawNotOpen         = errors.New("DRAW_NOT_OPEN")
	ErrUserLimitReached    = errors.New("USER_LIMIT_REACHED")
	ErrDrawSoldOut         = errors.New("DRAW_SOLD_OUT")
	ErrInsufficientBalance = errors.New("INSUFFICIENT_BALANCE")
	ErrUserNotFound        = errors.New("USER_NOT_FOUND")

	ErrDrawNotFound         = errors.New("DRAW_NOT_FOUND")
	ErrDrawAlreadyClosed    = errors.New("DRAW_ALREADY_CLOSED")
	ErrInvalidWinningNumber = errors.New("INVALID_WINNING_NUMBER")
	ErrInvalidWinningColor  = errors.New("INVALID_WINNING_COLOR")
	ErrMalformedDrawCode    = errors.New("MALFORMED_DRAW_CODE")
	ErrInvalidDrawTime      = errors.New("INVALID_DRAW_TIME")

	ErrDepositNotFound = errors.New("DEPOSIT_NOT_FOUND")
	ErrInvalidAddress  = errors.New("INVALID_ADDRESS")
)

var userFacing = []error{
	games.ErrInvalidAmount,
	games.ErrInvalidNumber,
	games.ErrInvalidColor,
	ErrInvalidGameType,
	ErrInvalidTicketCount,
	ErrDrawNotOpen,
	ErrUserLimitReached,
	ErrDrawSoldOut,
	ErrInsufficientBalance,
	ErrUserNotFound,
	ErrDrawNotFound,
	ErrDrawAlreadyClosed,
	ErrInvalidWinningNumber,
	ErrInvalidWinningColor,
	ErrMalformedDrawCode,
	ErrInvalidDrawTime,
	ErrDepositNotFound,
	ErrInvalidAddress,
}

// Reason returns the failure code carried by err, or "" when err is an infrastructure
// error that should be logged and reported as a transient failure.
func Reason(err error) string {
	for _, target := range userFacing {
		if errors.Is(err, target) {
			return target.Error()
		}
	}
	return ""
}
