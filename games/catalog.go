// Package games holds the fixed per-game-type configuration: payout multipliers,
// stake and choice bounds, ticket caps and draw-code numbering. A Catalog is built
// once at startup and never mutated afterwards.
package games

import (
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindNumber Kind = "number"
	KindColor  Kind = "color"
)

var (
	ErrInvalidAmount = errors.New("INVALID_AMOUNT")
	ErrInvalidNumber = errors.New("INVALID_NUMBER")
	ErrInvalidColor  = errors.New("INVALID_COLOR")
)

// NoNumber stands in for an absent number choice; catalogs never allow negative choices.
const NoNumber = -1

// DefaultColors is the colour set offered by colour games unless a game lists its own.
var DefaultColors = []string{"RED", "GREEN", "BLUE", "YELLOW"}

type Game struct {
	Code       string          `toml:"code"`
	Name       string          `toml:"name"`
	Kind       Kind            `toml:"kind"`
	Multiplier decimal.Decimal `toml:"multiplier"`

	MinAmount decimal.Decimal `toml:"min_amount"`
	MaxAmount decimal.Decimal `toml:"max_amount"`
	// WholeStake rejects fractional stakes.
	WholeStake bool `toml:"whole_stake"`

	MinChoice int      `toml:"min_choice"`
	MaxChoice int      `toml:"max_choice"`
	Colors    []string `toml:"colors"`

	PerUserLimit int `toml:"per_user_limit"`
	DrawLimit    int `toml:"draw_limit"`

	DrawPrefix string `toml:"draw_prefix"`
	DrawStart  int    `toml:"draw_start"`
}

// Outcome is a chosen or declared result: a number for number games, a colour for colour games.
type Outcome struct {
	Number int
	Color  string
}

func (o Outcome) Equal(other Outcome) bool {
	return o.Number == other.Number && o.Color == other.Color
}

func (o Outcome) String() string {
	if o.Color != "" {
		return o.Color
	}
	return decimal.NewFromInt(int64(o.Number)).String()
}

func (g Game) ValidateStake(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if g.WholeStake && !amount.Equal(amount.Truncate(0)) {
		return ErrInvalidAmount
	}
	if amount.LessThan(g.MinAmount) || amount.GreaterThan(g.MaxAmount) {
		return ErrInvalidAmount
	}
	return nil
}

// NormalizeOutcome checks o against the game's domain and returns it in stored form
// (colours upper-cased, the unused half cleared).
func (g Game) NormalizeOutcome(o Outcome) (Outcome, error) {
	switch g.Kind {
	case KindNumber:
		if o.Number < g.MinChoice || o.Number > g.MaxChoice {
			return Outcome{}, ErrInvalidNumber
		}
		return Outcome{Number: o.Number}, nil
	case KindColor:
		color := strings.ToUpper(strings.TrimSpace(o.Color))
		for _, c := range g.Colors {
			if c == color {
				return Outcome{Color: color}, nil
			}
		}
		return Outcome{}, ErrInvalidColor
	}
	return Outcome{}, errors.Errorf("unknown game kind %q", g.Kind)
}

func (g Game) Payout(stake decimal.Decimal) decimal.Decimal {
	return stake.Mul(g.Multiplier)
}

func (g Game) validate() error {
	switch {
	case g.Code == "":
		return errors.New("game code is required")
	case g.Kind != KindNumber && g.Kind != KindColor:
		return errors.Errorf("%s: unknown kind %q", g.Code, g.Kind)
	case !g.Multiplier.IsPositive():
		return errors.Errorf("%s: multiplier must be positive", g.Code)
	case !g.MinAmount.IsPositive() || g.MaxAmount.LessThan(g.MinAmount):
		return errors.Errorf("%s: invalid stake bounds", g.Code)
	case g.PerUserLimit <= 0 || g.DrawLimit <= 0:
		return errors.Errorf("%s: ticket limits must be positive", g.Code)
	case g.DrawPrefix == "":
		return errors.Errorf("%s: draw prefix is required", g.Code)
	case g.DrawStart < 0:
		return errors.Errorf("%s: draw start must not be negative", g.Code)
	}
	if g.Kind == KindNumber && (g.MinChoice < 0 || g.MaxChoice < g.MinChoice) {
		return errors.Errorf("%s: invalid choice bounds", g.Code)
	}
	if g.Kind == KindColor && len(g.Colors) == 0 {
		return errors.Errorf("%s: colour game without colours", g.Code)
	}
	return nil
}

type Catalog struct {
	games map[string]Game
	order []string
}

func New(list ...Game) (*Catalog, error) {
	c := &Catalog{games: make(map[string]Game, len(list))}
	prefixes := make(map[string]string, len(list))

	for _, g := range list {
		g.Code = strings.ToUpper(strings.TrimSpace(g.Code))
		if g.Kind == KindColor && len(g.Colors) == 0 {
			g.Colors = DefaultColors
		}
		colors := make([]string, len(g.Colors))
		for i, color := range g.Colors {
			colors[i] = strings.ToUpper(strings.TrimSpace(color))
		}
		g.Colors = colors

		if err := g.validate(); err != nil {
			return nil, err
		}
		if _, dup := c.games[g.Code]; dup {
			return nil, errors.Errorf("duplicate game code %s", g.Code)
		}
		// Draw codes are matched by prefix, so no prefix may extend another.
		for prefix, other := range prefixes {
			if strings.HasPrefix(g.DrawPrefix, prefix) || strings.HasPrefix(prefix, g.DrawPrefix) {
				return nil, errors.Errorf("draw prefix %s of %s overlaps %s of %s", g.DrawPrefix, g.Code, prefix, other)
			}
		}
		prefixes[g.DrawPrefix] = g.Code
		c.games[g.Code] = g
		c.order = append(c.order, g.Code)
	}
	return c, nil
}

func Default() *Catalog {
	c, err := New(
		Game{
			Code:         "NUMBER",
			Name:         "Sprint 70x",
			Kind:         KindNumber,
			Multiplier:   decimal.NewFromInt(70),
			MinAmount:    decimal.NewFromInt(1),
			MaxAmount:    decimal.NewFromInt(100),
			WholeStake:   true,
			MinChoice:    1,
			MaxChoice:    100,
			PerUserLimit: 5,
			DrawLimit:    80,
			DrawPrefix:   "SP-",
			DrawStart:    1001,
		},
		Game{
			Code:         "NUMBER50",
			Name:         "Mid-Day 40x",
			Kind:         KindNumber,
			Multiplier:   decimal.NewFromInt(40),
			MinAmount:    decimal.NewFromInt(2),
			MaxAmount:    decimal.NewFromInt(200),
			WholeStake:   true,
			MinChoice:    1,
			MaxChoice:    50,
			PerUserLimit: 5,
			DrawLimit:    40,
			DrawPrefix:   "MD-",
			DrawStart:    4001,
		},
		Game{
			Code:         "COLOR",
			Name:         "Color Lottery",
			Kind:         KindColor,
			Multiplier:   decimal.NewFromInt(2),
			MinAmount:    decimal.NewFromInt(1),
			MaxAmount:    decimal.NewFromInt(1000),
			Colors:       DefaultColors,
			PerUserLimit: 5,
			DrawLimit:    80,
			DrawPrefix:   "CL-",
			DrawStart:    7001,
		},
	)
	if err != nil {
		panic(err)
	}
	return c
}

type catalogFile struct {
	Games []Game `toml:"game"`
}

// Load reads a catalog from TOML, one [[game]] table per game type.
func Load(r io.Reader) (*Catalog, error) {
	var f catalogFile
	if _, err := toml.NewDecoder(r).Decode(&f); err != nil {
		return nil, errors.Wrap(err, "decode game catalog")
	}
	if len(f.Games) == 0 {
		return nil, errors.New("game catalog is empty")
	}
	return New(f.Games...)
}

func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open game catalog")
	}
	defer f.Close()
	return Load(f)
}

func (c *Catalog) Lookup(code string) (Game, bool) {
	g, ok := c.games[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return Game{}, false
	}
	g.Colors = append([]string(nil), g.Colors...)
	return g, true
}

// Games returns every game in declaration order.
func (c *Catalog) Games() []Game {
	list := make([]Game, 0, len(c.order))
	for _, code := range c.order {
		g, _ := c.Lookup(code)
		list = append(list, g)
	}
	return list
}
