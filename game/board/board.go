package board

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
)

// SpaceType represents the kind of a board space
type SpaceType string

const (
	Property       SpaceType = "property"
	Railroad       SpaceType = "railroad"
	Utility        SpaceType = "utility"
	Corner         SpaceType = "corner"
	Tax            SpaceType = "tax"
	Chance         SpaceType = "chance"
	CommunityChest SpaceType = "community-chest"
	Jail           SpaceType = "jail"
)

// Side is the edge of the board a space is drawn on
type Side string

const (
	Bottom Side = "bottom"
	Left   Side = "left"
	Top    Side = "top"
	Right  Side = "right"
)

const (
	// SpaceCount is the number of spaces on the ring
	SpaceCount = 40

	// RentTiers is the length of a property's rent sequence
	RentTiers = 6
)

var ErrInvalidBoard = errors.New("invalid board")

// Space is one cell of the board ring
type Space struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Type      SpaceType `json:"type"`
	Color     string    `json:"color,omitempty"`
	Price     int       `json:"price,omitempty"`
	Rent      []int     `json:"rent,omitempty"`
	TaxAmount int       `json:"tax_amount,omitempty"`
	Side      Side      `json:"side"`
}

// Purchasable reports whether the space type can ever be bought
func (s Space) Purchasable() bool {
	return s.Type == Property || s.Type == Railroad || s.Type == Utility
}

// HasPrice reports whether the space carries a defined price
func (s Space) HasPrice() bool {
	return s.Price > 0
}

// BaseRent returns the first rent tier, or 0 when the space has none
func (s Space) BaseRent() int {
	if len(s.Rent) == 0 {
		return 0
	}
	return s.Rent[0]
}

func (s Space) clone() Space {
	s.Rent = slices.Clone(s.Rent)
	return s
}

// Board is an immutable, id-indexed catalog of spaces
type Board struct {
	spaces []Space
}

// New builds a board from the given spaces after validating them
func New(spaces []Space) (*Board, error) {
	b := &Board{spaces: make([]Space, len(spaces))}
	for i, s := range spaces {
		b.spaces[i] = s.clone()
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// Get returns the space with the given id
func (b *Board) Get(id int) (Space, bool) {
	if b == nil || id < 0 || id >= len(b.spaces) {
		return Space{}, false
	}
	return b.spaces[id].clone(), true
}

// Len returns the number of spaces on the board
func (b *Board) Len() int {
	if b == nil {
		return 0
	}
	return len(b.spaces)
}

// Spaces returns a copy of every space in ring order
func (b *Board) Spaces() []Space {
	if b == nil {
		return nil
	}
	out := make([]Space, len(b.spaces))
	for i, s := range b.spaces {
		out[i] = s.clone()
	}
	return out
}

// OfType returns the spaces of a single type in ring order
func (b *Board) OfType(t SpaceType) []Space {
	var out []Space
	if b == nil {
		return out
	}
	for _, s := range b.spaces {
		if s.Type == t {
			out = append(out, s.clone())
		}
	}
	return out
}

// ColorGroup returns the properties that share a color, in ring order
func (b *Board) ColorGroup(color string) []Space {
	var out []Space
	for _, s := range b.OfType(Property) {
		if s.Color == color {
			out = append(out, s)
		}
	}
	return out
}

// Validate checks the structural invariants of the board
func (b *Board) Validate() error {
	if len(b.spaces) != SpaceCount {
		return fmt.Errorf("%w: expected %d spaces, got %d", ErrInvalidBoard, SpaceCount, len(b.spaces))
	}

	for i, s := range b.spaces {
		if s.ID != i {
			return fmt.Errorf("%w: space at index %d has id %d", ErrInvalidBoard, i, s.ID)
		}
		if s.Name == "" {
			return fmt.Errorf("%w: space %d has no name", ErrInvalidBoard, s.ID)
		}

		switch s.Side {
		case Bottom, Left, Top, Right:
		default:
			return fmt.Errorf("%w: space %d has unknown side %q", ErrInvalidBoard, s.ID, s.Side)
		}

		switch s.Type {
		case Property:
			if s.Color == "" {
				return fmt.Errorf("%w: property %d has no color group", ErrInvalidBoard, s.ID)
			}
			if len(s.Rent) != RentTiers {
				return fmt.Errorf("%w: property %d must have %d rent tiers, got %d", ErrInvalidBoard, s.ID, RentTiers, len(s.Rent))
			}
			for t := 1; t < len(s.Rent); t++ {
				if s.Rent[t] <= s.Rent[t-1] {
					return fmt.Errorf("%w: property %d rent tiers must be ascending", ErrInvalidBoard, s.ID)
				}
			}
			fallthrough
		case Railroad, Utility:
			if s.Price <= 0 {
				return fmt.Errorf("%w: purchasable space %d must have a positive price", ErrInvalidBoard, s.ID)
			}
			if s.TaxAmount != 0 {
				return fmt.Errorf("%w: purchasable space %d cannot carry a tax amount", ErrInvalidBoard, s.ID)
			}
			if s.Type != Property && (len(s.Rent) != 0 || s.Color != "") {
				return fmt.Errorf("%w: %s %d cannot carry rent tiers or a color group", ErrInvalidBoard, s.Type, s.ID)
			}
		case Tax:
			if s.TaxAmount <= 0 {
				return fmt.Errorf("%w: tax space %d must have a positive amount", ErrInvalidBoard, s.ID)
			}
			if s.Price != 0 || len(s.Rent) != 0 {
				return fmt.Errorf("%w: tax space %d cannot carry price or rent", ErrInvalidBoard, s.ID)
			}
		case Corner, Chance, CommunityChest, Jail:
			if s.Price != 0 || len(s.Rent) != 0 || s.TaxAmount != 0 {
				return fmt.Errorf("%w: %s space %d cannot carry price, rent or tax", ErrInvalidBoard, s.Type, s.ID)
			}
		default:
			return fmt.Errorf("%w: space %d has unknown type %q", ErrInvalidBoard, s.ID, s.Type)
		}
	}

	return nil
}

// MarshalJSON encodes the board as its list of spaces
func (b *Board) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.spaces)
}

// UnmarshalJSON decodes and validates a list of spaces
func (b *Board) UnmarshalJSON(data []byte) error {
	var spaces []Space
	if err := json.Unmarshal(data, &spaces); err != nil {
		return err
	}
	parsed, err := New(spaces)
	if err != nil {
		return err
	}
	b.spaces = parsed.spaces
	return nil
}
