package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// PriceScale is the number of decimal places kept for item prices.
const PriceScale = 2

// maxPrice is the exclusive upper bound of a NUMERIC(10,2) column.
var maxPrice = decimal.New(1, 8)

// Store is a named container owning Items and Tags. Names are globally unique.
type Store struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Items []*Item `json:"items,omitempty"`
	Tags  []*Tag  `json:"tags,omitempty"`
}

// NewStore returns a validated Store with a trimmed name.
func NewStore(name string) (*Store, error) {
	s := &Store{Name: strings.TrimSpace(name)}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks if the Store has valid data.
func (s *Store) Validate() error {
	return validateName(s.Name)
}

// Item is a priced product belonging to exactly one Store. Its StoreID never
// changes after creation.
type Item struct {
	ID      int64           `json:"id"`
	Name    string          `json:"name"`
	Price   decimal.Decimal `json:"price"`
	StoreID int64           `json:"store_id"`
	Tags    []*Tag          `json:"tags,omitempty"`
}

// NewItem returns a validated Item. The price is rounded to PriceScale places.
func NewItem(storeID int64, name string, price decimal.Decimal) (*Item, error) {
	item := &Item{
		Name:    strings.TrimSpace(name),
		Price:   price.Round(PriceScale),
		StoreID: storeID,
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}
	return item, nil
}

// NewItemUpsert returns an Item for a create-or-replace of id. storeID may be
// zero; it is only required when no item with id exists yet.
func NewItemUpsert(id, storeID int64, name string, price decimal.Decimal) (*Item, error) {
	item := &Item{
		ID:      id,
		Name:    strings.TrimSpace(name),
		Price:   price.Round(PriceScale),
		StoreID: storeID,
	}
	if err := validateName(item.Name); err != nil {
		return nil, err
	}
	if err := ValidatePrice(item.Price); err != nil {
		return nil, err
	}
	return item, nil
}

// Validate checks if the Item has valid data.
func (i *Item) Validate() error {
	if err := validateName(i.Name); err != nil {
		return err
	}
	if err := ValidatePrice(i.Price); err != nil {
		return err
	}
	if i.StoreID <= 0 {
		return ErrMissingStoreID
	}
	return nil
}

// ValidatePrice checks that price is non-negative and fits NUMERIC(10,2).
func ValidatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return ErrNegativePrice
	}
	if price.Round(PriceScale).GreaterThanOrEqual(maxPrice) {
		return ErrPriceTooLarge
	}
	return nil
}

// Tag is a label scoped to one Store that can be attached to any number of Items.
type Tag struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	StoreID int64   `json:"store_id"`
	Items   []*Item `json:"items,omitempty"`
}

// NewTag returns a validated Tag with a trimmed name.
func NewTag(storeID int64, name string) (*Tag, error) {
	tag := &Tag{Name: strings.TrimSpace(name), StoreID: storeID}
	if err := tag.Validate(); err != nil {
		return nil, err
	}
	return tag, nil
}

// Validate checks if the Tag has valid data.
func (t *Tag) Validate() error {
	if err := validateName(t.Name); err != nil {
		return err
	}
	if t.StoreID <= 0 {
		return ErrMissingStoreID
	}
	return nil
}
