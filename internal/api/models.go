package api

import (
	"github.com/phrazzld/catalog-api/internal/domain"
	"github.com/shopspring/decimal"
)

// StoreRequest is the body of POST /store.
type StoreRequest struct {
	Name string `json:"name" validate:"required,max=80"`
}

// TagRequest is the body of POST /store/{storeID}/tag.
type TagRequest struct {
	Name string `json:"name" validate:"required,max=80"`
}

// ItemRequest is the body of POST /item. Price accepts a JSON number or a
// decimal string.
type ItemRequest struct {
	Name    string           `json:"name"     validate:"required,max=80"`
	Price   *decimal.Decimal `json:"price"    validate:"required"`
	StoreID int64            `json:"store_id" validate:"required,gt=0"`
}

// ItemUpdateRequest is the body of PUT /item/{itemID}. StoreID is only read
// when the item does not exist yet.
type ItemUpdateRequest struct {
	Name    string           `json:"name"               validate:"required,max=80"`
	Price   *decimal.Decimal `json:"price"              validate:"required"`
	StoreID int64            `json:"store_id,omitempty" validate:"omitempty,gt=0"`
}

// UserCredentials is the body of POST /register and POST /login.
type UserCredentials struct {
	Username string `json:"username" validate:"required,max=80"`
	Password string `json:"password" validate:"required,max=72"`
}

// RefreshResponse is the body returned by POST /refresh.
type RefreshResponse struct {
	AccessToken string `json:"access_token"`
}

// PlainStore is a store without its relations.
type PlainStore struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// PlainItem is an item without its relations.
type PlainItem struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Price string `json:"price"`
}

// PlainTag is a tag without its relations.
type PlainTag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// StoreResponse is a store with its items and tags.
type StoreResponse struct {
	ID    int64       `json:"id"`
	Name  string      `json:"name"`
	Items []PlainItem `json:"items"`
	Tags  []PlainTag  `json:"tags"`
}

// ItemResponse is an item with its tags.
type ItemResponse struct {
	ID      int64      `json:"id"`
	Name    string     `json:"name"`
	Price   string     `json:"price"`
	StoreID int64      `json:"store_id"`
	Tags    []PlainTag `json:"tags"`
}

// TagResponse is a tag with its items.
type TagResponse struct {
	ID      int64       `json:"id"`
	Name    string      `json:"name"`
	StoreID int64       `json:"store_id"`
	Items   []PlainItem `json:"items"`
}

// UnlinkResponse is the body returned by DELETE /item/{itemID}/tag/{tagID}.
type UnlinkResponse struct {
	Message string       `json:"message"`
	Item    ItemResponse `json:"item"`
	Tag     TagResponse  `json:"tag"`
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

func formatPrice(p decimal.Decimal) string {
	return p.StringFixed(domain.PriceScale)
}

func toPlainItems(items []*domain.Item) []PlainItem {
	out := make([]PlainItem, 0, len(items))
	for _, item := range items {
		out = append(out, PlainItem{ID: item.ID, Name: item.Name, Price: formatPrice(item.Price)})
	}
	return out
}

func toPlainTags(tags []*domain.Tag) []PlainTag {
	out := make([]PlainTag, 0, len(tags))
	for _, tag := range tags {
		out = append(out, PlainTag{ID: tag.ID, Name: tag.Name})
	}
	return out
}

func storeToResponse(st *domain.Store) StoreResponse {
	return StoreResponse{
		ID:    st.ID,
		Name:  st.Name,
		Items: toPlainItems(st.Items),
		Tags:  toPlainTags(st.Tags),
	}
}

func itemToResponse(item *domain.Item) ItemResponse {
	return ItemResponse{
		ID:      item.ID,
		Name:    item.Name,
		Price:   formatPrice(item.Price),
		StoreID: item.StoreID,
		Tags:    toPlainTags(item.Tags),
	}
}

func tagToResponse(tag *domain.Tag) TagResponse {
	return TagResponse{
		ID:      tag.ID,
		Name:    tag.Name,
		StoreID: tag.StoreID,
		Items:   toPlainItems(tag.Items),
	}
}
