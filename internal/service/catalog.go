package service

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CatalogItem: услуга практики с фиксированной ценой за участника.
type CatalogItem struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Duration int             `json:"duration"`
}

// Catalog: справочник услуг. Пустой каталог означает, что название,
// цена и длительность берутся из заявки как есть.
type Catalog struct {
	items []CatalogItem
	byID  map[string]CatalogItem
}

func NewCatalog(items []CatalogItem) *Catalog {
	c := &Catalog{byID: make(map[string]CatalogItem, len(items))}
	for _, it := range items {
		id := strings.TrimSpace(it.ID)
		if id == "" {
			continue
		}
		it.ID = id
		c.items = append(c.items, it)
		c.byID[id] = it
	}
	return c
}

func (c *Catalog) Empty() bool {
	return c == nil || len(c.byID) == 0
}

func (c *Catalog) Lookup(id string) (CatalogItem, bool) {
	if c == nil {
		return CatalogItem{}, false
	}
	it, ok := c.byID[strings.TrimSpace(id)]
	return it, ok
}

// Items возвращает услуги в порядке конфигурации.
func (c *Catalog) Items() []CatalogItem {
	if c == nil {
		return nil
	}
	return append([]CatalogItem(nil), c.items...)
}
