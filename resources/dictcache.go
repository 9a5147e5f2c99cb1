package resources

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"
)

// DefaultDictionaryTTL is how long a dictionary stays cached.
const DefaultDictionaryTTL = 5 * time.Minute

// DictItem is an active dictionary entry in display form.
type DictItem struct {
	Label       string `json:"label"`
	Value       string `json:"value"`
	Description string `json:"description,omitempty"`
	SortOrder   int    `json:"sortOrder"`
}

// DictionaryCache keeps the active entries of each dictionary type for a
// fixed TTL, keyed by type code.
type DictionaryCache struct {
	dicts *Dictionaries
	cache *gocache.Cache
}

// NewDictionaryCache caches dictionaries read through dicts. A non-positive
// ttl uses DefaultDictionaryTTL.
func NewDictionaryCache(dicts *Dictionaries, ttl time.Duration) *DictionaryCache {
	if ttl <= 0 {
		ttl = DefaultDictionaryTTL
	}
	return &DictionaryCache{
		dicts: dicts,
		cache: gocache.New(ttl, 2*ttl),
	}
}

// Items returns the active entries of typeCode sorted by sort order, from the
// cache while it is fresh. An empty type code yields no entries.
func (c *DictionaryCache) Items(ctx context.Context, typeCode string) ([]DictItem, error) {
	if typeCode == "" {
		return []DictItem{}, nil
	}
	if cached, ok := c.cache.Get(typeCode); ok {
		return slices.Clone(cached.([]DictItem)), nil
	}
	return c.Refresh(ctx, typeCode)
}

// Refresh reads typeCode from the server and replaces the cached entry.
func (c *DictionaryCache) Refresh(ctx context.Context, typeCode string) ([]DictItem, error) {
	data, err := c.dicts.DataByTypeCode(ctx, typeCode)
	if err != nil {
		return nil, err
	}
	items := activeItems(data)
	c.cache.Set(typeCode, items, gocache.DefaultExpiration)
	return items, nil
}

// Label maps a stored value to its display label. Values are compared in
// their string form, so 1 and "1" match. defaultLabel is returned for a nil
// value, an unknown value or a failed lookup.
func (c *DictionaryCache) Label(ctx context.Context, typeCode string, value any, defaultLabel string) string {
	if typeCode == "" || value == nil {
		return defaultLabel
	}

	items, err := c.Items(ctx, typeCode)
	if err != nil {
		log.Warn().Err(err).Str("typeCode", typeCode).Msg("Dictionary lookup failed")
		return defaultLabel
	}

	want := fmt.Sprint(value)
	for _, item := range items {
		if item.Value == want {
			return item.Label
		}
	}
	return defaultLabel
}

func (c *DictionaryCache) Invalidate(typeCode string) {
	c.cache.Delete(typeCode)
}

func (c *DictionaryCache) Flush() {
	c.cache.Flush()
}

func activeItems(data []DictData) []DictItem {
	active := make([]DictData, 0, len(data))
	for _, d := range data {
		if d.IsActive.On() {
			active = append(active, d)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].SortOrder < active[j].SortOrder
	})

	items := make([]DictItem, len(active))
	for i, d := range active {
		items[i] = DictItem{Label: d.DataLabel, Value: d.DataValue, Description: d.Description, SortOrder: d.SortOrder}
	}
	return items
}
