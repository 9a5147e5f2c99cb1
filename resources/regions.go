package resources

import (
	"context"
	"net/url"
	"strconv"

	"github.com/jrsteele09/go-waterres-client/apiclient"
)

const RegionsPath = "/regions"

type Region struct {
	ID       int64    `json:"id"`
	Code     string   `json:"code,omitempty"`
	Name     string   `json:"name"`
	Level    int      `json:"level"`
	ParentID int64    `json:"parentId,omitempty"`
	Children []Region `json:"children,omitempty"`
}

type RegionInput struct {
	Code     string `json:"code" validate:"required,max=20"`
	Name     string `json:"name" validate:"required,max=100"`
	Level    int    `json:"level" validate:"required,min=1,max=5"`
	ParentID int64  `json:"parentId,omitempty" validate:"gte=0"`
}

type Regions struct {
	Collection[Region, RegionInput]
}

func newRegions(client *apiclient.Client) *Regions {
	return &Regions{Collection: newCollection[Region, RegionInput](client, RegionsPath)}
}

func (r *Regions) Available(ctx context.Context) ([]Region, error) {
	return sub[[]Region](ctx, r.client, apiclient.Get(r.path+"/available", nil))
}

// Tree returns the region hierarchy down to maxLevel. Zero means all levels.
func (r *Regions) Tree(ctx context.Context, maxLevel int) ([]Region, error) {
	q := url.Values{}
	if maxLevel > 0 {
		q.Set("maxLevel", strconv.Itoa(maxLevel))
	}
	return sub[[]Region](ctx, r.client, apiclient.Get(r.path+"/tree", q))
}

func (r *Regions) ByLevel(ctx context.Context, level int) ([]Region, error) {
	return sub[[]Region](ctx, r.client, apiclient.Get(r.path+"/level/"+strconv.Itoa(level), nil))
}

func (r *Regions) Children(ctx context.Context, parentID int64) ([]Region, error) {
	return sub[[]Region](ctx, r.client, apiclient.Get(itemPath(r.path, parentID)+"/children", nil))
}
