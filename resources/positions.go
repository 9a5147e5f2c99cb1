package resources

import (
	"context"
	"net/url"

	"github.com/jrsteele09/go-waterres-client/apiclient"
)

const PositionsPath = "/positions"

type Position struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	Description      string    `json:"description,omitempty"`
	Responsibilities string    `json:"responsibilities,omitempty"`
	Level            string    `json:"level,omitempty"`
	PersonnelCount   int       `json:"personnelCount"`
	CreatedAt        Timestamp `json:"createdAt"`
	UpdatedAt        Timestamp `json:"updatedAt"`
}

type PositionInput struct {
	Name             string `json:"name" validate:"required,max=50"`
	Description      string `json:"description,omitempty" validate:"max=500"`
	Responsibilities string `json:"responsibilities,omitempty" validate:"max=1000"`
	Level            string `json:"level,omitempty" validate:"max=20"`
}

type Positions struct {
	Collection[Position, PositionInput]
}

func newPositions(client *apiclient.Client) *Positions {
	return &Positions{Collection: newCollection[Position, PositionInput](client, PositionsPath)}
}

// Users lists the personnel holding the position.
func (p *Positions) Users(ctx context.Context, id int64, q ListQuery) (*Page[Personnel], error) {
	return sub[*Page[Personnel]](ctx, p.client, apiclient.Get(itemPath(p.path, id)+"/users", q.Values()))
}

func (p *Positions) Statistics(ctx context.Context) (map[string]any, error) {
	return sub[map[string]any](ctx, p.client, apiclient.Get(p.path+"/statistics", nil))
}

func (p *Positions) CheckName(ctx context.Context, name string, excludeID int64) (*Availability, error) {
	q := url.Values{"name": {name}}
	optionalID(q, "excludeId", excludeID)
	return sub[*Availability](ctx, p.client, apiclient.Get(p.path+"/check-name", q))
}
