package resources

import (
	"context"
	"net/url"

	"github.com/jrsteele09/go-waterres-client/apiclient"
)

const RolesPath = "/roles"

type Role struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	SortOrder   int       `json:"sortOrder"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   Timestamp `json:"createdAt"`
	UpdatedAt   Timestamp `json:"updatedAt"`
}

type RoleInput struct {
	Name        string `json:"name" validate:"required,max=50"`
	Description string `json:"description,omitempty" validate:"max=200"`
	SortOrder   int    `json:"sortOrder" validate:"gte=0"`
	IsActive    *bool  `json:"isActive,omitempty"`
}

// SelectOption is a label/value pair used by selection lists.
type SelectOption struct {
	Label string `json:"label"`
	Value any    `json:"value"`
}

type Roles struct {
	Collection[Role, RoleInput]
}

func newRoles(client *apiclient.Client) *Roles {
	return &Roles{Collection: newCollection[Role, RoleInput](client, RolesPath)}
}

func (r *Roles) Permissions(ctx context.Context, id int64) ([]Permission, error) {
	return sub[[]Permission](ctx, r.client, apiclient.Get(itemPath(r.path, id)+"/permissions", nil))
}

// AssignPermissions replaces the role's permissions with permissionIDs.
func (r *Roles) AssignPermissions(ctx context.Context, id int64, permissionIDs []int64) error {
	if permissionIDs == nil {
		permissionIDs = []int64{}
	}
	return exec(ctx, r.client, apiclient.Put(itemPath(r.path, id)+"/permissions", permissionIDs))
}

// Available lists the active roles for selection lists.
func (r *Roles) Available(ctx context.Context) ([]Role, error) {
	return sub[[]Role](ctx, r.client, apiclient.Get(r.path+"/available", nil))
}

func (r *Roles) CheckName(ctx context.Context, name string, excludeID int64) (*Availability, error) {
	q := url.Values{"name": {name}}
	optionalID(q, "excludeId", excludeID)
	return sub[*Availability](ctx, r.client, apiclient.Get(r.path+"/check-name", q))
}
