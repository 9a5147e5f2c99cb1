package resources

import (
	"context"
	"net/url"

	"github.com/jrsteele09/go-waterres-client/apiclient"
)

const PermissionsPath = "/permissions"

// Permission types.
const (
	PermissionMenu   = "menu"
	PermissionButton = "button"
	PermissionAPI    = "api"
)

type Permission struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	Code        string       `json:"code"`
	Type        string       `json:"type"`
	Description string       `json:"description,omitempty"`
	URL         string       `json:"url,omitempty"`
	Method      string       `json:"method,omitempty"`
	ParentID    int64        `json:"parentId,omitempty"`
	SortOrder   int          `json:"sortOrder"`
	Icon        string       `json:"icon,omitempty"`
	Children    []Permission `json:"children,omitempty"`
}

type PermissionInput struct {
	Name        string `json:"name" validate:"required,max=50"`
	Code        string `json:"code" validate:"required,max=100"`
	Type        string `json:"type" validate:"required,oneof=menu button api"`
	Description string `json:"description,omitempty" validate:"max=200"`
	URL         string `json:"url,omitempty" validate:"max=200"`
	Method      string `json:"method,omitempty" validate:"omitempty,oneof=GET POST PUT DELETE PATCH"`
	ParentID    int64  `json:"parentId,omitempty" validate:"gte=0"`
	SortOrder   int    `json:"sortOrder" validate:"gte=0"`
	Icon        string `json:"icon,omitempty"`
}

type movePermission struct {
	NewParentID int64 `json:"newParentId"`
}

type copyPermission struct {
	NewName string `json:"newName" validate:"required,max=50"`
	NewCode string `json:"newCode" validate:"required,max=100"`
}

type Permissions struct {
	Collection[Permission, PermissionInput]
}

func newPermissions(client *apiclient.Client) *Permissions {
	return &Permissions{Collection: newCollection[Permission, PermissionInput](client, PermissionsPath)}
}

func (p *Permissions) Tree(ctx context.Context) ([]Permission, error) {
	return sub[[]Permission](ctx, p.client, apiclient.Get(p.path+"/tree", nil))
}

// MenuTree is the tree restricted to menu permissions.
func (p *Permissions) MenuTree(ctx context.Context) ([]Permission, error) {
	return sub[[]Permission](ctx, p.client, apiclient.Get(p.path+"/menu-tree", nil))
}

func (p *Permissions) ByType(ctx context.Context, permissionType string) ([]Permission, error) {
	return sub[[]Permission](ctx, p.client, apiclient.Get(p.path+"/by-type", url.Values{"type": {permissionType}}))
}

func (p *Permissions) Available(ctx context.Context) ([]Permission, error) {
	return sub[[]Permission](ctx, p.client, apiclient.Get(p.path+"/available", nil))
}

func (p *Permissions) Children(ctx context.Context, parentID int64) ([]Permission, error) {
	return sub[[]Permission](ctx, p.client, apiclient.Get(itemPath(p.path, parentID)+"/children", nil))
}

func (p *Permissions) CheckCode(ctx context.Context, code string, excludeID int64) (*Availability, error) {
	q := url.Values{"code": {code}}
	optionalID(q, "excludeId", excludeID)
	return sub[*Availability](ctx, p.client, apiclient.Get(p.path+"/check-code", q))
}

func (p *Permissions) Statistics(ctx context.Context) (map[string]any, error) {
	return sub[map[string]any](ctx, p.client, apiclient.Get(p.path+"/statistics", nil))
}

// Export downloads the permission list as a spreadsheet.
func (p *Permissions) Export(ctx context.Context, q ListQuery) (*apiclient.Response, error) {
	return download(ctx, p.client, apiclient.Download(p.path+"/export", q.Values()))
}

// Move re-parents a permission. A zero newParentID moves it to the root.
func (p *Permissions) Move(ctx context.Context, id, newParentID int64) error {
	return exec(ctx, p.client, apiclient.Put(itemPath(p.path, id)+"/move", movePermission{NewParentID: newParentID}))
}

func (p *Permissions) Copy(ctx context.Context, id int64, newName, newCode string) (*Permission, error) {
	body := copyPermission{NewName: newName, NewCode: newCode}
	if err := validatePayload(body); err != nil {
		return nil, err
	}
	return sub[*Permission](ctx, p.client, apiclient.Post(itemPath(p.path, id)+"/copy", body))
}
