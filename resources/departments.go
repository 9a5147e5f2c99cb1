package resources

import (
	"context"
	"net/url"

	"github.com/jrsteele09/go-waterres-client/apiclient"
)

const (
	DepartmentsPath    = "/departments"
	DepartmentTreePath = "/management-info/departments/tree"
)

type Department struct {
	ID             int64        `json:"id"`
	Name           string       `json:"name"`
	ParentID       int64        `json:"parentId,omitempty"`
	ParentName     string       `json:"parentName,omitempty"`
	Duty           string       `json:"duty,omitempty"`
	Contact        string       `json:"contact,omitempty"`
	RegionID       int64        `json:"regionId,omitempty"`
	RegionName     string       `json:"regionName,omitempty"`
	IsActive       bool         `json:"isActive"`
	PersonnelCount int          `json:"personnelCount,omitempty"`
	Children       []Department `json:"children,omitempty"`
	CreatedAt      Timestamp    `json:"createdAt"`
	UpdatedAt      Timestamp    `json:"updatedAt"`
}

type DepartmentInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	ParentID int64  `json:"parentId,omitempty" validate:"gte=0"`
	Duty     string `json:"duty,omitempty" validate:"max=500"`
	Contact  string `json:"contact,omitempty" validate:"max=100"`
	RegionID int64  `json:"regionId,omitempty" validate:"gte=0"`
	IsActive *bool  `json:"isActive,omitempty"`
}

type Departments struct {
	Collection[Department, DepartmentInput]
}

func newDepartments(client *apiclient.Client) *Departments {
	return &Departments{Collection: newCollection[Department, DepartmentInput](client, DepartmentsPath)}
}

// CheckName reports whether name is free under parentID. excludeID skips the
// department being edited; zero values are not sent.
func (d *Departments) CheckName(ctx context.Context, name string, parentID, excludeID int64) (*Availability, error) {
	q := url.Values{"name": {name}}
	optionalID(q, "parentId", parentID)
	optionalID(q, "excludeId", excludeID)
	return sub[*Availability](ctx, d.client, apiclient.Get(d.path+"/check-name", q))
}

// Tree returns the department hierarchy with children nested.
func (d *Departments) Tree(ctx context.Context) ([]Department, error) {
	return sub[[]Department](ctx, d.client, apiclient.Get(DepartmentTreePath, nil))
}
