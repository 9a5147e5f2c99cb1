package resources

import (
	"context"

	"github.com/jrsteele09/go-waterres-client/apiclient"
)

const UsersPath = "/users"

type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	RoleID    int64     `json:"roleId,omitempty"`
	RoleName  string    `json:"roleName,omitempty"`
	IsActive  bool      `json:"isActive"`
	LastLogin Timestamp `json:"lastLogin"`
	CreatedAt Timestamp `json:"createdAt"`
	UpdatedAt Timestamp `json:"updatedAt"`
}

// UserInput creates or edits an account. Password is omitted on edit to keep
// the current one.
type UserInput struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password,omitempty" validate:"omitempty,min=6,max=100"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	RoleID   int64  `json:"roleId,omitempty" validate:"gte=0"`
	IsActive *bool  `json:"isActive,omitempty"`
}

type Users struct {
	Collection[User, UserInput]
}

func newUsers(client *apiclient.Client) *Users {
	return &Users{Collection: newCollection[User, UserInput](client, UsersPath)}
}

func (u *Users) Roles(ctx context.Context, id int64) ([]Role, error) {
	return sub[[]Role](ctx, u.client, apiclient.Get(itemPath(u.path, id)+"/roles", nil))
}

// AssignRoles replaces the user's roles with roleIDs.
func (u *Users) AssignRoles(ctx context.Context, id int64, roleIDs []int64) error {
	if roleIDs == nil {
		roleIDs = []int64{}
	}
	return exec(ctx, u.client, apiclient.Put(itemPath(u.path, id)+"/roles", roleIDs))
}
