package auth

import (
	"bytes"
	"encoding/json"

	apperrors "github.com/jrsteele09/go-waterres-client/internal/errors"
)

// profileShape enumerates the accepted /auth/me payloads.
type profileShape int

const (
	// profileShapeFlat: the user fields sit at the top level next to
	// permissions and roles.
	profileShapeFlat profileShape = iota + 1
	// profileShapeNested: the user fields sit under "userInfo".
	profileShapeNested
	// profileShapeOpaque: neither identifying fields nor "userInfo"; the
	// object is kept as the user and grants nothing.
	profileShapeOpaque
)

type grantsPayload struct {
	Permissions []string `json:"permissions"`
	Roles       []string `json:"roles"`
}

// flatProfile shares roleName with the embedded UserInfo.
type flatProfile struct {
	UserInfo
	grantsPayload
}

type nestedProfile struct {
	UserInfo *UserInfo `json:"userInfo"`
	RoleName string    `json:"roleName"`
	grantsPayload
}

// profileResponse is a decoded /auth/me payload. Exactly one of the shape
// fields is set, selected by shape.
type profileResponse struct {
	shape  profileShape
	flat   *flatProfile
	nested *nestedProfile
	opaque *UserInfo
}

func parseProfileResponse(raw json.RawMessage) (profileResponse, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil || probe == nil {
		return profileResponse{}, ErrNotObjectProfile
	}

	switch {
	case isTruthy(probe["id"]) || isTruthy(probe["username"]):
		var flat flatProfile
		if err := json.Unmarshal(raw, &flat); err != nil {
			return profileResponse{}, apperrors.Wrapf(apperrors.ErrInvalidUserResponse, "flat profile: %v", err)
		}
		return profileResponse{shape: profileShapeFlat, flat: &flat}, nil
	case isTruthy(probe["userInfo"]):
		var nested nestedProfile
		if err := json.Unmarshal(raw, &nested); err != nil {
			return profileResponse{}, apperrors.Wrapf(apperrors.ErrInvalidUserResponse, "nested profile: %v", err)
		}
		return profileResponse{shape: profileShapeNested, nested: &nested}, nil
	default:
		var opaque UserInfo
		_ = json.Unmarshal(raw, &opaque)
		return profileResponse{shape: profileShapeOpaque, opaque: &opaque}, nil
	}
}

// normalize is the single mapping from an accepted shape to a Profile.
func (p profileResponse) normalize() Profile {
	switch p.shape {
	case profileShapeFlat:
		user := p.flat.UserInfo
		return Profile{UserInfo: &user, Permissions: p.flat.permissionSet(), Roles: p.flat.roleSet(user.RoleName)}
	case profileShapeNested:
		return Profile{
			UserInfo:    p.nested.UserInfo,
			Permissions: p.nested.permissionSet(),
			Roles:       p.nested.roleSet(p.nested.RoleName, p.nested.UserInfo.RoleName),
		}
	case profileShapeOpaque:
		return Profile{UserInfo: p.opaque, Permissions: NewPermissionSet(), Roles: NewRoleSet()}
	default:
		panic("auth: unhandled profile shape")
	}
}

func (g grantsPayload) permissionSet() PermissionSet {
	return NewPermissionSet(g.Permissions...)
}

func (g grantsPayload) roleSet(roleNames ...string) RoleSet {
	return NewRoleSet(append(append([]string{}, g.Roles...), roleNames...)...)
}

// isTruthy reports whether a raw JSON value is present and not null, false,
// zero or an empty string.
func isTruthy(raw json.RawMessage) bool {
	v := bytes.TrimSpace(raw)
	if len(v) == 0 {
		return false
	}
	switch string(v) {
	case "null", "false", "0", `""`:
		return false
	}
	return true
}
