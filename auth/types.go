package auth

// UserInfo is the profile of the logged in user.
type UserInfo struct {
	ID           int64  `json:"id,omitempty"`
	Username     string `json:"username,omitempty"`
	RealName     string `json:"realName,omitempty"`
	FullName     string `json:"fullName,omitempty"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Avatar       string `json:"avatar,omitempty"`
	RoleName     string `json:"roleName,omitempty"`
	DepartmentID int64  `json:"departmentId,omitempty"`
}

// DisplayName prefers the full name, then the real name, then the username.
func (u *UserInfo) DisplayName() string {
	switch {
	case u == nil:
		return ""
	case u.FullName != "":
		return u.FullName
	case u.RealName != "":
		return u.RealName
	default:
		return u.Username
	}
}

// Credentials is the login form.
type Credentials struct {
	Username string `json:"username" validate:"required,max=50"`
	Password string `json:"password" validate:"required,max=100"`
	Remember bool   `json:"-"`
}

// TokenResponse is returned by the login and refresh endpoints.
type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
	TokenType    string `json:"tokenType,omitempty"`
	ExpiresIn    int64  `json:"expiresIn,omitempty"`
}

// LoginResponse is the data of a successful POST /auth/login.
type LoginResponse struct {
	TokenResponse
	UserInfo    *UserInfo `json:"userInfo"`
	Permissions []string  `json:"permissions"`
	Roles       []string  `json:"roles"`
	RoleName    string    `json:"roleName"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Profile is the normalized result of GET /auth/me.
type Profile struct {
	UserInfo    *UserInfo
	Permissions PermissionSet
	Roles       RoleSet
}

type RegisterRequest struct {
	Username             string `json:"username" validate:"required,min=3,max=50"`
	Password             string `json:"password" validate:"required,password"`
	PasswordConfirmation string `json:"passwordConfirmation" validate:"required,eqfield=Password"`
	RealName             string `json:"realName,omitempty" validate:"omitempty,max=50"`
	Email                string `json:"email,omitempty" validate:"omitempty,email"`
	Phone                string `json:"phone,omitempty" validate:"omitempty,max=20"`
}

type ResetPasswordRequest struct {
	Token                string `json:"token" validate:"required"`
	Password             string `json:"password" validate:"required,password"`
	PasswordConfirmation string `json:"passwordConfirmation" validate:"required,eqfield=Password"`
}

type ChangePasswordRequest struct {
	CurrentPassword         string `json:"currentPassword" validate:"required"`
	NewPassword             string `json:"newPassword" validate:"required,password,nefield=CurrentPassword"`
	NewPasswordConfirmation string `json:"newPasswordConfirmation" validate:"required,eqfield=NewPassword"`
}
