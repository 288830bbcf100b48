package model

import "time"

// UserRole 用户角色
type UserRole string

const (
	UserRoleAdmin UserRole = "admin"
	UserRoleUser  UserRole = "user"
)

// Valid 是否为已知角色
func (r UserRole) Valid() bool {
	return r == UserRoleAdmin || r == UserRoleUser
}

// User 后台账号
type User struct {
	ID           int64     `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password"` // never expose in JSON
	Role         UserRole  `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// UserPatch 用户部分更新
//
// Name/Email/Role 为空字符串时沿用原值；Password 为空时不修改密码。
type UserPatch struct {
	Name     Optional[string]   `json:"name"`
	Email    Optional[string]   `json:"email"`
	Password Optional[string]   `json:"password"`
	Role     Optional[UserRole] `json:"role"`
}

// Apply 将补丁合并到 u 上，返回新值（u 本身不变）
func (p UserPatch) Apply(u User) User {
	u.Name = p.Name.OrNonZero(u.Name)
	u.Email = p.Email.OrNonZero(u.Email)
	u.Role = p.Role.OrNonZero(u.Role)
	return u
}
