package types

type Role struct {
	ID       uint    `gorm:"primaryKey" json:"role_id"`
	RoleName string  `gorm:"column:role_name;uniqueIndex;not null" json:"role_name"`
	Users    []*User `gorm:"many2many:user_roles" json:"users,omitempty"`
}

func (Role) TableName() string { return "roles" }
