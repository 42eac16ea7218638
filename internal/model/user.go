package model

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	Student    UserRole = "student"
	Instructor UserRole = "instructor"
	Admin      UserRole = "admin"
)

// swagger:model User
type User struct {
	BaseModel
	Name      string    `gorm:"size:100;not null" json:"name"`
	Email     string    `gorm:"size:100;unique;not null" json:"email"`
	Password  string    `gorm:"size:100;not null" json:"-"`
	Role      UserRole  `gorm:"size:20;default:'student'" json:"role"`
	Avatar    string    `gorm:"size:255" json:"avatar"`
	Disabled  bool      `gorm:"default:false" json:"disabled"`
	LastLogin time.Time `json:"lastLogin"`
	LastSeen  time.Time `json:"lastSeen"`
}

// BeforeCreate 活跃时间在应用层赋默认值，不依赖具体数据库的时间函数
func (u *User) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if u.LastLogin.IsZero() {
		u.LastLogin = now
	}
	if u.LastSeen.IsZero() {
		u.LastSeen = now
	}
	return nil
}

func (User) TableName() string {
	return "users"
}
