package model

import "strings"

type User struct {
	BaseModel
	Email       string `gorm:"size:120;unique;not null" json:"email"`
	DisplayName string `gorm:"size:150" json:"displayName"`
	Password    string `gorm:"size:256;not null" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// PublicName returns the display name, falling back to the local part of
// the email when no display name is set.
func (u *User) PublicName() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	if at := strings.Index(u.Email, "@"); at > 0 {
		return u.Email[:at]
	}
	return u.Email
}
