// Package models contains data structures for the forum's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// User ranks affect displayed reputation only.
const (
	RankNewbie      = "newbie"
	RankContributor = "contributor"
	RankExpert      = "expert"
	RankGuru        = "guru"
)

// User roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a registered forum member.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email     string         `gorm:"uniqueIndex;not null" json:"email"`
	Password  string         `gorm:"not null" json:"-"`
	Rank      string         `gorm:"size:20;not null;default:newbie" json:"rank"`
	Role      string         `gorm:"size:20;not null;default:user" json:"role"`
	Questions []Question     `gorm:"foreignKey:AuthorID" json:"-"`
	Answers   []Answer       `gorm:"foreignKey:AuthorID" json:"-"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// PublicProfile is the author projection embedded in question and answer payloads.
type PublicProfile struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Rank     string `json:"rank"`
}

// Profile returns the public projection of the user.
func (u User) Profile() PublicProfile {
	rank := u.Rank
	if rank == "" {
		rank = RankNewbie
	}
	return PublicProfile{ID: u.ID, Username: u.Username, Rank: rank}
}

// ValidRank reports whether rank is a known rank tier.
func ValidRank(rank string) bool {
	switch rank {
	case RankNewbie, RankContributor, RankExpert, RankGuru:
		return true
	}
	return false
}

// ValidRole reports whether role is a known role.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}
