// Package user holds the account entities.
package user

import "time"

// Role is an account role.
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// User is a marketplace account.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	ProfilePhoto string    `json:"profilePhoto"`
	FacultyID    string    `json:"facultyId"`
	CareerID     string    `json:"careerId"`
	IsVerified   bool      `json:"isVerified"`
	IsActive     bool      `json:"isActive"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}
