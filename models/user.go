package models

type User struct {
	Username       string `json:"username"`
	HashedPassword string `json:"-"` // Never exposed in API responses
}
