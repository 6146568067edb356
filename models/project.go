package models

import "time"

// Project groups tasks and belongs to exactly one user.
// UserID is used for ownership scoping and is never serialized.
type Project struct {
	ID           int64     `db:"id" json:"id"`
	UserID       int64     `db:"user_id" json:"-"`
	Title        string    `db:"title" json:"title"`
	CreationDate time.Time `db:"creation_date" json:"creation_date"`
	LastUpdated  time.Time `db:"last_updated" json:"last_updated"`
}
