package models

import "time"

// AutoOrder asks the ordering engine to place the task above every sibling.
const AutoOrder = 0

// MaxOrder is the highest rank a task may hold.
const MaxOrder = 1<<31 - 1

// Task is an entry of a project. Order is a sparse rank, unique per project.
type Task struct {
	ID           int64      `db:"id" json:"id"`
	ProjectID    int64      `db:"project_id" json:"-"`
	Title        string     `db:"title" json:"title"`
	Order        int        `db:"order" json:"order"`
	CreationDate time.Time  `db:"creation_date" json:"creation_date"`
	DueDate      *time.Time `db:"due_date" json:"due_date"`
	Completed    bool       `db:"completed" json:"completed"`
}

// NewTask carries the fields accepted when creating a task.
// Order == AutoOrder means max(order)+1 within the project.
type NewTask struct {
	Title   string
	Order   int
	DueDate *time.Time
}

// TaskUpdate is a full replacement of a task's mutable fields.
type TaskUpdate struct {
	Title     string
	Order     int
	DueDate   *time.Time
	Completed bool
}
