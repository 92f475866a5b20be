package models

import "time"

type Task struct {
	ID             string
	UserID         string
	Title          string
	Description    string
	Cost           float64
	HoursEstimated float64
	Completed      bool
	Image          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
