package models

import "time"

// Question is a comprehension question tied to a passage. Weight must be
// positive; it drives the weighted assessment aggregation. Questions with
// existing responses are deactivated instead of deleted.
type Question struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	PassageID       uint      `gorm:"not null;index" json:"passage_id"`
	Text            string    `gorm:"type:text;not null" json:"text"`
	ReferenceAnswer string    `gorm:"type:text;not null" json:"reference_answer"`
	Weight          float64   `gorm:"not null;default:1" json:"weight"`
	Active          bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
