package models

import (
	"time"

	"gorm.io/gorm"
)

// Difficulty bounds for passages.
const (
	MinDifficulty = 1
	MaxDifficulty = 20
)

// Passage is a reading text assigned to students. Soft-deleted passages stay
// out of listings but remain loadable for recordings that reference them.
type Passage struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	Title            string         `gorm:"size:255;not null" json:"title"`
	Body             string         `gorm:"type:text;not null" json:"body"`
	TimeLimitSeconds int            `gorm:"not null;default:0" json:"time_limit_seconds"`
	Difficulty       int            `gorm:"not null;default:1" json:"difficulty"`
	CreatedBy        uint           `gorm:"not null" json:"created_by"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
	Questions        []Question     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"questions,omitempty"`
}

// HasValidDifficulty reports whether the difficulty falls inside [1,20].
func (p Passage) HasValidDifficulty() bool {
	return p.Difficulty >= MinDifficulty && p.Difficulty <= MaxDifficulty
}
