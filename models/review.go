package models

import "time"

// Review is an append-only product review. UserName is a snapshot of the
// reviewer's name when the review was written.
type Review struct {
	ID        string    `gorm:"type:varchar(64);primaryKey" json:"id"`
	ProductID string    `gorm:"type:varchar(64);not null;index" json:"productId"`
	UserID    string    `gorm:"type:varchar(64);not null;index" json:"userId"`
	UserName  string    `gorm:"type:varchar(255);not null" json:"userName"`
	Rating    int       `gorm:"not null" json:"rating"`
	Comment   string    `gorm:"type:text;not null" json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}
