// Package review holds service review entities.
package review

import "time"

// Review is a buyer's rating of a completed service.
type Review struct {
	ID         string    `json:"id"`
	ServiceID  string    `json:"serviceId"`
	ReviewerID string    `json:"reviewerId"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}
