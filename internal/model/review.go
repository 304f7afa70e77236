package model

import "time"

// Review is a rating with a comment left by a user on a product
type Review struct {
	ID        string    `json:"id" gorm:"type:varchar(36);primaryKey" bson:"_id"`
	UserID    string    `json:"userId" gorm:"type:varchar(36);index;not null" bson:"userId"`
	ProductID string    `json:"productId" gorm:"type:varchar(36);index;not null" bson:"productId"`
	Rating    int       `json:"rating" gorm:"not null" bson:"rating"`
	Comment   string    `json:"comment" gorm:"type:text" bson:"comment"`
	CreatedAt time.Time `json:"createdAt" gorm:"index" bson:"createdAt"`
}

// AverageRating is the arithmetic mean of the ratings, 0 when there are none
func AverageRating(reviews []Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return float64(sum) / float64(len(reviews))
}
