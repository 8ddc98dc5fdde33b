package models

const (
	QuoteStatusSent    = "sent"
	QuoteStatusExpired = "expired"
)

// Quote is a customer estimate.
type Quote struct {
	ID         string `bson:"_id" json:"id" gorm:"column:id;primaryKey"`
	Number     string `bson:"number,omitempty" json:"number,omitempty" gorm:"column:number"`
	ExpiryDate string `bson:"expiry_date" json:"expiry_date" gorm:"column:expiry_date"` // YYYY-MM-DD
	Status     string `bson:"status" json:"status" gorm:"column:status"`
}

func (Quote) TableName() string { return "quotes" }
