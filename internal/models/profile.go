package models

// Profile is the account row of a business user.
type Profile struct {
	ID              string `bson:"_id" json:"id" gorm:"column:id;primaryKey"`
	Email           string `bson:"email,omitempty" json:"email,omitempty" gorm:"column:email"`
	CompanyName     string `bson:"company_name,omitempty" json:"company_name,omitempty" gorm:"column:company_name"`
	StripeConnectID string `bson:"stripe_connect_id,omitempty" json:"stripe_connect_id,omitempty" gorm:"column:stripe_connect_id"`
}

func (Profile) TableName() string { return "profiles" }
