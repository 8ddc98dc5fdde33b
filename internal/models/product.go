package models

import "time"

const (
	ProductSourcePointP = "pointp"
	ProductSourceCedeo  = "cedeo"
)

// Product is a supplier catalogue entry, unique per (source, reference).
type Product struct {
	ID              string    `bson:"_id" json:"id" gorm:"column:id;primaryKey"`
	Source          string    `bson:"source" json:"source" gorm:"column:source;uniqueIndex:idx_products_source_reference"`
	Reference       string    `bson:"reference" json:"reference" gorm:"column:reference;uniqueIndex:idx_products_source_reference"`
	Name            string    `bson:"name" json:"name" gorm:"column:name"`
	Category        string    `bson:"category,omitempty" json:"category,omitempty" gorm:"column:category"`
	PurchasePriceHT float64   `bson:"purchase_price_ht,omitempty" json:"purchase_price_ht,omitempty" gorm:"column:purchase_price_ht"`
	SellingPriceHT  float64   `bson:"selling_price_ht" json:"selling_price_ht" gorm:"column:selling_price_ht"`
	UpdatedAt       time.Time `bson:"updated_at" json:"updated_at" gorm:"column:updated_at"`
}

func (Product) TableName() string { return "products" }
