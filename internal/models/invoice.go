package models

import "time"

const (
	PaymentStatusPaid = "paid"

	ChorusProStatusFailed = "failed"
)

// Invoice is the persisted invoice row. Only the columns touched by the
// backend functions are mapped.
type Invoice struct {
	ID                   string     `bson:"_id" json:"id" gorm:"column:id;primaryKey"`
	UserID               string     `bson:"user_id" json:"user_id" gorm:"column:user_id"`
	Number               string     `bson:"number" json:"number" gorm:"column:number"`
	ClientName           string     `bson:"client_name" json:"client_name" gorm:"column:client_name"`
	ClientEmail          string     `bson:"client_email,omitempty" json:"client_email,omitempty" gorm:"column:client_email"`
	TotalTTC             float64    `bson:"total_ttc" json:"total_ttc" gorm:"column:total_ttc"`
	DueDate              string     `bson:"due_date" json:"due_date" gorm:"column:due_date"` // YYYY-MM-DD
	PaymentStatus        string     `bson:"payment_status" json:"payment_status" gorm:"column:payment_status"`
	LastReminderSent     string     `bson:"last_reminder_sent,omitempty" json:"last_reminder_sent,omitempty" gorm:"column:last_reminder_sent"`
	ReminderSentCount    int        `bson:"reminder_sent_count" json:"reminder_sent_count" gorm:"column:reminder_sent_count"`
	XMLURL               string     `bson:"xml_url,omitempty" json:"xml_url,omitempty" gorm:"column:xml_url"`
	IsElectronic         bool       `bson:"is_electronic" json:"is_electronic" gorm:"column:is_electronic"`
	ChorusProStatus      string     `bson:"chorus_pro_status,omitempty" json:"chorus_pro_status,omitempty" gorm:"column:chorus_pro_status"`
	ChorusProSubmittedAt *time.Time `bson:"chorus_pro_submitted_at,omitempty" json:"chorus_pro_submitted_at,omitempty" gorm:"column:chorus_pro_submitted_at"`
}

func (Invoice) TableName() string { return "invoices" }
