package models

// EmailTemplate is an operator override of a built-in template. Body is
// Markdown with {{.key}} placeholders.
type EmailTemplate struct {
	TemplateID string `bson:"template_id" json:"template_id" gorm:"column:template_id;primaryKey"` // e.g. "invoice_sent"
	Subject    string `bson:"subject" json:"subject" gorm:"column:subject"`
	Body       string `bson:"body_markdown" json:"body_markdown" gorm:"column:body_markdown"`
}

func (EmailTemplate) TableName() string { return "email_templates" }
