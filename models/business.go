package models

import "gorm.io/gorm"

// Business represents a tenant: a local service company using the AI receptionist
type Business struct {
	gorm.Model
	Name     string `gorm:"not null" json:"name"`
	Trade    string `json:"trade"` // hvac, painting, roofing
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Website  string `json:"website"`
	Timezone string `gorm:"default:'UTC'" json:"timezone"`

	// Stripe integration
	StripeCustomerID *string `gorm:"index" json:"stripe_customer_id,omitempty"`

	// Relations
	Users []User `gorm:"foreignKey:BusinessID" json:"users,omitempty"`
}
