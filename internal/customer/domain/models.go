package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type ProfileStatus string

const (
	ProfileStatusActive   ProfileStatus = "active"
	ProfileStatusInactive ProfileStatus = "inactive"
)

type CreditType string

const (
	CreditTypeCashOnly      CreditType = "cash_only"
	CreditTypeCreditAllowed CreditType = "credit_allowed"
)

type InvoiceType string

const (
	InvoiceTypeB2B InvoiceType = "B2B"
	InvoiceTypeB2C InvoiceType = "B2C"
)

// Address is a postal address carried on profiles and copied onto orders.
type Address struct {
	ContactPerson string `json:"contact_person,omitempty"`
	ContactPhone  string `json:"contact_phone,omitempty"`
	AddressLine1  string `json:"address_line1"`
	AddressLine2  string `json:"address_line2,omitempty"`
	City          string `json:"city"`
	State         string `json:"state"`
	PinCode       string `json:"pin_code"`
	Landmark      string `json:"landmark,omitempty"`
}

// ShippingAddress is a named delivery site on a customer profile.
type ShippingAddress struct {
	ID       string `json:"id"`
	SiteName string `json:"site_name,omitempty"`
	Address
}

// CustomerProfile is the customer-master record. This core only reads it;
// profile management lives outside.
type CustomerProfile struct {
	ID                snowflake.ID      `gorm:"primaryKey" json:"id"`
	DisplayName       string            `gorm:"not null" json:"display_name"`
	Email             string            `json:"email"`
	Mobile            string            `json:"mobile"`
	CompanyName       string            `json:"company_name,omitempty"`
	GSTIN             string            `gorm:"column:gstin" json:"gstin,omitempty"`
	InvoiceType       InvoiceType       `gorm:"type:text;not null;default:'B2C'" json:"invoice_type"`
	PlaceOfSupply     string            `json:"place_of_supply,omitempty"`
	CreditType        CreditType        `gorm:"type:text;not null;default:'cash_only'" json:"credit_type"`
	CreditLimit       decimal.Decimal   `gorm:"type:numeric(14,2);not null;default:0" json:"credit_limit"`
	CreditDays        int               `gorm:"not null;default:0" json:"credit_days"`
	BillingAddress    *Address          `gorm:"serializer:json" json:"billing_address,omitempty"`
	ShippingAddresses []ShippingAddress `gorm:"serializer:json" json:"shipping_addresses,omitempty"`
	Status            ProfileStatus     `gorm:"type:text;not null;default:'active';index" json:"status"`
	CreatedAt         time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt         time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (CustomerProfile) TableName() string { return "customer_profiles" }

func (p *CustomerProfile) IsCreditCustomer() bool {
	return p != nil && p.CreditType == CreditTypeCreditAllowed
}

// ShippingAddressByID returns the named delivery site, or nil.
func (p *CustomerProfile) ShippingAddressByID(id string) *ShippingAddress {
	for i := range p.ShippingAddresses {
		if p.ShippingAddresses[i].ID == id {
			return &p.ShippingAddresses[i]
		}
	}
	return nil
}
