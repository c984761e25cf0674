package models

import "time"

// PaymentMethods toggles the checkout payment options.
type PaymentMethods struct {
	Paystack     bool `json:"paystack"`
	BankTransfer bool `json:"bankTransfer"`
}

// StoreSettings is the store-wide configuration row. ID is zero until persisted.
type StoreSettings struct {
	ID             int64          `json:"id,omitempty"`
	StoreName      string         `json:"storeName"`
	Currency       string         `json:"currency"`
	TaxRate        float64        `json:"taxRate"`
	PaymentMethods PaymentMethods `json:"paymentMethods"`
	ContactEmail   string         `json:"contactEmail"`
	ContactPhone   string         `json:"contactPhone"`
	Address        string         `json:"address"`
	CreatedAt      *time.Time     `json:"createdAt,omitempty"`
	UpdatedAt      *time.Time     `json:"updatedAt,omitempty"`
}

// DefaultStoreSettings is used whenever no settings row exists.
func DefaultStoreSettings() StoreSettings {
	return StoreSettings{
		StoreName: "Hidaaya Store",
		Currency:  "NGN",
		TaxRate:   0,
		PaymentMethods: PaymentMethods{
			Paystack:     true,
			BankTransfer: false,
		},
	}
}

// StoreSettingsPatch carries a partial settings update; nil fields are left untouched.
type StoreSettingsPatch struct {
	ID             int64           `json:"id,omitempty"`
	StoreName      *string         `json:"storeName" binding:"omitempty,min=1"`
	Currency       *string         `json:"currency" binding:"omitempty,len=3"`
	TaxRate        *float64        `json:"taxRate" binding:"omitempty,gte=0"`
	PaymentMethods *PaymentMethods `json:"paymentMethods"`
	ContactEmail   *string         `json:"contactEmail" binding:"omitempty,email"`
	ContactPhone   *string         `json:"contactPhone"`
	Address        *string         `json:"address"`
}

// Apply overlays the non-nil patch fields onto s.
func (p StoreSettingsPatch) Apply(s StoreSettings) StoreSettings {
	if p.ID != 0 {
		s.ID = p.ID
	}
	if p.StoreName != nil {
		s.StoreName = *p.StoreName
	}
	if p.Currency != nil {
		s.Currency = *p.Currency
	}
	if p.TaxRate != nil {
		s.TaxRate = *p.TaxRate
	}
	if p.PaymentMethods != nil {
		s.PaymentMethods = *p.PaymentMethods
	}
	if p.ContactEmail != nil {
		s.ContactEmail = *p.ContactEmail
	}
	if p.ContactPhone != nil {
		s.ContactPhone = *p.ContactPhone
	}
	if p.Address != nil {
		s.Address = *p.Address
	}
	return s
}
