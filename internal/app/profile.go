package app

import (
	"fmt"

	"gopkg.in/ini.v1"
)

// Profile is shopper data that seeds a new session: contact and address
// fields, a preselected payment method, and an optional coupon code the
// entry form pre-fills.
type Profile struct {
	Email           string
	Name            string
	Address         string
	City            string
	PostalCode      string
	Country         string
	PaymentMethodID string
	Coupon          string
	// Extra holds free-form fields from the [fields] section.
	Extra map[string]string
}

// LoadProfile reads a shopper profile from an INI file.
func LoadProfile(path string) (*Profile, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile %s: %w", path, err)
	}

	profile := &Profile{
		Extra: make(map[string]string),
	}

	if shopper, err := cfg.GetSection("shopper"); err == nil {
		profile.Email = shopper.Key("email").String()
		profile.Name = shopper.Key("name").String()
	}
	if address, err := cfg.GetSection("address"); err == nil {
		profile.Address = address.Key("street").String()
		profile.City = address.Key("city").String()
		profile.PostalCode = address.Key("postal_code").String()
		profile.Country = address.Key("country").String()
	}
	if payment, err := cfg.GetSection("payment"); err == nil {
		profile.PaymentMethodID = payment.Key("method").String()
	}
	if coupon, err := cfg.GetSection("coupon"); err == nil {
		profile.Coupon = coupon.Key("code").String()
	}
	if fields, err := cfg.GetSection("fields"); err == nil {
		for _, key := range fields.Keys() {
			profile.Extra[key.Name()] = key.String()
		}
	}

	return profile, nil
}

// Fields flattens the profile into the field map completion checks read.
func (p *Profile) Fields() map[string]string {
	fields := make(map[string]string, len(p.Extra)+6)
	for k, v := range p.Extra {
		fields[k] = v
	}
	set := func(key, value string) {
		if value != "" {
			fields[key] = value
		}
	}
	set("email", p.Email)
	set("name", p.Name)
	set("street", p.Address)
	set("city", p.City)
	set("postal-code", p.PostalCode)
	set("country", p.Country)
	return fields
}
