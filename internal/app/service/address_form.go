package service

import (
	"strings"

	"github.com/ikkim/shopfront/internal/app/model"
	"github.com/ikkim/shopfront/pkg/util"
)

// AddressForm is the delivery address being edited at checkout.
// Editing any structured field drops a previously selected saved address.
type AddressForm struct {
	saved *model.DeliveryAddress

	street     string
	ward       string
	district   string
	province   string
	phone      string
	postalCode string
}

// SelectSaved chooses a saved address.
func (f *AddressForm) SelectSaved(addr *model.DeliveryAddress) {
	f.saved = addr
}

func (f *AddressForm) Saved() *model.DeliveryAddress {
	return f.saved
}

func (f *AddressForm) SetStreet(v string) {
	f.street = v
	f.saved = nil
}

func (f *AddressForm) SetWard(v string) {
	f.ward = v
	f.saved = nil
}

func (f *AddressForm) SetDistrict(v string) {
	f.district = v
	f.saved = nil
}

func (f *AddressForm) SetProvince(v string) {
	f.province = v
	f.saved = nil
}

func (f *AddressForm) SetPhone(v string) {
	f.phone = v
}

func (f *AddressForm) SetPostalCode(v string) {
	f.postalCode = v
}

// ResolvedAddress is what every order in one checkout carries.
type ResolvedAddress struct {
	Full       string
	Phone      string
	PostalCode string
	Parts      util.AddressParts
	FromSaved  bool
}

// Resolve applies the precedence saved address, then manual fields. A saved
// address that formats to nothing falls through to the manual fields.
// Phone: the explicit entry, then the saved address's phone.
func (f *AddressForm) Resolve() (ResolvedAddress, error) {
	var r ResolvedAddress

	if f.saved != nil {
		if full := FormatAddress(f.saved); full != "" {
			r.Full = full
			r.PostalCode = f.saved.PostalCode
			r.Parts = util.AddressParts{
				Street:   f.saved.Street,
				Ward:     f.saved.Ward,
				District: f.saved.District,
				Province: f.saved.Province,
			}
			r.FromSaved = true
		}
	}
	if !r.FromSaved {
		r.Parts = util.AddressParts{
			Street:   strings.TrimSpace(f.street),
			Ward:     strings.TrimSpace(f.ward),
			District: strings.TrimSpace(f.district),
			Province: strings.TrimSpace(f.province),
		}
		r.Full = util.JoinAddress(r.Parts.Street, r.Parts.Ward, r.Parts.District, r.Parts.Province)
	}
	if r.Full == "" {
		return ResolvedAddress{}, ErrIncompleteAddress
	}
	if r.PostalCode == "" {
		r.PostalCode = strings.TrimSpace(f.postalCode)
	}

	r.Phone = strings.TrimSpace(f.phone)
	if r.Phone == "" && f.saved != nil {
		r.Phone = strings.TrimSpace(f.saved.Phone)
	}
	if r.Phone == "" {
		return ResolvedAddress{}, ErrMissingPhoneNumber
	}
	return r, nil
}
