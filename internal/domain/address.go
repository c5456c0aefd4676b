package domain

import (
	"fmt"

	"go-intake-backend/pkg/validation"
)

// Address is satisfied by every address variant; each variant carries its
// own validity rule.
type Address interface {
	IsValid() bool
	String() string
}

type AddressFields struct {
	LocalAddress string `json:"local_address"`
	Division     string `json:"division"`
	District     string `json:"district"`
	Upazilla     string `json:"upazilla"`
	PostOffice   string `json:"post_office"`
	PostalCode   string `json:"postal_code"`
}

func (a AddressFields) String() string {
	return fmt.Sprintf("%s, %s", a.LocalAddress, a.District)
}

type PresentAddress struct {
	ID int64 `json:"id"`
	AddressFields
}

type PermanentAddress struct {
	ID int64 `json:"id"`
	AddressFields
	YearsAtResidence int `json:"years_at_residence"`
}

var (
	_ Address = PresentAddress{}
	_ Address = PermanentAddress{}
)

func (a PresentAddress) IsValid() bool {
	return IsValidPresentAddress(a)
}

func (a PermanentAddress) IsValid() bool {
	return IsValidPermanentAddress(a)
}

// IsValidPresentAddress: postal code is exactly 5 ASCII digits
func IsValidPresentAddress(a PresentAddress) bool {
	return validation.IsPostalCode5(a.PostalCode)
}

// IsValidPermanentAddress: at least one year at the residence
func IsValidPermanentAddress(a PermanentAddress) bool {
	return a.YearsAtResidence >= 1
}
