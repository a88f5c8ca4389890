// Package contract turns submitted lease form values into validated contract
// parameters and the generation prompt.
package contract

import (
	"net/url"
	"strings"

	"github.com/contractui/api/internal/models"
)

// Candidate holds form values after trimming, before validation.
// Numeric fields keep their raw text so the validator can report them.
type Candidate struct {
	TenantName      string
	LandlordName    string
	Rent            string
	SecurityDeposit string
	DurationMonths  string
	Address         string
	StartDate       string
}

// Intake reads the contract fields from submitted form values
func Intake(form url.Values) Candidate {
	get := func(key string) string {
		return strings.TrimSpace(form.Get(key))
	}
	return Candidate{
		TenantName:      get(models.FieldTenantName),
		LandlordName:    get(models.FieldLandlordName),
		Rent:            get(models.FieldRent),
		SecurityDeposit: get(models.FieldSecurityDeposit),
		DurationMonths:  get(models.FieldDurationMonths),
		Address:         get(models.FieldAddress),
		StartDate:       get(models.FieldStartDate),
	}
}

// Values returns the candidate as form values, used to refill the entry form
func (c Candidate) Values() map[string]string {
	return map[string]string{
		models.FieldTenantName:      c.TenantName,
		models.FieldLandlordName:    c.LandlordName,
		models.FieldRent:            c.Rent,
		models.FieldSecurityDeposit: c.SecurityDeposit,
		models.FieldDurationMonths:  c.DurationMonths,
		models.FieldAddress:         c.Address,
		models.FieldStartDate:       c.StartDate,
	}
}
