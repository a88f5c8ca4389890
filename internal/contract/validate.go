package contract

import (
	"strings"

	"github.com/contractui/api/internal/models"
)

// ValidationError lists every failing field of a submission by form name.
// Missing holds blank text fields, Invalid holds numeric fields that do not
// parse or are out of range.
type ValidationError struct {
	Missing []string
	Invalid []string
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "Champs manquants : "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "Champs numériques invalides : "+strings.Join(e.Invalid, ", "))
	}
	return strings.Join(parts, " — ")
}

// Fields returns missing then invalid field names
func (e *ValidationError) Fields() []string {
	out := make([]string, 0, len(e.Missing)+len(e.Invalid))
	out = append(out, e.Missing...)
	return append(out, e.Invalid...)
}

// Validate checks every field of c in one pass and returns the contract
// parameters, or a *ValidationError naming all failing fields.
func Validate(c Candidate) (models.ContractParameters, error) {
	verr := &ValidationError{}

	required := []struct {
		name  string
		value string
	}{
		{models.FieldTenantName, c.TenantName},
		{models.FieldLandlordName, c.LandlordName},
		{models.FieldAddress, c.Address},
		{models.FieldStartDate, c.StartDate},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			verr.Missing = append(verr.Missing, f.name)
		}
	}

	rent, ok := ParseAmount(c.Rent)
	if !ok || rent < 0 {
		verr.Invalid = append(verr.Invalid, models.FieldRent)
	}
	deposit, ok := ParseAmount(c.SecurityDeposit)
	if !ok || deposit < 0 {
		verr.Invalid = append(verr.Invalid, models.FieldSecurityDeposit)
	}
	duration, ok := ParseInt(c.DurationMonths)
	if !ok || duration <= 0 {
		verr.Invalid = append(verr.Invalid, models.FieldDurationMonths)
	}

	if len(verr.Missing) > 0 || len(verr.Invalid) > 0 {
		return models.ContractParameters{}, verr
	}

	return models.ContractParameters{
		TenantName:      strings.TrimSpace(c.TenantName),
		LandlordName:    strings.TrimSpace(c.LandlordName),
		Rent:            rent,
		SecurityDeposit: deposit,
		DurationMonths:  duration,
		Address:         strings.TrimSpace(c.Address),
		StartDate:       strings.TrimSpace(c.StartDate),
	}, nil
}
