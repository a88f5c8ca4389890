package models

// ContractParameters holds the validated inputs of a lease contract.
// Values are only built by the contract validator, never from raw form input.
type ContractParameters struct {
	TenantName      string  `json:"tenant_name"`
	LandlordName    string  `json:"landlord_name"`
	Rent            float64 `json:"rent"`
	SecurityDeposit float64 `json:"security_deposit"`
	DurationMonths  int     `json:"duration_months"`
	Address         string  `json:"address"`
	StartDate       string  `json:"start_date"`
}

// ModelChoice is one selectable entry of the model catalog
type ModelChoice struct {
	ID    string `json:"id" yaml:"id"`
	Label string `json:"label" yaml:"label"`
}

// Form field names shared by the intake, the validator and the HTML views
const (
	FieldTenantName      = "tenant_name"
	FieldLandlordName    = "landlord_name"
	FieldRent            = "rent"
	FieldSecurityDeposit = "security_deposit"
	FieldDurationMonths  = "duration_months"
	FieldAddress         = "address"
	FieldStartDate       = "start_date"

	FieldModelID       = "model_id"
	FieldModelIDCustom = "model_id_custom"
	FieldTemperature   = "temperature"
	FieldContractText  = "contract_text"
)

// CustomModelOption is the select value asking for the free-text model id
const CustomModelOption = "__custom__"
