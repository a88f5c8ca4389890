package contract

import (
	"testing"

	"github.com/contractui/api/internal/models"
	"github.com/stretchr/testify/assert"
)

func sampleParameters() models.ContractParameters {
	return models.ContractParameters{
		TenantName:      "Amine Benali",
		LandlordName:    "Sara El Idrissi",
		Rent:            7000,
		SecurityDeposit: 14000.5,
		DurationMonths:  12,
		Address:         "12 rue des Orangers, Rabat",
		StartDate:       "2026-11-01",
	}
}

func TestBuildPromptEmbedsEveryField(t *testing.T) {
	p := sampleParameters()
	prompt := BuildPrompt(p)

	for _, value := range []string{
		p.TenantName,
		p.LandlordName,
		"7000 MAD",
		"14000.5 MAD",
		"12 mois",
		p.Address,
		p.StartDate,
	} {
		assert.Contains(t, prompt, value)
	}
	assert.Contains(t, prompt, "Pas de JSON ni de code block")
	assert.Contains(t, prompt, "en français")
}

func TestBuildPromptIsDeterministic(t *testing.T) {
	p := sampleParameters()

	first := BuildPrompt(p)
	assert.Equal(t, first, BuildPrompt(p))
	assert.Equal(t, first, BuildPrompt(sampleParameters()))
}

func TestBuildPromptIsTrimmed(t *testing.T) {
	prompt := BuildPrompt(sampleParameters())

	assert.NotEqual(t, ' ', prompt[0])
	assert.NotEqual(t, '\n', prompt[len(prompt)-1])
}
