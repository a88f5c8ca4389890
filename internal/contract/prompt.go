package contract

import (
	"fmt"
	"strings"

	"github.com/contractui/api/internal/models"
)

// SystemPrompt is sent as the system message of every generation
const SystemPrompt = "Tu es un assistant juridique et tu rédiges des contrats complets et soignés."

// Currency used for amounts in the prompt
const Currency = "MAD"

const promptTemplate = `Tu es un assistant juridique. Génère un contrat de location (contrat de bail) clair et professionnel.

Paramètres:
- LOCATAIRE: %s
- BAILLEUR: %s
- LOYER_MENSUEL: %s %s
- DEPOT_DE_GARANTIE: %s %s
- DUREE_MOIS: %d mois
- ADRESSE: %s
- DATE_DEBUT: %s

Exigences de sortie:
- Rédige le contrat COMPLET en français, style formel (1–2 pages).
- Pas de JSON ni de code block. Retourne du TEXTE pur prêt à copier.
- Inclure: identité des parties, objet/adresse du bien, durée/renouvellement, loyer et paiement,
  dépôt de garantie, obligations bailleur/locataire, réparations/charges, résiliation/préavis,
  état des lieux, clause de juridiction/applicable, signatures (placeholders).`

// BuildPrompt renders the generation instructions for p. The output only
// depends on p.
func BuildPrompt(p models.ContractParameters) string {
	return strings.TrimSpace(fmt.Sprintf(promptTemplate,
		p.TenantName,
		p.LandlordName,
		FormatAmount(p.Rent), Currency,
		FormatAmount(p.SecurityDeposit), Currency,
		p.DurationMonths,
		p.Address,
		p.StartDate,
	))
}
