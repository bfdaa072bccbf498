package textgen

import (
	"fmt"
	"strings"

	"EcoTrack/internal/domain/models"
)

const systemPrompt = "You are an expert in corporate sustainability and carbon footprint reduction. " +
	"Give concrete, actionable recommendations."

// buildPrompt describes the company and asks for a JSON array the parser understands.
func buildPrompt(p models.CompanyProfile) string {
	var sb strings.Builder
	sb.WriteString("Analyse the following carbon footprint data and give 3 to 5 concrete recommendations.\n\n")
	fmt.Fprintf(&sb, "- Company: %s\n", p.CompanyName)
	fmt.Fprintf(&sb, "- Sector: %s\n", p.Sector)
	fmt.Fprintf(&sb, "- Total emissions: %.2f tonnes CO2\n", p.TotalEmissions)
	fmt.Fprintf(&sb, "- Scope 1: %.2f tonnes CO2\n", p.Scope1)
	fmt.Fprintf(&sb, "- Scope 2: %.2f tonnes CO2\n", p.Scope2)
	fmt.Fprintf(&sb, "- Scope 3: %.2f tonnes CO2\n", p.Scope3)
	fmt.Fprintf(&sb, "- Employees: %d\n", p.Employees)
	fmt.Fprintf(&sb, "- Revenue: %.0f EUR\n", p.Revenue)
	fmt.Fprintf(&sb, "- Reduction target: %.1f%%\n", p.ReductionTarget)
	fmt.Fprintf(&sb, "- Current reduction: %.1f%%\n", p.CurrentReduction)
	sb.WriteString("\nRecommendations must be specific, measurable and suited to the sector.\n")
	sb.WriteString("Answer with a JSON array only. Each element has the fields ")
	sb.WriteString(`"title" (string), "impact" ("low"|"medium"|"high"), "potential_reduction_percent" (number), `)
	sb.WriteString(`"cost" ("low"|"medium"|"high"), "timeframe" (string), "roi" (number).`)
	return sb.String()
}
