package usecase

import (
	"mediops/internal/adapter/tool"
	"mediops/internal/domain"
)

// agentDescriptions are the one-line domain summaries the classifier
// enumerates when delegating a request.
var agentDescriptions = map[domain.AgentID]string{
	domain.AgentAdmission:  "patient admission, bed assignment, transfers, and intake paperwork",
	domain.AgentScheduling: "appointments, staff rosters, and operating-room scheduling",
	domain.AgentPharmacy:   "medication orders, prescriptions, stock, and drug interactions",
	domain.AgentBilling:    "invoices, insurance claims, cost estimates, and payment questions",
}

// personaSpec binds a specialist to its system instruction and tool surface.
// The tool set is fixed at dispatch time and never changes mid-call.
type personaSpec struct {
	Instruction string
	Tools       []domain.ToolSchema
	Search      bool
}

// genericPersona handles identifiers outside the dispatch table.
var genericPersona = personaSpec{
	Instruction: "You are a helpful hospital operations assistant. Answer concisely and defer clinical judgement to qualified staff.",
}

// defaultPersonas returns the persona/tool dispatch table. Adding a
// specialist is a data change here plus a constant in the domain package.
func defaultPersonas() map[domain.AgentID]personaSpec {
	docTool := tool.DocumentTool()

	return map[domain.AgentID]personaSpec{
		domain.AgentAdmission: {
			Instruction: "You are the admission coordinator of a hospital operations desk. " +
				"Handle patient admission, bed assignment, transfer, and intake requests. " +
				"When the user needs intake paperwork, call create_document with docType ADMISSION_FORM " +
				"(or MEMO for internal notes) and include a compliance footer. " +
				"Never invent clinical data; ask for missing details instead.",
			Tools: []domain.ToolSchema{docTool},
		},
		domain.AgentScheduling: {
			Instruction: "You are the scheduling assistant of a hospital operations desk. " +
				"Handle appointment, roster, and operating-room scheduling requests. " +
				"Use web search when the request depends on external information such as clinic hours or public holidays, " +
				"and cite your sources. Do not generate documents.",
			Search: true,
		},
		domain.AgentPharmacy: {
			Instruction: "You are the pharmacy assistant of a hospital operations desk. " +
				"Handle medication orders, stock, and interaction questions. " +
				"When asked to prepare a prescription, call create_document with docType PRESCRIPTION and a compliance footer " +
				"stating that a licensed pharmacist must verify it. " +
				"Use web search for drug reference questions and cite your sources.",
			Tools:  []domain.ToolSchema{docTool},
			Search: true,
		},
		domain.AgentBilling: {
			Instruction: "You are the billing assistant of a hospital operations desk. " +
				"Handle invoices, insurance claims, and cost estimates. " +
				"When the user asks for an invoice or cost statement, call create_document with docType INVOICE " +
				"(or MEMO for internal summaries) and include a compliance footer. " +
				"Quote amounts exactly as provided; never estimate silently.",
			Tools: []domain.ToolSchema{docTool},
		},
	}
}

// personaFor resolves a specialist's persona, falling back to the generic
// assistant for identifiers outside the table.
func personaFor(personas map[domain.AgentID]personaSpec, agent domain.AgentID) personaSpec {
	if spec, ok := personas[agent]; ok {
		return spec
	}
	return genericPersona
}
