package domain

import "fmt"

// AgentID identifies one of the fixed hospital-operations agents.
// The set is closed: adding a specialist means adding a constant here
// and a persona entry in the executor's dispatch table.
type AgentID string

const (
	// AgentRouter is the orchestration role. It classifies requests and
	// never produces user-facing content itself.
	AgentRouter AgentID = "router"

	AgentAdmission  AgentID = "admission"
	AgentScheduling AgentID = "scheduling"
	AgentPharmacy   AgentID = "pharmacy"
	AgentBilling    AgentID = "billing"
)

// specialists is the ordered set of agents the router may delegate to.
var specialists = []AgentID{
	AgentAdmission,
	AgentScheduling,
	AgentPharmacy,
	AgentBilling,
}

// Specialists returns the ordered list of specialist agent IDs.
// The returned slice is a copy.
func Specialists() []AgentID {
	out := make([]AgentID, len(specialists))
	copy(out, specialists)
	return out
}

// Specialist reports whether id is a delegatable specialist
// (i.e. any known agent except the router).
func (id AgentID) Specialist() bool {
	for _, s := range specialists {
		if s == id {
			return true
		}
	}
	return false
}

// ParseAgentID validates a raw identifier against the closed agent set.
func ParseAgentID(raw string) (AgentID, error) {
	id := AgentID(raw)
	if id == AgentRouter || id.Specialist() {
		return id, nil
	}
	return "", NewDomainError("ParseAgentID", ErrUnknownAgent, raw)
}

// DelegationDecision is the router's verdict for a single user turn:
// exactly one specialist plus a short rationale. It is consumed once
// and never persisted.
type DelegationDecision struct {
	Agent     AgentID `json:"agent"`
	Rationale string  `json:"rationale"`
}

func (d DelegationDecision) String() string {
	return fmt.Sprintf("%s (%s)", d.Agent, d.Rationale)
}
