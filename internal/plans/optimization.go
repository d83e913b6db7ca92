package plans

// OptimizationResult captures recommendations produced after plan building.
// It lives for one planning pass and is not persisted separately.
type OptimizationResult struct {
	Recommendations  []string `json:"recommendations"`
	CostSavings      float64  `json:"cost_savings"`
	ValueAdds        []string `json:"value_adds"`
	FinalPlan        string   `json:"final_plan"`
	ApprovalRequired bool     `json:"approval_required"`
}

// HasSavings reports whether the optimizer found cost savings.
func (o *OptimizationResult) HasSavings() bool { return o.CostSavings > 0 }

// AgentContribution records what one cooperating agent added during a
// group-chat planning round.
type AgentContribution struct {
	AgentName string   `json:"agent_name"`
	KeyPoints []string `json:"key_points"`
	ToolsUsed []string `json:"tools_used"`
}

// ConversationSummary describes how a group-chat planning session concluded.
type ConversationSummary struct {
	ConsensusReached bool     `json:"consensus_reached"`
	Rounds           int      `json:"rounds"`
	FinalDecision    string   `json:"final_decision"`
	DebatedTopics    []string `json:"debated_topics"`
}
