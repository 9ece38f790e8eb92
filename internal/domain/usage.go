package domain

// NearLimitPercent is where a meter starts warning.
const NearLimitPercent = 80.0

// DefaultPlanName is shown when the current plan cannot be resolved.
const DefaultPlanName = "Free"

type UsageMeter struct {
	Label     string  `json:"label"`
	Used      int     `json:"used"`
	Limit     int     `json:"limit"`
	Percent   float64 `json:"percent"`
	NearLimit bool    `json:"nearLimit"`
	Reached   bool    `json:"reached"`
}

// NewUsageMeter computes the derived fields. A limit <= 0 means the plan
// does not bound the resource.
func NewUsageMeter(label string, used, limit int) UsageMeter {
	m := UsageMeter{Label: label, Used: used, Limit: limit}
	if limit <= 0 {
		return m
	}
	m.Percent = float64(used) / float64(limit) * 100
	if m.Percent > 100 {
		m.Percent = 100
	}
	m.NearLimit = m.Percent >= NearLimitPercent
	m.Reached = used >= limit
	return m
}

// PlanUsage builds the three resource meters shown on the dashboard.
func PlanUsage(plan *Plan, stats LogStats) []UsageMeter {
	if plan == nil {
		return nil
	}
	return []UsageMeter{
		NewUsageMeter("Templates", stats.TemplateCount, plan.TemplateLimit),
		NewUsageMeter("SMTP Configs", stats.SMTPCount, plan.SMTPLimit),
		NewUsageMeter("API Keys", stats.APIKeyCount, plan.APIKeyLimit),
	}
}

// PlanName returns the plan's display name or the default.
func PlanName(p *Plan) string {
	if p == nil || p.Name == "" {
		return DefaultPlanName
	}
	return p.Name
}
