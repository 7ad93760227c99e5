package engine

import "math"

// Domain is a concrete life-outcome area.
type Domain string

const (
	DomainFinancial     Domain = "financial"
	DomainRespect       Domain = "respect"
	DomainRelationships Domain = "relationships"
	DomainOpportunities Domain = "opportunities"
)

// Domains lists the concrete domains in presentation order.
var Domains = []Domain{DomainFinancial, DomainRespect, DomainRelationships, DomainOpportunities}

const (
	murphyMultiplier       = 0.7
	unpredictabilityFactor = 0.4
	influenceFactor        = 0.3
)

// OutcomeRange is the probability range, in percent, for one domain.
type OutcomeRange struct {
	Optimistic  int    `json:"optimistic"`
	Realistic   int    `json:"realistic"`
	Pessimistic int    `json:"pessimistic"`
	Caveat      string `json:"caveat"`
}

// ConcreteProjection holds one range per domain.
type ConcreteProjection map[Domain]OutcomeRange

var caveats = map[Domain]string{
	DomainFinancial:     "Economic collapse, automation displacement, or systemic failure could override all personal efforts",
	DomainRespect:       "Social respect is highly volatile and often depends on factors beyond personal character",
	DomainRelationships: "Even strong personal development cannot guarantee relationship outcomes due to others' unpredictable choices",
	DomainOpportunities: "External forces, timing, and systemic barriers often block opportunities regardless of preparation",
}

// ProjectOutcomes maps an aggregate score onto the concrete domains. Personal
// behavior only moves a fraction of each range and every value is capped.
func ProjectOutcomes(aggregate float64) ConcreteProjection {
	base := aggregate * influenceFactor

	return ConcreteProjection{
		DomainFinancial: {
			Optimistic:  capped(80, base+40),
			Realistic:   capped(60, (base+20)*murphyMultiplier),
			Pessimistic: capped(40, base*murphyMultiplier),
			Caveat:      caveats[DomainFinancial],
		},
		DomainRespect: {
			Optimistic:  capped(70, base+30),
			Realistic:   capped(50, (base+15)*murphyMultiplier),
			Pessimistic: capped(30, base*murphyMultiplier*unpredictabilityFactor),
			Caveat:      caveats[DomainRespect],
		},
		DomainRelationships: {
			Optimistic:  capped(75, base+35),
			Realistic:   capped(55, (base+20)*murphyMultiplier),
			Pessimistic: capped(35, base*murphyMultiplier*unpredictabilityFactor),
			Caveat:      caveats[DomainRelationships],
		},
		DomainOpportunities: {
			Optimistic:  capped(65, base+25),
			Realistic:   capped(45, (base+10)*murphyMultiplier),
			Pessimistic: capped(25, base*murphyMultiplier*unpredictabilityFactor),
			Caveat:      caveats[DomainOpportunities],
		},
	}
}

func capped(ceiling, v float64) int {
	return int(math.Round(math.Min(ceiling, v)))
}
