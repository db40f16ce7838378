package services

import (
	"fmt"
	"sort"
	"strings"

	"club-membership/internal/core/domain"
)

// TierPolicy decides how many qualifying threshold tiers award points
type TierPolicy string

const (
	// TierStack awards every qualifying tier (shipped behavior)
	TierStack TierPolicy = "stack"
	// TierHighest awards only the highest qualifying tier
	TierHighest TierPolicy = "highest"
)

// ParseTierPolicy parses a tier policy name
func ParseTierPolicy(s string) (TierPolicy, error) {
	switch TierPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", TierStack:
		return TierStack, nil
	case TierHighest:
		return TierHighest, nil
	}
	return "", fmt.Errorf("unknown tier policy %q (must be 'stack' or 'highest')", s)
}

// EvaluationPolicy holds the tunable parts of rule evaluation
type EvaluationPolicy struct {
	Tiers          TierPolicy
	ApplyMaxPoints bool
}

// DefaultEvaluationPolicy stacks tiers and clamps each event type to its MaxPoints
func DefaultEvaluationPolicy() EvaluationPolicy {
	return EvaluationPolicy{
		Tiers:          TierStack,
		ApplyMaxPoints: true,
	}
}

// ruleHandler returns the points one bucket of same-kind rules awards for an event type
type ruleHandler func(events []domain.AttendanceRecord, bucket []domain.Rule, eventType domain.EventTypeConfig) float64

// RuleEvaluator turns attendance plus rule configuration into a status verdict.
// It holds no mutable state and is safe for concurrent use.
type RuleEvaluator struct {
	policy EvaluationPolicy
}

// NewRuleEvaluator creates a new rule evaluator
func NewRuleEvaluator(policy EvaluationPolicy) *RuleEvaluator {
	if policy.Tiers == "" {
		policy.Tiers = TierStack
	}
	return &RuleEvaluator{policy: policy}
}

// Policy returns the evaluator's policy
func (e *RuleEvaluator) Policy() EvaluationPolicy {
	return e.policy
}

// Evaluate scores the records in points mode:
// active iff total points >= requiredPoints.
func (e *RuleEvaluator) Evaluate(records []domain.AttendanceRecord, cfg domain.RuleConfig, requiredPoints float64) domain.StatusVerdict {
	verdict := e.score(records, cfg)
	verdict.Status = domain.VerdictInactive
	if verdict.TotalPoints >= requiredPoints {
		verdict.Status = domain.VerdictActive
	}
	return verdict
}

// EvaluateCriteria scores the records in criteria mode: every Criteria event type
// with a positive subtotal counts as one satisfied criterion.
func (e *RuleEvaluator) EvaluateCriteria(records []domain.AttendanceRecord, cfg domain.RuleConfig, requiredCriteria float64) domain.StatusVerdict {
	verdict := e.score(records, cfg)

	for i, et := range cfg.EventTypes {
		if et.RuleType == domain.RuleTypeCriteria && verdict.Breakdown[i].Points > 0 {
			verdict.CriteriaMet++
		}
	}

	verdict.Status = domain.VerdictInactive
	if float64(verdict.CriteriaMet) >= requiredCriteria {
		verdict.Status = domain.VerdictActive
	}
	return verdict
}

// EvaluateRequirement dispatches on the requirement mode
func (e *RuleEvaluator) EvaluateRequirement(records []domain.AttendanceRecord, cfg domain.RuleConfig, req domain.ActiveRequirement) domain.StatusVerdict {
	if req.Mode == domain.RequirementCriteria {
		return e.EvaluateCriteria(records, cfg, req.Value)
	}
	return e.Evaluate(records, cfg, req.Value)
}

// score builds the breakdown; Breakdown[i] always belongs to cfg.EventTypes[i]
func (e *RuleEvaluator) score(records []domain.AttendanceRecord, cfg domain.RuleConfig) domain.StatusVerdict {
	groups := make(map[string][]domain.AttendanceRecord)
	for _, r := range records {
		groups[r.EventType] = append(groups[r.EventType], r)
	}

	verdict := domain.StatusVerdict{
		Breakdown: make([]domain.BreakdownEntry, 0, len(cfg.EventTypes)),
	}

	for _, et := range cfg.EventTypes {
		events := groups[et.Name]
		subtotal := e.scoreEventType(events, et)

		entry := domain.BreakdownEntry{EventType: et.Name, Points: subtotal}
		if e.policy.ApplyMaxPoints && et.MaxPoints != nil && subtotal > *et.MaxPoints {
			entry.Capped = true
			entry.Uncapped = subtotal
			entry.Points = *et.MaxPoints
		}

		verdict.Breakdown = append(verdict.Breakdown, entry)
		verdict.TotalPoints += entry.Points
	}

	return verdict
}

// scoreEventType partitions the rules by criteria and sums every bucket
func (e *RuleEvaluator) scoreEventType(events []domain.AttendanceRecord, et domain.EventTypeConfig) float64 {
	var kinds []domain.RuleCriteria
	buckets := make(map[domain.RuleCriteria][]domain.Rule)
	for _, rule := range et.Rules {
		if _, seen := buckets[rule.Criteria]; !seen {
			kinds = append(kinds, rule.Criteria)
		}
		buckets[rule.Criteria] = append(buckets[rule.Criteria], rule)
	}

	var subtotal float64
	for _, kind := range kinds {
		handler := e.handlerFor(kind)
		if handler == nil {
			continue
		}
		subtotal += handler(events, buckets[kind], et)
	}
	return subtotal
}

func (e *RuleEvaluator) handlerFor(kind domain.RuleCriteria) ruleHandler {
	switch kind {
	case domain.CriteriaAttendance:
		return e.attendancePoints
	case domain.CriteriaOneOff:
		return e.oneOffPoints
	case domain.CriteriaMinimumPercentage:
		return e.percentagePoints
	case domain.CriteriaMinimumHours:
		return e.hoursPoints
	default:
		// unknown criteria award nothing
		return nil
	}
}

// attendancePoints awards the bucket's points once per attended event
func (e *RuleEvaluator) attendancePoints(events []domain.AttendanceRecord, bucket []domain.Rule, _ domain.EventTypeConfig) float64 {
	return float64(len(events)) * sumPoints(bucket)
}

// oneOffPoints awards the bucket's points once if anything was attended
func (e *RuleEvaluator) oneOffPoints(events []domain.AttendanceRecord, bucket []domain.Rule, _ domain.EventTypeConfig) float64 {
	if len(events) == 0 {
		return 0
	}
	return sumPoints(bucket)
}

// percentagePoints compares the attendance rate against each tier.
// Without an occurrence total there is no rate and nothing is awarded.
func (e *RuleEvaluator) percentagePoints(events []domain.AttendanceRecord, bucket []domain.Rule, et domain.EventTypeConfig) float64 {
	if et.OccurrenceTotal == nil || *et.OccurrenceTotal == 0 {
		return 0
	}
	rate := float64(len(events)) / float64(*et.OccurrenceTotal)
	return e.tierPoints(sortTiers(bucket), rate)
}

// hoursPoints compares each event's hours against each tier
func (e *RuleEvaluator) hoursPoints(events []domain.AttendanceRecord, bucket []domain.Rule, _ domain.EventTypeConfig) float64 {
	tiers := sortTiers(bucket)

	var points float64
	for _, ev := range events {
		var hours float64
		if ev.Hours != nil {
			hours = *ev.Hours
		}
		points += e.tierPoints(tiers, hours)
	}
	return points
}

// tierPoints walks tiers (highest first) and awards every tier at or below value
func (e *RuleEvaluator) tierPoints(tiers []domain.Rule, value float64) float64 {
	var points float64
	for _, rule := range tiers {
		if criteriaValue(rule) <= value {
			points += rule.PointValue
			if e.policy.Tiers == TierHighest {
				break
			}
		}
	}
	return points
}

// sortTiers returns a copy of the bucket ordered by criteria value, highest first
func sortTiers(bucket []domain.Rule) []domain.Rule {
	tiers := make([]domain.Rule, len(bucket))
	copy(tiers, bucket)
	sort.SliceStable(tiers, func(i, j int) bool {
		return criteriaValue(tiers[i]) > criteriaValue(tiers[j])
	})
	return tiers
}

// criteriaValue treats a missing threshold as zero
func criteriaValue(rule domain.Rule) float64 {
	if rule.CriteriaValue == nil {
		return 0
	}
	return *rule.CriteriaValue
}

func sumPoints(bucket []domain.Rule) float64 {
	var sum float64
	for _, rule := range bucket {
		sum += rule.PointValue
	}
	return sum
}
