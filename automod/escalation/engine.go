package escalation

import (
	"fmt"
	"log"

	"modbot/model"
	"modbot/utils"
	"modbot/utils/database/cases"

	"github.com/jmoiron/sqlx"
)

// Engine decides whether a subject's active warnings have crossed a
// configured threshold and applies the resulting action. It is invoked
// after the triggering warn case has already been recorded.
type Engine struct {
	DB       *sqlx.DB
	Oracle   model.CapabilityOracle
	Members  model.MemberGateway
	Notifier model.Notifier
	Modlog   model.ModlogSink
}

// Evaluate returns the threshold action to apply, or nil when no threshold
// is crossed. Category rules are consulted first when the warning carried a
// category; the flat global list is the fallback. Among satisfied rules the
// highest count wins.
func (e *Engine) Evaluate(subjectID, category string, cfg model.ThresholdConfig) (*model.ThresholdAction, error) {
	if category != "" {
		if rules, ok := cfg.Category[category]; ok && len(rules) > 0 {
			warnings, err := cases.GetActiveWarnings(e.DB, subjectID, cfg.DecayDays, category)
			if err != nil {
				return nil, fmt.Errorf("failed to count category warnings: %w", err)
			}
			if ta := selectRule(rules, len(warnings), category); ta != nil {
				return ta, nil
			}
		}
	}

	if len(cfg.Global) == 0 {
		return nil, nil
	}
	warnings, err := cases.GetActiveWarnings(e.DB, subjectID, cfg.DecayDays, "")
	if err != nil {
		return nil, fmt.Errorf("failed to count warnings: %w", err)
	}
	return selectRule(cfg.Global, len(warnings), ""), nil
}

// selectRule picks the satisfied rule with the highest count, i.e. the most
// severe threshold reached, not the first configured.
func selectRule(rules []model.WarningThresholdRule, activeCount int, category string) *model.ThresholdAction {
	var best *model.WarningThresholdRule
	for i := range rules {
		rule := &rules[i]
		if rule.Count <= 0 || rule.Count > activeCount {
			continue
		}
		if best == nil || rule.Count > best.Count {
			best = rule
		}
	}
	if best == nil {
		return nil
	}

	var durationSeconds int64
	if best.Duration != "" {
		seconds, err := utils.ParseDurationSpec(best.Duration)
		if err != nil {
			log.Printf("Invalid threshold duration %q for count %d: %v", best.Duration, best.Count, err)
		} else {
			durationSeconds = seconds
		}
	}

	reason := fmt.Sprintf("Reached %d warnings", best.Count)
	if category != "" {
		reason = fmt.Sprintf("Reached %d warnings in category %s", best.Count, category)
	}

	return &model.ThresholdAction{
		Action:          best.Action,
		DurationSeconds: durationSeconds,
		Reason:          reason,
		ThresholdCount:  best.Count,
	}
}

// ApplyThresholdAction executes the decided action and records it as a
// case. When the capability oracle denies the action, the case is still
// written with an annotated reason so the escalation intent stays
// auditable, and no error is returned.
func (e *Engine) ApplyThresholdAction(guildID, subjectID, subjectTag string, ta *model.ThresholdAction, notify bool) (int64, error) {
	applied := false
	reason := ta.Reason

	switch ta.Action {
	case model.CaseTypeTimeout:
		if !e.Oracle.CanTimeout(guildID, subjectID) {
			reason += " (timeout not applied: insufficient standing)"
		} else if err := e.Members.ApplyTimeout(guildID, subjectID, ta.DurationSeconds, ta.Reason); err != nil {
			log.Printf("Failed to apply threshold timeout to user %s: %v", subjectID, err)
			reason += " (timeout failed)"
		} else {
			applied = true
		}
	case model.CaseTypeKick:
		if !e.Oracle.CanKick(guildID, subjectID) {
			reason += " (kick not applied: insufficient standing)"
		} else if err := e.Members.Kick(guildID, subjectID, ta.Reason); err != nil {
			log.Printf("Failed to apply threshold kick to user %s: %v", subjectID, err)
			reason += " (kick failed)"
		} else {
			applied = true
		}
	case model.CaseTypeBan:
		if !e.Oracle.CanBan(guildID, subjectID) {
			reason += " (ban not applied: insufficient standing)"
		} else if err := e.Members.Ban(guildID, subjectID, ta.Reason, 0); err != nil {
			log.Printf("Failed to apply threshold ban to user %s: %v", subjectID, err)
			reason += " (ban failed)"
		} else {
			applied = true
		}
	default:
		return 0, fmt.Errorf("unknown threshold action %q", ta.Action)
	}

	var durationSeconds int64
	if ta.Action == model.CaseTypeTimeout {
		durationSeconds = ta.DurationSeconds
	}

	caseID, err := cases.CreateCase(e.DB, model.Case{
		GuildID:            guildID,
		Type:               ta.Action,
		SubjectID:          subjectID,
		SubjectTag:         subjectTag,
		ActorID:            model.SystemActorID,
		ActorTag:           "AutoMod",
		Reason:             reason,
		DurationSeconds:    durationSeconds,
		ThresholdTriggered: true,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to record threshold case: %w", err)
	}

	if applied && notify {
		content := fmt.Sprintf("Automatic action: %s. %s", ta.Action, ta.Reason)
		if err := e.Notifier.SendDirectMessage(subjectID, content); err != nil {
			// Best-effort: closed DMs are expected.
			log.Printf("Failed to notify user %s of threshold action: %v", subjectID, err)
		}
	}

	if e.Modlog != nil {
		if c, err := cases.GetCaseByID(e.DB, caseID); err == nil && c != nil {
			if err := e.Modlog.Publish(c); err != nil {
				log.Printf("Failed to publish threshold case %d to modlog: %v", caseID, err)
			}
		}
	}

	return caseID, nil
}
