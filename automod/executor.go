package automod

import (
	"fmt"
	"log"

	"modbot/model"
	"modbot/utils"
	"modbot/utils/database/cases"

	"github.com/jmoiron/sqlx"
)

// Incident describes one enforcement event about to be executed.
type Incident struct {
	GuildID    string
	CaseType   string
	SubjectID  string
	SubjectTag string
	ActorID    string
	ActorTag   string
	Reason     string

	// TimeoutDuration is the configured duration spec applied when the
	// action list contains a timeout.
	TimeoutDuration string
}

// Executor runs configured action lists and records each incident as a
// single case. It is shared by the filter pipeline and the warning
// escalation engine.
type Executor struct {
	DB       *sqlx.DB
	Oracle   model.CapabilityOracle
	Members  model.MemberGateway
	Notifier model.Notifier
	Modlog   model.ModlogSink
}

// Execute applies every action in order. One case is created lazily on the
// first action that needs it and reused for the rest, so one incident stays
// one ledger entry. Per-action failures are logged and do not stop the
// remaining actions; only the case insertion itself is a hard failure.
func (e *Executor) Execute(inc Incident, actions []model.Action) (int64, error) {
	// Resolve the timeout duration up front so the lazily created case
	// already carries it; everything but the reason is immutable after
	// insertion.
	var timeoutSeconds int64
	timeoutEligible := false
	if containsAction(actions, model.ActionTimeout) && inc.TimeoutDuration != "" {
		seconds, err := utils.ParseDurationSpec(inc.TimeoutDuration)
		if err != nil {
			log.Printf("Invalid timeout duration %q for guild %s: %v", inc.TimeoutDuration, inc.GuildID, err)
		} else if e.Oracle.CanTimeout(inc.GuildID, inc.SubjectID) {
			timeoutSeconds = seconds
			timeoutEligible = true
		} else {
			log.Printf("Skipping timeout for user %s in guild %s: insufficient standing", inc.SubjectID, inc.GuildID)
		}
	}

	var caseID int64
	ensureCase := func() error {
		if caseID != 0 {
			return nil
		}
		id, err := cases.CreateCase(e.DB, model.Case{
			GuildID:         inc.GuildID,
			Type:            inc.CaseType,
			SubjectID:       inc.SubjectID,
			SubjectTag:      inc.SubjectTag,
			ActorID:         inc.ActorID,
			ActorTag:        inc.ActorTag,
			Reason:          inc.Reason,
			DurationSeconds: timeoutSeconds,
		})
		if err != nil {
			return fmt.Errorf("failed to create case for %s: %w", inc.SubjectID, err)
		}
		caseID = id
		return nil
	}

	for _, action := range actions {
		switch action {
		case model.ActionDelete:
			// Message deletion already happened in the triggering
			// stage; the action only guarantees a ledger entry.
			if err := ensureCase(); err != nil {
				return 0, err
			}
		case model.ActionWarn:
			if err := ensureCase(); err != nil {
				return 0, err
			}
			content := fmt.Sprintf("You have been warned: %s", inc.Reason)
			if err := e.Notifier.SendDirectMessage(inc.SubjectID, content); err != nil {
				// Best-effort: the user may have DMs closed.
				log.Printf("Failed to notify user %s: %v", inc.SubjectID, err)
			}
		case model.ActionTimeout:
			if !timeoutEligible {
				continue
			}
			if err := ensureCase(); err != nil {
				return 0, err
			}
			if err := e.Members.ApplyTimeout(inc.GuildID, inc.SubjectID, timeoutSeconds, inc.Reason); err != nil {
				log.Printf("Failed to timeout user %s: %v", inc.SubjectID, err)
			}
		case model.ActionKick:
			if !e.Oracle.CanKick(inc.GuildID, inc.SubjectID) {
				log.Printf("Skipping kick for user %s in guild %s: insufficient standing", inc.SubjectID, inc.GuildID)
				continue
			}
			if err := ensureCase(); err != nil {
				return 0, err
			}
			if err := e.Members.Kick(inc.GuildID, inc.SubjectID, inc.Reason); err != nil {
				log.Printf("Failed to kick user %s: %v", inc.SubjectID, err)
			}
		}
	}

	if caseID != 0 && e.Modlog != nil {
		c, err := cases.GetCaseByID(e.DB, caseID)
		if err != nil || c == nil {
			log.Printf("Failed to load case %d for modlog: %v", caseID, err)
		} else if err := e.Modlog.Publish(c); err != nil {
			log.Printf("Failed to publish case %d to modlog: %v", caseID, err)
		}
	}

	return caseID, nil
}

func containsAction(actions []model.Action, target model.Action) bool {
	for _, a := range actions {
		if a == target {
			return true
		}
	}
	return false
}
