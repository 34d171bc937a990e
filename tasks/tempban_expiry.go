package tasks

import (
	"log"
	"sync/atomic"
	"time"

	"modbot/model"
	"modbot/utils/database/cases"

	"github.com/jmoiron/sqlx"
)

// TempbanExpirer polls the case ledger for tempbans whose expiry has
// passed and lifts them. A tick that starts while the previous one is
// still running is skipped; the per-item "still banned?" check keeps
// processing idempotent regardless.
type TempbanExpirer struct {
	DB      *sqlx.DB
	Members model.MemberGateway
	Modlog  model.ModlogSink
	Clock   model.Clock

	Interval time.Duration

	inFlight atomic.Bool
}

// Run processes expired tempbans on a fixed interval until done is closed.
func (t *TempbanExpirer) Run(done <-chan struct{}) {
	interval := t.Interval
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if !t.inFlight.CompareAndSwap(false, true) {
				log.Println("Tempban expiry tick still running, skipping")
				continue
			}
			t.ProcessExpired()
			t.inFlight.Store(false)
		case <-done:
			return
		}
	}
}

// ProcessExpired handles one batch of expired tempbans. Per-item failures
// are logged and never stop the remaining items.
func (t *TempbanExpirer) ProcessExpired() {
	expired, err := cases.GetExpiredTempbans(t.DB, t.Clock.Now())
	if err != nil {
		log.Printf("Failed to fetch expired tempbans: %v", err)
		return
	}
	if len(expired) == 0 {
		return
	}

	for _, c := range expired {
		t.processOne(c)
	}
}

func (t *TempbanExpirer) processOne(c model.Case) {
	if c.GuildID == "" || !t.Members.GuildExists(c.GuildID) {
		log.Printf("Cannot resolve guild for expired tempban case %d, skipping", c.ID)
		return
	}

	banned, err := t.Members.IsBanned(c.GuildID, c.SubjectID)
	if err != nil {
		log.Printf("Failed to check ban state for user %s (case %d): %v", c.SubjectID, c.ID, err)
		return
	}

	if banned {
		if err := t.Members.Unban(c.GuildID, c.SubjectID, "Temporary ban expired"); err != nil {
			log.Printf("Failed to unban user %s (case %d): %v", c.SubjectID, c.ID, err)
			return
		}
	}
	// Manually unbanned already is not an error; the case is still
	// resolved below so it is not picked up again.

	if err := cases.ClearTempbanExpiry(t.DB, c.ID); err != nil {
		log.Printf("Failed to mark tempban case %d processed: %v", c.ID, err)
		return
	}

	if !banned {
		return
	}

	unbanID, err := cases.CreateCase(t.DB, model.Case{
		GuildID:    c.GuildID,
		Type:       model.CaseTypeUnban,
		SubjectID:  c.SubjectID,
		SubjectTag: c.SubjectTag,
		ActorID:    model.SystemActorID,
		ActorTag:   "AutoMod",
		Reason:     "Temporary ban expired",
	})
	if err != nil {
		log.Printf("Failed to record unban case for user %s: %v", c.SubjectID, err)
		return
	}

	if t.Modlog != nil {
		if unbanCase, err := cases.GetCaseByID(t.DB, unbanID); err == nil && unbanCase != nil {
			if err := t.Modlog.Publish(unbanCase); err != nil {
				log.Printf("Failed to publish unban case %d to modlog: %v", unbanID, err)
			}
		}
	}
}
