package tasks

import (
	"errors"
	"testing"
	"time"

	"modbot/model"
	"modbot/utils/database/cases"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMembers struct {
	guilds   map[string]bool
	banned   map[string]bool
	banErr   error
	unbanErr error
	unbanned []string
}

func (m *fakeMembers) ApplyTimeout(guildID, subjectID string, seconds int64, reason string) error {
	return nil
}

func (m *fakeMembers) Kick(guildID, subjectID, reason string) error { return nil }

func (m *fakeMembers) Ban(guildID, subjectID, reason string, retentionDays int) error { return nil }

func (m *fakeMembers) Unban(guildID, subjectID, reason string) error {
	if m.unbanErr != nil {
		return m.unbanErr
	}
	m.unbanned = append(m.unbanned, subjectID)
	return nil
}

func (m *fakeMembers) IsBanned(guildID, subjectID string) (bool, error) {
	if m.banErr != nil {
		return false, m.banErr
	}
	return m.banned[subjectID], nil
}

func (m *fakeMembers) GuildExists(guildID string) bool { return m.guilds[guildID] }

type fakeModlog struct {
	published []*model.Case
}

func (m *fakeModlog) Publish(c *model.Case) error {
	m.published = append(m.published, c)
	return nil
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

func newExpirer(t *testing.T, members *fakeMembers) (*TempbanExpirer, *fakeModlog) {
	t.Helper()
	db, err := cases.Init(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	modlog := &fakeModlog{}
	return &TempbanExpirer{
		DB:      db,
		Members: members,
		Modlog:  modlog,
		Clock:   fixedClock{now: time.Now()},
	}, modlog
}

func addTempban(t *testing.T, db *sqlx.DB, guildID, subjectID string, expiresAt time.Time) int64 {
	t.Helper()
	id, err := cases.CreateCase(db, model.Case{
		GuildID:   guildID,
		Type:      model.CaseTypeTempban,
		SubjectID: subjectID,
		ActorID:   "mod1",
		Reason:    "Repeated spam",
		ExpiresAt: expiresAt.Unix(),
	})
	require.NoError(t, err)
	return id
}

func TestProcessExpiredLiftsBan(t *testing.T) {
	members := &fakeMembers{
		guilds: map[string]bool{"g1": true},
		banned: map[string]bool{"u1": true},
	}
	e, modlog := newExpirer(t, members)
	addTempban(t, e.DB, "g1", "u1", time.Now().Add(-time.Hour))

	e.ProcessExpired()

	assert.Equal(t, []string{"u1"}, members.unbanned)

	// An unban case was recorded against the system actor.
	records, err := cases.GetCasesByUser(e.DB, "u1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, model.CaseTypeUnban, records[0].Type)
	assert.Equal(t, model.SystemActorID, records[0].ActorID)

	require.Len(t, modlog.published, 1)
	assert.Equal(t, model.CaseTypeUnban, modlog.published[0].Type)
}

func TestProcessExpiredSkipsFutureBans(t *testing.T) {
	members := &fakeMembers{
		guilds: map[string]bool{"g1": true},
		banned: map[string]bool{"u1": true},
	}
	e, _ := newExpirer(t, members)
	addTempban(t, e.DB, "g1", "u1", time.Now().Add(time.Hour))

	e.ProcessExpired()

	assert.Empty(t, members.unbanned)
}

func TestProcessExpiredNotRepicked(t *testing.T) {
	members := &fakeMembers{
		guilds: map[string]bool{"g1": true},
		banned: map[string]bool{"u1": true},
	}
	e, _ := newExpirer(t, members)
	addTempban(t, e.DB, "g1", "u1", time.Now().Add(-time.Hour))

	e.ProcessExpired()
	members.banned["u1"] = false
	e.ProcessExpired()

	// The second pass finds nothing; one unban call, one unban case.
	assert.Len(t, members.unbanned, 1)
	records, err := cases.GetCasesByUser(e.DB, "u1")
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestProcessExpiredAlreadyUnbanned(t *testing.T) {
	members := &fakeMembers{
		guilds: map[string]bool{"g1": true},
	}
	e, modlog := newExpirer(t, members)
	id := addTempban(t, e.DB, "g1", "u1", time.Now().Add(-time.Hour))

	e.ProcessExpired()

	// The case is resolved without a second unban or an unban entry.
	assert.Empty(t, members.unbanned)
	assert.Empty(t, modlog.published)

	c, err := cases.GetCaseByID(e.DB, id)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Zero(t, c.ExpiresAt)

	expired, err := cases.GetExpiredTempbans(e.DB, time.Now())
	require.NoError(t, err)
	assert.Empty(t, expired)
}

func TestProcessExpiredUnknownGuildLeftPending(t *testing.T) {
	members := &fakeMembers{guilds: map[string]bool{}}
	e, _ := newExpirer(t, members)
	addTempban(t, e.DB, "gone", "u1", time.Now().Add(-time.Hour))

	e.ProcessExpired()

	// Unresolvable guilds are skipped, not resolved, so a later tick can
	// retry once the guild is reachable again.
	expired, err := cases.GetExpiredTempbans(e.DB, time.Now())
	require.NoError(t, err)
	assert.Len(t, expired, 1)
}

func TestProcessExpiredItemFailureDoesNotStopBatch(t *testing.T) {
	members := &fakeMembers{
		guilds: map[string]bool{"g1": true, "g2": true},
		banned: map[string]bool{"u1": true, "u2": true},
	}
	e, _ := newExpirer(t, members)
	addTempban(t, e.DB, "gone", "u0", time.Now().Add(-3*time.Hour))
	addTempban(t, e.DB, "g1", "u1", time.Now().Add(-2*time.Hour))
	addTempban(t, e.DB, "g2", "u2", time.Now().Add(-time.Hour))

	e.ProcessExpired()

	assert.ElementsMatch(t, []string{"u1", "u2"}, members.unbanned)
}

func TestProcessExpiredBanCheckFailure(t *testing.T) {
	members := &fakeMembers{
		guilds: map[string]bool{"g1": true},
		banErr: errors.New("api unavailable"),
	}
	e, _ := newExpirer(t, members)
	addTempban(t, e.DB, "g1", "u1", time.Now().Add(-time.Hour))

	e.ProcessExpired()

	// The item stays pending for the next tick.
	expired, err := cases.GetExpiredTempbans(e.DB, time.Now())
	require.NoError(t, err)
	assert.Len(t, expired, 1)
}
