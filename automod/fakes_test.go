package automod

import (
	"errors"
	"testing"

	"modbot/model"
	"modbot/utils/database/cases"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := cases.Init(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

type fakeOracle struct {
	timeout bool
	kick    bool
	ban     bool
}

func (o *fakeOracle) CanTimeout(guildID, subjectID string) bool { return o.timeout }
func (o *fakeOracle) CanKick(guildID, subjectID string) bool    { return o.kick }
func (o *fakeOracle) CanBan(guildID, subjectID string) bool     { return o.ban }

type fakeMembers struct {
	timeouts []int64
	kicked   []string
	banned   []string
	unbanned []string
}

func (m *fakeMembers) ApplyTimeout(guildID, subjectID string, seconds int64, reason string) error {
	m.timeouts = append(m.timeouts, seconds)
	return nil
}

func (m *fakeMembers) Kick(guildID, subjectID, reason string) error {
	m.kicked = append(m.kicked, subjectID)
	return nil
}

func (m *fakeMembers) Ban(guildID, subjectID, reason string, retentionDays int) error {
	m.banned = append(m.banned, subjectID)
	return nil
}

func (m *fakeMembers) Unban(guildID, subjectID, reason string) error {
	m.unbanned = append(m.unbanned, subjectID)
	return nil
}

func (m *fakeMembers) IsBanned(guildID, subjectID string) (bool, error) { return false, nil }

func (m *fakeMembers) GuildExists(guildID string) bool { return true }

type fakeNotifier struct {
	fail bool
	sent []string
}

func (n *fakeNotifier) SendDirectMessage(userID, content string) error {
	if n.fail {
		return errors.New("user has DMs closed")
	}
	n.sent = append(n.sent, userID)
	return nil
}

type fakeModlog struct {
	published []*model.Case
}

func (m *fakeModlog) Publish(c *model.Case) error {
	m.published = append(m.published, c)
	return nil
}

type fakeMessages struct {
	deleted []model.MessageRef
	fail    bool
}

func (m *fakeMessages) DeleteMessage(ref model.MessageRef) error {
	if m.fail {
		return errors.New("message already gone")
	}
	m.deleted = append(m.deleted, ref)
	return nil
}
