package automod

import (
	"testing"

	"modbot/model"
	"modbot/utils/database/cases"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteCreatesSingleCase(t *testing.T) {
	db := newTestDB(t)
	modlog := &fakeModlog{}
	e := &Executor{
		DB:       db,
		Oracle:   &fakeOracle{timeout: true},
		Members:  &fakeMembers{},
		Notifier: &fakeNotifier{},
		Modlog:   modlog,
	}

	caseID, err := e.Execute(Incident{
		GuildID:         "g1",
		CaseType:        model.CaseTypeAutomodSpam,
		SubjectID:       "u1",
		ActorID:         model.SystemActorID,
		Reason:          "Spam detected",
		TimeoutDuration: "10m",
	}, []model.Action{model.ActionDelete, model.ActionWarn, model.ActionTimeout})
	require.NoError(t, err)
	require.Greater(t, caseID, int64(0))

	// One incident, one ledger entry, even with three actions.
	records, err := cases.GetCasesByUser(db, "u1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, caseID, records[0].ID)
	assert.Equal(t, int64(600), records[0].DurationSeconds)

	require.Len(t, modlog.published, 1)
	assert.Equal(t, caseID, modlog.published[0].ID)
}

func TestExecuteTimeoutIneligible(t *testing.T) {
	db := newTestDB(t)
	members := &fakeMembers{}
	e := &Executor{
		DB:       db,
		Oracle:   &fakeOracle{}, // cannot timeout
		Members:  members,
		Notifier: &fakeNotifier{},
	}

	caseID, err := e.Execute(Incident{
		GuildID:         "g1",
		CaseType:        model.CaseTypeAutomodFilter,
		SubjectID:       "u1",
		ActorID:         model.SystemActorID,
		Reason:          "Banned word",
		TimeoutDuration: "10m",
	}, []model.Action{model.ActionDelete, model.ActionTimeout})
	require.NoError(t, err)

	// The ineligible timeout is skipped without failing the list; the
	// case carries no duration.
	assert.Empty(t, members.timeouts)
	c, err := cases.GetCaseByID(db, caseID)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Zero(t, c.DurationSeconds)
}

func TestExecuteNotificationFailureSwallowed(t *testing.T) {
	db := newTestDB(t)
	e := &Executor{
		DB:       db,
		Oracle:   &fakeOracle{},
		Members:  &fakeMembers{},
		Notifier: &fakeNotifier{fail: true},
	}

	caseID, err := e.Execute(Incident{
		GuildID:   "g1",
		CaseType:  model.CaseTypeAutomodFilter,
		SubjectID: "u1",
		ActorID:   model.SystemActorID,
		Reason:    "Banned word",
	}, []model.Action{model.ActionWarn})
	require.NoError(t, err)
	assert.Greater(t, caseID, int64(0))
}

func TestExecuteInvalidTimeoutDuration(t *testing.T) {
	db := newTestDB(t)
	members := &fakeMembers{}
	e := &Executor{
		DB:       db,
		Oracle:   &fakeOracle{timeout: true},
		Members:  members,
		Notifier: &fakeNotifier{},
	}

	_, err := e.Execute(Incident{
		GuildID:         "g1",
		CaseType:        model.CaseTypeAutomodSpam,
		SubjectID:       "u1",
		ActorID:         model.SystemActorID,
		Reason:          "Spam detected",
		TimeoutDuration: "soon",
	}, []model.Action{model.ActionDelete, model.ActionTimeout})
	require.NoError(t, err)
	assert.Empty(t, members.timeouts)
}

func TestExecuteDuplicateActionsIdempotent(t *testing.T) {
	db := newTestDB(t)
	notifier := &fakeNotifier{}
	e := &Executor{
		DB:       db,
		Oracle:   &fakeOracle{},
		Members:  &fakeMembers{},
		Notifier: notifier,
	}

	_, err := e.Execute(Incident{
		GuildID:   "g1",
		CaseType:  model.CaseTypeAutomodSpam,
		SubjectID: "u1",
		ActorID:   model.SystemActorID,
		Reason:    "Spam detected",
	}, []model.Action{model.ActionWarn, model.ActionWarn})
	require.NoError(t, err)

	// Duplicates are kept as configured but still one case.
	records, err := cases.GetCasesByUser(db, "u1")
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Len(t, notifier.sent, 2)
}
