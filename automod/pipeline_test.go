package automod

import (
	"testing"
	"time"

	"modbot/automod/spam"
	"modbot/model"
	"modbot/utils/database/cases"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPipeline(t *testing.T) (*Pipeline, *fakeMessages, *fakeMembers) {
	t.Helper()
	db := newTestDB(t)
	messages := &fakeMessages{}
	members := &fakeMembers{}
	p := &Pipeline{
		Detector: spam.NewDetector(model.SystemClock{}),
		Messages: messages,
		Executor: &Executor{
			DB:       db,
			Oracle:   &fakeOracle{timeout: true, kick: true, ban: true},
			Members:  members,
			Notifier: &fakeNotifier{},
		},
	}
	return p, messages, members
}

func testAutoModConfig() model.AutoModConfig {
	return model.AutoModConfig{
		Spam: model.SpamFilterConfig{
			FilterCommon: model.FilterCommon{
				Enabled: true,
				Actions: []model.Action{model.ActionDelete, model.ActionWarn},
			},
			SimilarityThreshold: 90,
			MessageThreshold:    3,
			TimeWindowSeconds:   30,
		},
		Words: model.WordFilterConfig{
			FilterCommon: model.FilterCommon{
				Enabled: true,
				Actions: []model.Action{model.ActionDelete, model.ActionWarn},
			},
			BannedWords: []string{"forbidden"},
		},
		Invites: model.InviteFilterConfig{
			FilterCommon: model.FilterCommon{
				Enabled: true,
				Actions: []model.Action{model.ActionDelete},
			},
			AllowedCodes: []string{"friends"},
		},
	}
}

func inbound(messageID, content string) InboundMessage {
	return InboundMessage{
		GuildID:   "g1",
		ChannelID: "c1",
		MessageID: messageID,
		AuthorID:  "u1",
		AuthorTag: "user#1",
		Content:   content,
	}
}

func TestPipelineSpamStage(t *testing.T) {
	p, messages, _ := newTestPipeline(t)
	cfg := testAutoModConfig()

	p.Process(inbound("m1", "buy cheap stuff now"), cfg)
	p.Process(inbound("m2", "buy cheap stuff now"), cfg)
	p.Process(inbound("m3", "buy cheap stuff now!"), cfg)

	// Trigger plus the two matched messages are deleted.
	assert.Len(t, messages.deleted, 3)

	records, err := cases.GetCasesByUser(p.Executor.DB, "u1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, model.CaseTypeAutomodSpam, records[0].Type)

	// The window was cleared: the next identical message starts over.
	p.Process(inbound("m4", "buy cheap stuff now"), cfg)
	records, err = cases.GetCasesByUser(p.Executor.DB, "u1")
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestPipelineSpamWinsOverWordFilter(t *testing.T) {
	p, _, _ := newTestPipeline(t)
	cfg := testAutoModConfig()
	cfg.Words.BannedWords = []string{"cheap"}

	p.Process(inbound("m1", "buy cheap stuff now"), cfg)
	p.Process(inbound("m2", "buy cheap stuff now"), cfg)
	records, err := cases.GetCasesByUser(p.Executor.DB, "u1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, c := range records {
		assert.Equal(t, model.CaseTypeAutomodFilter, c.Type)
	}

	// Third message is both spam-like and contains a banned word; the
	// spam stage must handle it alone.
	p.Process(inbound("m3", "buy cheap stuff now"), cfg)
	records, err = cases.GetCasesByUser(p.Executor.DB, "u1")
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, model.CaseTypeAutomodSpam, records[0].Type)
}

func TestPipelineWordFilter(t *testing.T) {
	p, messages, _ := newTestPipeline(t)
	cfg := testAutoModConfig()

	p.Process(inbound("m1", "this is FORBIDDEN content"), cfg)

	assert.Len(t, messages.deleted, 1)
	records, err := cases.GetCasesByUser(p.Executor.DB, "u1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, model.CaseTypeAutomodFilter, records[0].Type)
}

func TestPipelineInviteFilter(t *testing.T) {
	p, messages, _ := newTestPipeline(t)
	cfg := testAutoModConfig()

	// Allow-listed invite passes.
	p.Process(inbound("m1", "join us at discord.gg/friends"), cfg)
	assert.Empty(t, messages.deleted)

	p.Process(inbound("m2", "join us at discord.gg/elsewhere"), cfg)
	assert.Len(t, messages.deleted, 1)

	records, err := cases.GetCasesByUser(p.Executor.DB, "u1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, model.CaseTypeAutomodInvite, records[0].Type)
}

func TestPipelineExemptions(t *testing.T) {
	p, messages, _ := newTestPipeline(t)
	cfg := testAutoModConfig()
	cfg.Words.ExemptRoles = []string{"mod-role"}
	cfg.Invites.ExemptChannels = []string{"c1"}

	msg := inbound("m1", "totally forbidden discord.gg/elsewhere")
	msg.RoleIDs = []string{"mod-role"}
	p.Process(msg, cfg)

	assert.Empty(t, messages.deleted)
}

func TestPipelineShortMessageSkipsSpamStage(t *testing.T) {
	p, _, _ := newTestPipeline(t)
	cfg := testAutoModConfig()

	for i := 0; i < 5; i++ {
		p.Process(inbound("m", "hey"), cfg)
	}

	records, err := cases.GetCasesByUser(p.Executor.DB, "u1")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestPipelineDisabledFiltersPassThrough(t *testing.T) {
	p, messages, _ := newTestPipeline(t)
	cfg := model.AutoModConfig{}

	p.Process(inbound("m1", "totally forbidden discord.gg/elsewhere"), cfg)
	assert.Empty(t, messages.deleted)
}

func TestPipelineOldSpamOutsideWindow(t *testing.T) {
	db := newTestDB(t)
	clock := &stubClock{now: time.Now()}
	messages := &fakeMessages{}
	p := &Pipeline{
		Detector: spam.NewDetector(clock),
		Messages: messages,
		Executor: &Executor{
			DB:       db,
			Oracle:   &fakeOracle{},
			Members:  &fakeMembers{},
			Notifier: &fakeNotifier{},
		},
	}
	cfg := testAutoModConfig()

	p.Process(inbound("m1", "buy cheap stuff now"), cfg)
	p.Process(inbound("m2", "buy cheap stuff now"), cfg)
	clock.now = clock.now.Add(time.Minute)
	p.Process(inbound("m3", "buy cheap stuff now"), cfg)

	assert.Empty(t, messages.deleted)
}

type stubClock struct {
	now time.Time
}

func (c *stubClock) Now() time.Time { return c.now }
