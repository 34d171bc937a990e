package model

// Config holds the application configuration.
type Config struct {
	BotToken     string
	AppID        string
	DatabasePath string
	GuildConfigs map[string]GuildConfig `mapstructure:"guilds"`
}

// GuildConfig is the per-guild moderation configuration loaded from
// data/automod.yaml.
type GuildConfig struct {
	GuildID         string          `mapstructure:"guild_id"`
	AdminRoleIDs    []string        `mapstructure:"admin_role_ids"`
	ModlogChannelID string          `mapstructure:"modlog_channel_id"`
	AutoMod         AutoModConfig   `mapstructure:"automod"`
	Thresholds      ThresholdConfig `mapstructure:"thresholds"`
	NotifyOnAction  bool            `mapstructure:"notify_on_action"`
}

// AutoModConfig groups the three message filters.
type AutoModConfig struct {
	Spam    SpamFilterConfig   `mapstructure:"spam"`
	Words   WordFilterConfig   `mapstructure:"words"`
	Invites InviteFilterConfig `mapstructure:"invites"`
}

// FilterCommon carries the settings every filter shares: whether it runs,
// which roles/channels it never applies to, and what happens on a match.
type FilterCommon struct {
	Enabled         bool     `mapstructure:"enabled"`
	ExemptRoles     []string `mapstructure:"exempt_roles"`
	ExemptChannels  []string `mapstructure:"exempt_channels"`
	ActionNames     []string `mapstructure:"actions"` // delete | warn | timeout | kick
	TimeoutDuration string   `mapstructure:"timeout_duration"`

	// Actions is ActionNames parsed into the closed enum at config load.
	Actions []Action `mapstructure:"-"`
}

// SpamFilterConfig configures the near-duplicate flood detector.
type SpamFilterConfig struct {
	FilterCommon        `mapstructure:",squash"`
	SimilarityThreshold int `mapstructure:"similarity_threshold"` // percent, 0-100
	MessageThreshold    int `mapstructure:"message_threshold"`
	TimeWindowSeconds   int `mapstructure:"time_window_seconds"`
}

// WordFilterConfig configures the banned-phrase filter.
type WordFilterConfig struct {
	FilterCommon `mapstructure:",squash"`
	BannedWords  []string `mapstructure:"banned_words"`
}

// InviteFilterConfig configures the invite-link filter.
type InviteFilterConfig struct {
	FilterCommon `mapstructure:",squash"`
	AllowedCodes []string `mapstructure:"allowed_codes"`
}

// ThresholdConfig configures warning escalation.
// DecayDays = 0 means warnings never decay.
type ThresholdConfig struct {
	DecayDays int                               `mapstructure:"decay_days"`
	Global    []WarningThresholdRule            `mapstructure:"global"`
	Category  map[string][]WarningThresholdRule `mapstructure:"category"`
}
