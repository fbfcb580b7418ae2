package models

// LFGConfig represents the structure of the lfg section in config.yaml.
type LFGConfig struct {
	FanoutWorkers       int `json:"fanout_workers" mapstructure:"fanoutWorkers"`
	SendTimeoutSeconds  int `json:"send_timeout_seconds" mapstructure:"sendTimeoutSeconds"`
	PostCooldownMinutes int `json:"post_cooldown_minutes" mapstructure:"postCooldownMinutes"`
	GameMaxLength       int `json:"game_max_length" mapstructure:"gameMaxLength"`
	NotesMaxLength      int `json:"notes_max_length" mapstructure:"notesMaxLength"`
}

// CommandsConfig holds the auth configuration for commands.
type CommandsConfig struct {
	Auth AuthConfig `json:"auth" mapstructure:"auth"`
}

// AuthConfig lists user IDs with elevated access. Developers bypass
// per-guild admin checks everywhere.
type AuthConfig struct {
	Developers []string `json:"developers" mapstructure:"developers"`
}
