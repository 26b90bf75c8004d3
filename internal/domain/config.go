package domain

// Config mirrors ~/.sdkassist/config.yaml.
type Config struct {
	ConfigFormatVersion string             `yaml:"config_format_version"`
	Preferences         Preferences        `yaml:"preferences"`
	Models              []ModelDefinition  `yaml:"models"`
	Cache               CacheSettings      `yaml:"cache"`
	RateLimits          []RateLimitRule    `yaml:"rate_limits"`
	GitHub              GitHubSettings     `yaml:"github"`
	Classifier          ClassifierSettings `yaml:"classifier"`
}

// Preferences captures user level toggles.
type Preferences struct {
	TimeoutSeconds int    `yaml:"timeout"`
	TutorialDir    string `yaml:"tutorial_dir"`
	Shell          string `yaml:"shell"`
}

// RateLimitRule caps calls to one external domain per 60-second window.
type RateLimitRule struct {
	Domain string `yaml:"domain"`
	Limit  int    `yaml:"limit"`
}

// GitHubSettings controls issue filing for recorded errors.
type GitHubSettings struct {
	Enabled     bool   `yaml:"enabled"`
	Repo        string `yaml:"repo"`
	TokenEnvVar string `yaml:"token_env_var"`
}

// ClassifierSettings points at an optional rules override file.
type ClassifierSettings struct {
	RulesFile string `yaml:"rules_file"`
}
