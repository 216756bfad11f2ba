package config

// DetectFormat exports detectFormat for testing.
var DetectFormat = detectFormat

// MakeTestConfig returns a valid Config with every section populated.
func MakeTestConfig() *Config {
	cfg := Default()
	cfg.Client.BaseURL = "http://localhost:8787"
	return cfg
}
