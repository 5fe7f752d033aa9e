package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/edtke/archivecheck/internal/flagx"
	"github.com/edtke/archivecheck/internal/timex"
)

// JsonConfig is the intermediate DTO for reading JSON configuration files.
// It uses timex.Duration for interval fields, which allows parsing both
// string values such as "30s" and integer nanoseconds. After unmarshalling,
// its fields are copied into the runtime Config struct.
type JsonConfig struct {
	StoreDSN        string         `json:"store_dsn"`
	LegacyDSN       string         `json:"legacy_dsn"`
	RunCSVPath      string         `json:"run_csv_path"`
	AccountsCSVPath string         `json:"accounts_csv_path"`
	Datasets        []string       `json:"datasets"`
	BagIDs          []string       `json:"bag_ids"`
	IndexBaseURL    string         `json:"index_base_url"`
	VaultBaseURL    string         `json:"vault_base_url"`
	FetchTimeout    timex.Duration `json:"fetch_timeout"`
	UseS3Mirror     bool           `json:"use_s3_mirror"`
	S3User          string         `json:"s3_user"`
	S3Password      string         `json:"s3_password"`
	S3Bucket        string         `json:"s3_bucket"`
	S3Region        string         `json:"s3_region"`
	S3BaseEndpoint  string         `json:"s3_base_endpoint"`
}

// parseJson loads configuration values from the JSON file named by the
// -c or -config command-line flags. When neither flag is set, no file is
// loaded. An unreadable or invalid file panics: a half-applied config is
// worse than no run at all.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	config.StoreDSN = c.StoreDSN
	config.LegacyDSN = c.LegacyDSN
	config.RunCSVPath = c.RunCSVPath
	config.AccountsCSVPath = c.AccountsCSVPath
	config.Datasets = c.Datasets
	config.BagIDs = c.BagIDs
	config.IndexBaseURL = c.IndexBaseURL
	config.VaultBaseURL = c.VaultBaseURL
	config.FetchTimeout = time.Duration(c.FetchTimeout.Duration)
	config.UseS3Mirror = c.UseS3Mirror
	config.S3User = c.S3User
	config.S3Password = c.S3Password
	config.S3Bucket = c.S3Bucket
	config.S3Region = c.S3Region
	config.S3BaseEndpoint = c.S3BaseEndpoint
}
