package config

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config captures all runtime options for the Suite Runner.
type Config struct {
	SUT      SUTConfig     `yaml:"sut"`
	Oracle   OracleConfig  `yaml:"oracle"`
	Cases    CasesConfig   `yaml:"cases"`
	Logging  Logging       `yaml:"logging"`
	Storage  StorageConfig `yaml:"storage"`
}

// SUTConfig describes how to launch and reach the system under test.
type SUTConfig struct {
	ExecutablePath     string `yaml:"executable_path"`
	ConfigFile         string `yaml:"config_file"`
	DataDir            string `yaml:"data_dir"`
	CorePath           string `yaml:"core_path"`
	UnixSocket         string `yaml:"unix_socket"`
	TCPPort            int    `yaml:"tcp_port"`
	TrxModel           string `yaml:"trx_model"`
	Protocol           string `yaml:"protocol"`
	StorageEngine      string `yaml:"storage_engine"`
	DialTimeoutSeconds int    `yaml:"dial_timeout_seconds"`
}

// OracleConfig points the Oracle Adaptor at its MySQL-wire-protocol
// reference engine.
type OracleConfig struct {
	DSN      string `yaml:"dsn"`
	Database string `yaml:"database"`
}

// CasesConfig locates case definitions and bounds their run time.
type CasesConfig struct {
	TextDir            string `yaml:"text_dir"`
	CaseTimeoutSeconds int    `yaml:"case_timeout_seconds"`
}

// Logging controls stdout logging and the optional detail log file.
type Logging struct {
	Verbose bool   `yaml:"verbose"`
	LogFile string `yaml:"log_file"`
}

// StorageConfig holds case-artifact output and upload settings.
type StorageConfig struct {
	OutputDir string    `yaml:"output_dir"`
	OnPass    bool      `yaml:"archive_on_pass"`
	S3        S3Config  `yaml:"s3"`
	GCS       GCSConfig `yaml:"gcs"`
}

// S3Config configures S3-compatible uploads of case artifacts.
type S3Config struct {
	Enabled         bool   `yaml:"enabled"`
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	Bucket          string `yaml:"bucket"`
	Prefix          string `yaml:"prefix"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	SessionToken    string `yaml:"session_token"`
	UsePathStyle    bool   `yaml:"use_path_style"`
}

// GCSConfig configures Google Cloud Storage uploads of case artifacts.
type GCSConfig struct {
	Enabled         bool   `yaml:"enabled"`
	Bucket          string `yaml:"bucket"`
	Prefix          string `yaml:"prefix"`
	CredentialsFile string `yaml:"credentials_file"`
}

// Load reads configuration from a YAML file, applying defaults for
// anything the file omits.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	normalizeConfig(&cfg)
	return cfg, nil
}

func normalizeConfig(cfg *Config) {
	if cfg.SUT.DialTimeoutSeconds <= 0 {
		cfg.SUT.DialTimeoutSeconds = 10
	}
	if cfg.Cases.CaseTimeoutSeconds <= 0 {
		cfg.Cases.CaseTimeoutSeconds = 120
	}
	if cfg.Oracle.Database != "" {
		cfg.Oracle.DSN = ensureDatabaseInDSN(cfg.Oracle.DSN, cfg.Oracle.Database)
	}
}

func ensureDatabaseInDSN(dsn string, dbName string) string {
	if dsn == "" || dbName == "" {
		return dsn
	}
	slash := strings.Index(dsn, "/")
	if slash < 0 {
		return dsn
	}
	query := strings.Index(dsn[slash+1:], "?")
	if query >= 0 {
		query = slash + 1 + query
	}
	afterSlash := dsn[slash+1:]
	if query >= 0 {
		afterSlash = dsn[slash+1 : query]
	}
	if strings.TrimSpace(afterSlash) != "" {
		return dsn
	}
	if query >= 0 {
		return dsn[:slash+1] + dbName + dsn[query:]
	}
	return dsn + dbName
}

// UpdateDatabaseInDSN replaces the database name in the DSN path with
// dbName, preserving query parameters if any.
func UpdateDatabaseInDSN(dsn string, dbName string) string {
	if dsn == "" || dbName == "" {
		return dsn
	}
	slash := strings.Index(dsn, "/")
	if slash < 0 {
		return dsn
	}
	query := strings.Index(dsn[slash+1:], "?")
	if query >= 0 {
		query = slash + 1 + query
		return dsn[:slash+1] + dbName + dsn[query:]
	}
	return dsn[:slash+1] + dbName
}

// AdminDSN strips the database name from a DSN while preserving query
// parameters.
func AdminDSN(dsn string) string {
	if dsn == "" {
		return dsn
	}
	slash := strings.Index(dsn, "/")
	if slash < 0 {
		return dsn
	}
	query := strings.Index(dsn[slash+1:], "?")
	if query >= 0 {
		query = slash + 1 + query
		return dsn[:slash+1] + dsn[query:]
	}
	return dsn[:slash+1]
}

func defaultConfig() Config {
	return Config{
		SUT: SUTConfig{
			UnixSocket:         "/tmp/miniobench.sock",
			TrxModel:           "pessimistic",
			Protocol:           "mysql",
			StorageEngine:      "default",
			DialTimeoutSeconds: 10,
		},
		Oracle: OracleConfig{
			DSN:      "root:@tcp(127.0.0.1:4000)/",
			Database: "miniobench_oracle",
		},
		Cases: CasesConfig{
			TextDir:            "cases",
			CaseTimeoutSeconds: 120,
		},
		Logging: Logging{
			LogFile: "logs/miniobench.log",
		},
		Storage: StorageConfig{
			OutputDir: "reports",
		},
	}
}
