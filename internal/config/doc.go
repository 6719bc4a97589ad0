// Package config defines configuration structures for the pdbfetch CLI.
//
// Configuration can be provided via:
//   - Command-line flags
//   - Environment variables (PDBFETCH_ prefix)
//   - YAML configuration file
//
// # Structure
//
//	type Config struct {
//	    Bucket     string
//	    IDsDir     string
//	    ReportPath string
//	    Workers    int
//	    Progress   bool
//	    Fetch      FetchConfig
//	    Retry      RetryConfig
//	}
//
//	type RetryConfig struct {
//	    MaxAttempts  int
//	    Cooldown     time.Duration
//	    PollInterval time.Duration
//	}
package config
