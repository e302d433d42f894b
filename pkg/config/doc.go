// Package config provides configuration management for salvage.
//
// Configuration is loaded from a YAML file with environment variable
// overrides:
//
//	cfg, err := config.LoadConfigWithEnvOverrides("salvage.yaml")
//
// # Configuration Precedence
//
// Values are applied in the following order (later overrides earlier):
//
//  1. Default values (defined in defaults.go)
//  2. Values from the YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Environment Variable Overrides
//
// Variables follow the naming convention SALVAGE_SECTION_FIELD:
//
//   - SALVAGE_RULES_DIRECTORY overrides rules.directory
//   - SALVAGE_POLICY_MATCH_BY_NAME overrides policy.match_by_name
//   - SALVAGE_LEDGER_DRIVER overrides ledger.driver
//   - SALVAGE_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// List values such as SALVAGE_RULES_EXTENSIONS are comma separated.
//
// # Example Configuration
//
//	rules:
//	  directory: "Data/SKSE/Plugins/FastRecycle"
//	  document_prefix: "mats_"
//	  exclusion_document: "ignore.json"
//	policy:
//	  match_by_name: false
//	  exclude_special_state: true
//	inventory:
//	  catalog: "catalog.yaml"
//	ledger:
//	  enabled: true
//	  driver: "sqlite"
//	  path: "data/salvage.db"
//	  retention_days: 30
//	  retention_schedule: "0 3 * * *"
//	server:
//	  listen_address: "127.0.0.1:9464"
//	telemetry:
//	  logging:
//	    level: "info"
//	    format: "console"
//	  metrics:
//	    enabled: true
//	  health:
//	    enabled: true
//	  tracing:
//	    enabled: false
//	    endpoint: "localhost:4317"
package config
