// Package config loads and merges sem-merge configuration from multiple sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (SEM_MERGE_PROVIDER, SEM_MERGE_MODEL, SEM_MERGE_TIMEOUT, etc.)
//  3. Project file (.sem-merge.yaml in the working directory)
//  4. User file ($XDG_CONFIG_HOME/sem-merge/config.yaml)
//  5. Built-in defaults
//
// API keys are read from OPENAI_API_KEY and DEEPSEEK_API_KEY only. [Resolve]
// turns a loaded [Config] into the provider settings for the process and
// fails when the choice of provider is missing or ambiguous.
package config
