// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage with environment overrides
//   - PromptStore: User-editable analysis prompts with embedded defaults
//   - ProfileStore: YAML company profile used by compliance checks
package file
