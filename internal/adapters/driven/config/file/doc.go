// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data under ~/.adam.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage
//   - PromptStore: user-editable chat prompts
package file
