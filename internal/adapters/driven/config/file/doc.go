// Package file provides file-based implementations of driven port interfaces.
//
// Adapters:
//   - ConfigStore: TOML configuration at <home>/config.toml
//   - PromptStore: user-editable LLM prompt templates at <home>/prompts/
//
// The home directory is $KENSHO_HOME when set, otherwise ~/.kensho.
package file

import (
	"os"
	"path/filepath"
)

// HomeEnv overrides the kensho home directory.
const HomeEnv = "KENSHO_HOME"

// Home returns the kensho home directory.
func Home() (string, error) {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".kensho"), nil
}
