package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/sem-merge/internal/gitctx"
)

const (
	hookMarkerStart = "# >>> sem-merge pre-commit hook >>>"
	hookMarkerEnd   = "# <<< sem-merge pre-commit hook <<<"
)

var (
	hookProvider string
	hookRestage  bool
)

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Manage git pre-commit hook",
}

var hookInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Install sem-merge as a git pre-commit hook",
	RunE: func(cmd *cobra.Command, args []string) error {
		hookPath, err := getHookPath()
		if err != nil {
			return err
		}

		section := generateHookScript(hookProvider, hookRestage)

		existing, err := os.ReadFile(hookPath)
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("reading hook file: %w", err)
		}

		var content string
		if os.IsNotExist(err) || len(existing) == 0 {
			content = "#!/bin/sh\n" + section
		} else {
			content = replaceHookSection(string(existing), section)
		}

		if err := os.MkdirAll(filepath.Dir(hookPath), 0o755); err != nil {
			return fmt.Errorf("creating hooks directory: %w", err)
		}
		if err := os.WriteFile(hookPath, []byte(content), 0o755); err != nil {
			return fmt.Errorf("writing hook file: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Installed sem-merge pre-commit hook at %s\n", hookPath)
		return nil
	},
}

var hookUninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove sem-merge pre-commit hook",
	RunE: func(cmd *cobra.Command, args []string) error {
		hookPath, err := getHookPath()
		if err != nil {
			return err
		}

		existing, err := os.ReadFile(hookPath)
		if err != nil {
			if os.IsNotExist(err) {
				fmt.Fprintln(cmd.OutOrStdout(), "No pre-commit hook found.")
				return nil
			}
			return fmt.Errorf("reading hook file: %w", err)
		}

		content := removeHookSection(string(existing))

		// If only shebang (and whitespace) remains, delete the file entirely
		trimmed := strings.TrimSpace(content)
		if trimmed == "" || trimmed == "#!/bin/sh" || trimmed == "#!/bin/bash" {
			if err := os.Remove(hookPath); err != nil {
				return fmt.Errorf("removing hook file: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed sem-merge pre-commit hook at %s\n", hookPath)
			return nil
		}

		if err := os.WriteFile(hookPath, []byte(content), 0o755); err != nil {
			return fmt.Errorf("writing hook file: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Removed sem-merge section from %s\n", hookPath)
		return nil
	},
}

func getHookPath() (string, error) {
	gitDir, err := gitctx.GitDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(gitDir, "hooks", "pre-commit"), nil
}

// generateHookScript runs sem-merge over the staged documentation files.
// The hook never blocks the commit.
func generateHookScript(provider string, restage bool) string {
	args := ""
	if provider != "" {
		args += " --ai-provider " + provider
	}
	if restage {
		args += " --stage"
	}

	var b strings.Builder
	b.WriteString(hookMarkerStart + "\n")
	b.WriteString("git diff --cached --name-only -z --diff-filter=ACM | xargs -0 -r sem-merge" + args + " || \\\n")
	b.WriteString("  echo \"sem-merge: merge step failed, allowing commit\"\n")
	b.WriteString(hookMarkerEnd + "\n")
	return b.String()
}

func replaceHookSection(existing, section string) string {
	startIdx := strings.Index(existing, hookMarkerStart)
	endIdx := strings.Index(existing, hookMarkerEnd)

	if startIdx == -1 || endIdx == -1 {
		if !strings.HasSuffix(existing, "\n") {
			existing += "\n"
		}
		return existing + section
	}

	before := existing[:startIdx]
	after := existing[endIdx+len(hookMarkerEnd):]
	after = strings.TrimPrefix(after, "\n")
	return before + section + after
}

func removeHookSection(existing string) string {
	startIdx := strings.Index(existing, hookMarkerStart)
	endIdx := strings.Index(existing, hookMarkerEnd)

	if startIdx == -1 || endIdx == -1 {
		return existing
	}

	before := existing[:startIdx]
	after := existing[endIdx+len(hookMarkerEnd):]
	after = strings.TrimPrefix(after, "\n")

	return before + after
}

func init() {
	hookCmd.AddCommand(hookInstallCmd)
	hookCmd.AddCommand(hookUninstallCmd)
	hookInstallCmd.Flags().StringVar(&hookProvider, "ai-provider", "", "Provider passed to sem-merge in the hook")
	hookInstallCmd.Flags().BoolVar(&hookRestage, "restage", true, "Stage merged files again so the commit includes them. Only files sem-merge rewrote are staged, but each is staged whole, unstaged hunks included")
}
