package merge

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are an experienced technical writer. You reconcile two versions of the same documentation file into one document.

Rules:
1. Keep the document's structure, headings and formatting conventions.
2. Combine the information from both versions. Drop exact and near duplicates.
3. Keep every fact that appears in either version unless the other version clearly replaces it.
4. Keep a consistent tone throughout.
5. Do not wrap the document in code fences and do not add commentary.
6. Do not end the document with trailing blank lines or whitespace.

Respond with ONLY the merged document.`

// SystemPrompt returns the system prompt for merge requests.
func SystemPrompt() string {
	return systemPrompt
}

// BuildUserPrompt constructs the user prompt from both versions of a file.
func BuildUserPrompt(path, local, remote string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "File: %s\n\n", path)

	b.WriteString("--- BEGIN LOCAL VERSION (working copy) ---\n")
	b.WriteString(local)
	b.WriteString("\n--- END LOCAL VERSION ---\n\n")

	b.WriteString("--- BEGIN REMOTE VERSION (upstream main) ---\n")
	b.WriteString(remote)
	b.WriteString("\n--- END REMOTE VERSION ---\n")

	return b.String()
}
