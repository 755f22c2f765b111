// Package templates embeds the default checklist definitions that
// `safecase dev seed` and `safecase template defaults` publish.
package templates

import (
	"embed"
	"fmt"
	"strings"

	"github.com/example/safecase/internal/core/checklist"
)

//go:embed checklists/*.yaml
var checklistTemplates embed.FS

// Default returns the YAML definition of the default template for t.
func Default(t checklist.Type) ([]byte, error) {
	name := fmt.Sprintf("checklists/%s.yaml", strings.ToLower(string(t)))
	content, err := checklistTemplates.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("no default template for %s: %w", t, err)
	}
	return content, nil
}
