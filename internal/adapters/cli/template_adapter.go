package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/example/safecase/internal/core/checklist"
	"github.com/example/safecase/internal/ports/primary"
)

// TemplateFile is the YAML document accepted by `template publish -f` and
// produced by `template export`.
type TemplateFile struct {
	Type       checklist.Type                `yaml:"type"`
	Name       string                        `yaml:"name,omitempty"`
	Version    int                           `yaml:"version,omitempty"`
	Items      []checklist.Item              `yaml:"items"`
	Signatures []checklist.RequiredSignature `yaml:"required_signatures"`
}

// ParseTemplateFile decodes a template definition. Unknown fields are rejected.
func ParseTemplateFile(r io.Reader) (*TemplateFile, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f TemplateFile
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse template file: %w", err)
	}
	return &f, nil
}

// TemplateAdapter is a thin adapter that translates CLI operations to TemplateService calls.
type TemplateAdapter struct {
	service primary.TemplateService
	out     io.Writer
}

// NewTemplateAdapter creates a new TemplateAdapter with the given service.
func NewTemplateAdapter(service primary.TemplateService, out io.Writer) *TemplateAdapter {
	return &TemplateAdapter{
		service: service,
		out:     out,
	}
}

// Publish publishes the definition read from r. typeOverride, when set,
// replaces the type named in the file.
func (a *TemplateAdapter) Publish(ctx context.Context, facilityID, actorID string, typeOverride checklist.Type, r io.Reader) error {
	f, err := ParseTemplateFile(r)
	if err != nil {
		return err
	}
	t := f.Type
	if typeOverride != "" {
		t = typeOverride
	}

	resp, err := a.service.PublishTemplateVersion(ctx, primary.PublishTemplateRequest{
		FacilityID: facilityID,
		Type:       t,
		Name:       f.Name,
		Items:      f.Items,
		Signatures: f.Signatures,
		ActorID:    actorID,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s Published %s version %d (%s)\n", okMark(), resp.Version.TemplateName, resp.Version.VersionNumber, resp.Version.ID)
	for _, w := range resp.Warnings {
		fmt.Fprintf(a.out, "  %s %s\n", color.New(color.FgYellow).Sprint("warning:"), w)
	}
	return nil
}

// List prints a facility's templates.
func (a *TemplateAdapter) List(ctx context.Context, facilityID string) error {
	templates, err := a.service.GetTemplates(ctx, facilityID)
	if err != nil {
		return fmt.Errorf("failed to list templates: %w", err)
	}
	if len(templates) == 0 {
		fmt.Fprintln(a.out, "No templates found")
		return nil
	}

	fmt.Fprintf(a.out, "\n%-10s %-32s %-9s %s\n", "TYPE", "NAME", "ACTIVE", "CURRENT")
	fmt.Fprintln(a.out, rule)
	for _, t := range templates {
		active := color.New(color.FgGreen).Sprint("yes")
		if !t.IsActive {
			active = color.New(color.FgRed).Sprint("no")
		}
		current := "-"
		if t.CurrentVersion != nil {
			current = fmt.Sprintf("v%d", t.CurrentVersion.VersionNumber)
		}
		fmt.Fprintf(a.out, "%-10s %-32s %-9s %s\n", t.Type, t.Name, active, current)
	}
	fmt.Fprintln(a.out)
	return nil
}

// Show prints the version history of one template type.
func (a *TemplateAdapter) Show(ctx context.Context, facilityID string, t checklist.Type) error {
	versions, err := a.service.ListTemplateVersions(ctx, facilityID, t)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "\n%s template versions\n", t)
	fmt.Fprintln(a.out, rule)
	for _, v := range versions {
		fmt.Fprintf(a.out, "v%-4d %-38s %2d items  %d signatures  %s\n",
			v.VersionNumber, v.ID, len(v.Items), len(v.Signatures), formatTime(v.CreatedAt))
	}
	fmt.Fprintln(a.out)
	return nil
}

// Export writes the current version of a template type as YAML.
func (a *TemplateAdapter) Export(ctx context.Context, facilityID string, t checklist.Type) error {
	tpl, err := a.service.GetCurrentTemplate(ctx, facilityID, t)
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(a.out)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(TemplateFile{
		Type:       tpl.Type,
		Name:       tpl.Name,
		Version:    tpl.CurrentVersion.VersionNumber,
		Items:      tpl.CurrentVersion.Items,
		Signatures: tpl.CurrentVersion.Signatures,
	})
}

// SetActive activates or deactivates a template type.
func (a *TemplateAdapter) SetActive(ctx context.Context, facilityID string, t checklist.Type, active bool) error {
	if err := a.service.SetTemplateActive(ctx, facilityID, t, active); err != nil {
		return err
	}
	state := "deactivated"
	if active {
		state = "activated"
	}
	fmt.Fprintf(a.out, "%s %s template %s\n", okMark(), t, state)
	return nil
}
