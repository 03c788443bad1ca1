// Package flowdef loads checkout flow definitions from YAML and builds
// them into step descriptors, resolving completion check names against a
// registry.
package flowdef

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/checkoutkit/internal/domain/stepper"
)

// DefaultCheck is assumed for steps that declare no completion check.
const DefaultCheck = "always"

// ContentDef holds the per-state body text of a step.
type ContentDef struct {
	Active     string
	Incomplete string
	Complete   string
}

// StepDef is one step of a flow definition.
type StepDef struct {
	ID            stepper.StepID
	Title         string
	Numbered      bool
	Check         string
	Editable      *bool
	EditLabel     string
	ContinueLabel string
	Content       ContentDef
}

// Flow is a parsed flow definition.
type Flow struct {
	Steps []StepDef
}

// contentYAML is the YAML representation of ContentDef.
type contentYAML struct {
	Active     string `yaml:"active,omitempty"`
	Incomplete string `yaml:"incomplete,omitempty"`
	Complete   string `yaml:"complete,omitempty"`
}

// stepYAML is the YAML representation of a step for unmarshaling.
type stepYAML struct {
	ID            string      `yaml:"id"`
	Title         string      `yaml:"title"`
	Numbered      *bool       `yaml:"numbered,omitempty"`
	Check         string      `yaml:"check,omitempty"`
	Editable      *bool       `yaml:"editable,omitempty"`
	EditLabel     string      `yaml:"edit_label,omitempty"`
	ContinueLabel string      `yaml:"continue_label,omitempty"`
	Content       contentYAML `yaml:"content,omitempty"`
}

// flowYAML is the YAML representation of a flow for unmarshaling.
type flowYAML struct {
	Steps []stepYAML `yaml:"steps"`
}

// Parse parses a Flow from YAML bytes. Steps default to numbered with
// the always-complete check.
func Parse(data []byte) (*Flow, error) {
	var raw flowYAML
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	if len(raw.Steps) == 0 {
		return nil, NewFlowInvalidError(
			"flow defines no steps",
			"Add at least one step under 'steps:'.")
	}

	seen := make(map[string]struct{}, len(raw.Steps))
	steps := make([]StepDef, 0, len(raw.Steps))
	numbered := 0

	for i, rs := range raw.Steps {
		id, err := stepper.NewStepID(rs.ID)
		if err != nil {
			return nil, NewFlowInvalidError(
				fmt.Sprintf("step %d has an invalid id %q", i+1, rs.ID),
				"Step IDs start with a letter or digit and contain only letters, digits, hyphens, and underscores.").
				WithUnderlying(err)
		}
		if _, dup := seen[id.String()]; dup {
			return nil, NewFlowInvalidError(
				fmt.Sprintf("step id %q appears more than once", id.String()),
				"Give every step a unique id.")
		}
		seen[id.String()] = struct{}{}

		step := StepDef{
			ID:            id,
			Title:         rs.Title,
			Numbered:      rs.Numbered == nil || *rs.Numbered,
			Check:         rs.Check,
			Editable:      rs.Editable,
			EditLabel:     rs.EditLabel,
			ContinueLabel: rs.ContinueLabel,
			Content: ContentDef{
				Active:     rs.Content.Active,
				Incomplete: rs.Content.Incomplete,
				Complete:   rs.Content.Complete,
			},
		}
		if step.Check == "" {
			step.Check = DefaultCheck
		}
		if step.Title == "" {
			step.Title = id.String()
		}
		if step.Numbered {
			numbered++
		}
		steps = append(steps, step)
	}

	if numbered == 0 {
		return nil, NewFlowInvalidError(
			"flow has no numbered steps",
			"Mark at least one step as numbered; the wizard needs a numbered step to start on.")
	}

	return &Flow{Steps: steps}, nil
}
