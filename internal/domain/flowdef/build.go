package flowdef

import (
	"strings"

	"github.com/felixgeelhaar/checkoutkit/internal/domain/completion"
	"github.com/felixgeelhaar/checkoutkit/internal/domain/stepper"
)

// Build resolves a flow's check names against the registry and produces
// the step descriptors the wizard runs on. Field-filled checks are
// synthesized from their prefix form, e.g. "field-filled:postal-code".
func Build(flow *Flow, registry *CheckRegistry) ([]stepper.Descriptor, error) {
	if flow == nil {
		return nil, NewFlowInvalidError("flow is nil", "Load or parse a flow before building it.")
	}

	descriptors := make([]stepper.Descriptor, 0, len(flow.Steps))
	for _, def := range flow.Steps {
		check, err := resolveCheck(def, registry)
		if err != nil {
			return nil, err
		}

		desc := stepper.Descriptor{
			ID:                def.ID,
			Numbered:          def.Numbered,
			Title:             def.Title,
			ActiveContent:     def.Content.Active,
			IncompleteContent: def.Content.Incomplete,
			CompleteContent:   def.Content.Complete,
			IsComplete:        check,
		}
		if def.Editable != nil {
			editable := *def.Editable
			desc.IsEditable = func() bool { return editable }
		}
		if def.EditLabel != "" {
			label := def.EditLabel
			desc.EditLabel = func() string { return label }
		}
		if def.ContinueLabel != "" {
			label := def.ContinueLabel
			desc.ContinueLabel = func() string { return label }
		}

		descriptors = append(descriptors, desc)
	}
	return descriptors, nil
}

func resolveCheck(def StepDef, registry *CheckRegistry) (completion.CheckFunc, error) {
	if check, ok := registry.Lookup(def.Check); ok {
		return check, nil
	}
	if field := strings.TrimPrefix(def.Check, CheckFieldFilledPrefix); field != def.Check && field != "" {
		return FieldFilledCheck(field), nil
	}
	return nil, NewUnknownCheckError(def.Check, def.ID.String(), registry.Names())
}
