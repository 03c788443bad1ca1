package checkout

import (
	"github.com/felixgeelhaar/checkoutkit/internal/domain/stepper"
	"github.com/felixgeelhaar/checkoutkit/internal/i18n"
	"github.com/felixgeelhaar/checkoutkit/internal/ports"
)

// TerminalAction names the primary action offered on the active step.
type TerminalAction string

const (
	// ActionContinue advances to the next numbered step.
	ActionContinue TerminalAction = "continue"
	// ActionSubmit places the order; offered on the last numbered step.
	ActionSubmit TerminalAction = "submit"
)

// StepView is the render context for a single step.
type StepView struct {
	ID            string
	Title         string
	Content       string
	Number        int
	Index         int
	Numbered      bool
	Active        bool
	Complete      bool
	Editable      bool
	EditLabel     string
	ContinueLabel string
	// Broken marks a step whose hooks panicked while building the view.
	// Render layers show a fallback for it; the rest of the page survives.
	Broken bool
}

// Snapshot is an immutable view of the session for rendering. It is
// rebuilt on demand; render layers should request a fresh snapshot on
// every update signal.
type Snapshot struct {
	SessionID        string
	FormStatus       FormStatus
	ActiveStepNumber int
	NumberedSteps    int
	HasNextStep      bool
	NextStepNumber   int
	Action           TerminalAction
	CanContinue      bool
	CanSubmit        bool
	PaymentMethodID  string
	Steps            []StepView
}

// Snapshot builds the current render view.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	status := s.form.status()
	activeNumber := s.store.StepNumber()

	snap := Snapshot{
		SessionID:        s.id,
		FormStatus:       status,
		ActiveStepNumber: activeNumber,
		NumberedSteps:    stepper.MaxNumber(s.steps),
		Action:           ActionContinue,
		PaymentMethodID:  s.payment,
		Steps:            make([]StepView, 0, len(s.steps)),
	}

	for _, st := range s.steps {
		snap.Steps = append(snap.Steps, s.stepViewLocked(st, activeNumber, status))
	}

	if active, err := stepper.ActiveStep(s.steps, activeNumber); err == nil {
		if next, ok := stepper.NextNumbered(s.steps, active); ok {
			snap.HasNextStep = true
			snap.NextStepNumber = next.Number
		}
	}
	if !snap.HasNextStep {
		snap.Action = ActionSubmit
	}
	snap.CanContinue = status == FormReady && snap.HasNextStep
	snap.CanSubmit = status == FormReady && !snap.HasNextStep

	return snap
}

// stepViewLocked renders one step behind a recover boundary: descriptor
// hooks are host code, and one panicking step must not take down the
// whole snapshot.
func (s *Session) stepViewLocked(st stepper.Annotated, activeNumber int, status FormStatus) (view StepView) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn(s.runCtx, "step view panicked",
				ports.F("step", st.ID.String()),
				ports.F("panic", r))
			view = StepView{
				ID:       st.ID.String(),
				Number:   st.Number,
				Index:    st.Index,
				Numbered: st.Numbered,
				Broken:   true,
			}
		}
	}()
	return s.buildStepViewLocked(st, activeNumber, status)
}

// buildStepViewLocked computes the view. The complete badge follows two
// rules: numbered steps show it behind the active step, non-numbered
// steps show it from their tracked completion flag.
func (s *Session) buildStepViewLocked(st stepper.Annotated, activeNumber int, status FormStatus) StepView {
	active := st.Numbered && st.Number == activeNumber

	complete := false
	if st.Numbered {
		complete = st.Number < activeNumber
	} else {
		complete = s.tracker.IsComplete(st.ID.String())
	}

	editable := status == FormReady && st.Numbered && !active &&
		(st.IsEditable == nil || st.IsEditable())

	content := st.IncompleteContent
	switch {
	case active:
		content = st.ActiveContent
	case complete:
		content = st.CompleteContent
	}

	view := StepView{
		ID:            st.ID.String(),
		Title:         s.localizer.Title(st.Title),
		Content:       content,
		Number:        st.Number,
		Index:         st.Index,
		Numbered:      st.Numbered,
		Active:        active,
		Complete:      complete,
		Editable:      editable,
		EditLabel:     s.localizer.T(i18n.KeyEdit),
		ContinueLabel: s.localizer.T(i18n.KeyContinue),
	}
	if st.EditLabel != nil {
		view.EditLabel = st.EditLabel()
	}
	if st.ContinueLabel != nil {
		view.ContinueLabel = st.ContinueLabel()
	}
	return view
}
