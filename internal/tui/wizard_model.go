package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/felixgeelhaar/checkoutkit/internal/domain/checkout"
	"github.com/felixgeelhaar/checkoutkit/internal/domain/coupon"
	"github.com/felixgeelhaar/checkoutkit/internal/domain/stepper"
	"github.com/felixgeelhaar/checkoutkit/internal/i18n"
	"github.com/felixgeelhaar/checkoutkit/internal/tui/ui"
)

// wizardMode is what the wizard is currently capturing input for.
type wizardMode int

const (
	modeBrowse wizardMode = iota
	modeCoupon
	modeEditPick
)

// loadDelay simulates the outside-data fetch that gates the form.
const loadDelay = 400 * time.Millisecond

// sessionUpdateMsg arrives when the session's rendered state changed.
type sessionUpdateMsg struct{}

// dataLoadedMsg arrives when the simulated data fetch finishes.
type dataLoadedMsg struct{}

// actionDoneMsg carries the outcome of a session action.
type actionDoneMsg struct {
	err error
}

// couponDoneMsg carries the outcome of a coupon application.
type couponDoneMsg struct {
	err error
}

// wizardModel implements the checkout wizard TUI.
type wizardModel struct {
	ctx        context.Context
	session    *checkout.Session
	couponForm *coupon.Form
	localizer  i18n.Localizer
	opts       WizardOptions

	styles ui.Styles
	keys   ui.KeyMap
	width  int
	height int

	mode        wizardMode
	snap        checkout.Snapshot
	spin        spinner.Model
	couponInput textinput.Model
	statusErr   string
	submitted   bool
	cancelled   bool
}

func newWizardModel(ctx context.Context, session *checkout.Session, couponForm *coupon.Form, localizer i18n.Localizer, opts WizardOptions) wizardModel {
	styles := ui.DefaultStyles()

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = styles.Spinner

	input := textinput.New()
	input.Placeholder = "coupon code"
	input.CharLimit = ui.CouponCharLimit
	input.Width = ui.CouponInputWidth
	if opts.CouponPrefill != "" {
		input.SetValue(opts.CouponPrefill)
	}

	return wizardModel{
		ctx:         ctx,
		session:     session,
		couponForm:  couponForm,
		localizer:   localizer,
		opts:        opts,
		styles:      styles,
		keys:        ui.DefaultKeyMap(),
		width:       ui.DefaultWidth,
		height:      ui.DefaultHeight,
		snap:        session.Snapshot(),
		spin:        spin,
		couponInput: input,
	}
}

func (m wizardModel) Init() tea.Cmd {
	return tea.Batch(
		m.spin.Tick,
		m.listenUpdates(),
		tea.Tick(loadDelay, func(time.Time) tea.Msg { return dataLoadedMsg{} }),
	)
}

// listenUpdates waits for the next session update signal.
func (m wizardModel) listenUpdates() tea.Cmd {
	updates := m.session.Updates()
	return func() tea.Msg {
		<-updates
		return sessionUpdateMsg{}
	}
}

func (m wizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.styles = m.styles.WithWidth(msg.Width)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case sessionUpdateMsg:
		m = m.refresh()
		return m, m.listenUpdates()

	case dataLoadedMsg:
		m.session.MarkLoaded()
		m = m.refresh()
		return m, nil

	case actionDoneMsg:
		if msg.err != nil {
			m.statusErr = msg.err.Error()
		}
		m = m.refresh()
		return m, nil

	case couponDoneMsg:
		// Outcome renders from the coupon form's own status.
		m = m.refresh()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	return m, nil
}

// refresh pulls a fresh snapshot and derives display state from it.
func (m wizardModel) refresh() wizardModel {
	m.snap = m.session.Snapshot()
	if m.snap.FormStatus == checkout.FormComplete {
		m.submitted = true
	}
	return m
}

func (m wizardModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.cancelled = !m.submitted
		return m, tea.Quit
	}

	switch m.mode {
	case modeCoupon:
		return m.handleCouponKey(msg)
	case modeEditPick:
		return m.handleEditPickKey(msg)
	default:
		return m.handleBrowseKey(msg)
	}
}

func (m wizardModel) handleBrowseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.cancelled = !m.submitted
		return m, tea.Quit

	case key.Matches(msg, m.keys.Continue):
		if m.snap.CanContinue {
			m.statusErr = ""
			return m, m.continueCmd()
		}

	case key.Matches(msg, m.keys.Submit):
		if m.snap.CanSubmit {
			m.statusErr = ""
			return m, m.submitCmd()
		}

	case key.Matches(msg, m.keys.Edit):
		if m.hasEditableStep() {
			m.statusErr = ""
			m.mode = modeEditPick
		}

	case key.Matches(msg, m.keys.Coupon):
		if m.snap.FormStatus.IsInteractive() && m.couponForm != nil {
			m.statusErr = ""
			m.mode = modeCoupon
			m.couponInput.Focus()
			return m, textinput.Blink
		}

	case key.Matches(msg, m.keys.NewOrder):
		if m.snap.FormStatus == checkout.FormComplete {
			m.statusErr = ""
			m.submitted = false
			return m, m.resetCmd()
		}
	}

	return m, nil
}

func (m wizardModel) handleCouponKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.couponInput.Blur()
		m.mode = modeBrowse
		return m, nil

	case key.Matches(msg, m.keys.Confirm):
		code := m.couponInput.Value()
		m.couponInput.Blur()
		m.couponInput.SetValue("")
		m.mode = modeBrowse
		return m, m.applyCouponCmd(code)

	default:
		var cmd tea.Cmd
		m.couponInput, cmd = m.couponInput.Update(msg)
		return m, cmd
	}
}

func (m wizardModel) handleEditPickKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Cancel) {
		m.mode = modeBrowse
		return m, nil
	}
	if number, ok := m.keys.IsDigit(msg); ok {
		m.mode = modeBrowse
		step, found := m.stepByNumber(number)
		if !found || !step.Editable {
			m.statusErr = fmt.Sprintf("step %d cannot be edited", number)
			return m, nil
		}
		return m, m.editCmd(step.ID)
	}
	return m, nil
}

func (m wizardModel) hasEditableStep() bool {
	for _, step := range m.snap.Steps {
		if step.Editable {
			return true
		}
	}
	return false
}

func (m wizardModel) stepByNumber(number int) (checkout.StepView, bool) {
	for _, step := range m.snap.Steps {
		if step.Numbered && step.Number == number {
			return step, true
		}
	}
	return checkout.StepView{}, false
}

func (m wizardModel) continueCmd() tea.Cmd {
	session, ctx := m.session, m.ctx
	return func() tea.Msg {
		return actionDoneMsg{err: session.Continue(ctx)}
	}
}

func (m wizardModel) submitCmd() tea.Cmd {
	session, ctx := m.session, m.ctx
	return func() tea.Msg {
		return actionDoneMsg{err: session.Submit(ctx)}
	}
}

func (m wizardModel) editCmd(id string) tea.Cmd {
	session := m.session
	return func() tea.Msg {
		stepID, err := stepper.NewStepID(id)
		if err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{err: session.Edit(stepID)}
	}
}

func (m wizardModel) applyCouponCmd(code string) tea.Cmd {
	form, ctx := m.couponForm, m.ctx
	return func() tea.Msg {
		return couponDoneMsg{err: form.Apply(ctx, code)}
	}
}

func (m wizardModel) resetCmd() tea.Cmd {
	session := m.session
	reset := func() tea.Msg {
		return actionDoneMsg{err: session.Reset()}
	}
	reload := tea.Tick(loadDelay, func(time.Time) tea.Msg { return dataLoadedMsg{} })
	return tea.Batch(reset, reload)
}

func (m wizardModel) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render("Checkout"))
	b.WriteString("\n")
	b.WriteString(m.styles.Fragment.Render(m.addressBar()))
	b.WriteString("\n\n")

	switch m.snap.FormStatus {
	case checkout.FormLoading:
		b.WriteString(m.spin.View())
		b.WriteString(" ")
		b.WriteString(m.styles.Paragraph.Render(m.localizer.T(i18n.KeyLoading)))
		b.WriteString("\n")
	case checkout.FormComplete:
		b.WriteString(m.viewComplete())
	default:
		b.WriteString(m.viewSteps())
		b.WriteString(m.viewCoupon())
	}

	if m.statusErr != "" {
		b.WriteString("\n")
		b.WriteString(m.styles.Error.Render(m.statusErr))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.viewHelp())

	return m.styles.App.Render(b.String())
}

// addressBar shows the fragment surface the session keeps in sync.
func (m wizardModel) addressBar() string {
	bar := "/checkout"
	if m.opts.Location != nil {
		if fragment := m.opts.Location.Fragment(); fragment != "" {
			bar += "#" + fragment
		}
	}
	return bar
}

func (m wizardModel) viewSteps() string {
	var b strings.Builder
	for _, step := range m.snap.Steps {
		b.WriteString(m.viewStep(step))
	}
	return b.String()
}

// viewStep renders one step behind its own recover boundary, so a
// rendering bug degrades that step to a fallback line.
func (m wizardModel) viewStep(step checkout.StepView) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = m.styles.StepFallback.Render(m.localizer.T(i18n.KeyStepBroken)) + "\n"
		}
	}()

	if step.Broken {
		return m.styles.StepFallback.Render(m.localizer.T(i18n.KeyStepBroken)) + "\n"
	}

	var b strings.Builder

	badge := m.styles.StepNumber.Render(" • ")
	if step.Numbered {
		label := fmt.Sprintf(" %d ", step.Number)
		switch {
		case step.Active:
			badge = m.styles.StepNumberActive.Render(label)
		case step.Complete:
			badge = m.styles.StepNumberDone.Render(label)
		default:
			badge = m.styles.StepNumber.Render(label)
		}
	}
	b.WriteString(badge)
	b.WriteString(" ")

	title := m.styles.StepTitle.Render(step.Title)
	if step.Active {
		title = m.styles.StepTitleActive.Render(step.Title)
	}
	b.WriteString(title)

	if step.Complete {
		b.WriteString(m.styles.Badge.Render(" ✓"))
	}
	if step.Editable {
		b.WriteString(m.styles.EditHint.Render("  " + step.EditLabel))
	}
	b.WriteString("\n")

	if step.Active {
		b.WriteString(m.styles.Help.Render(
			"    " + m.localizer.T(i18n.KeyStepOf, step.Number, m.snap.NumberedSteps)))
		b.WriteString("\n")
		if step.Content != "" {
			b.WriteString(m.styles.StepContent.Render(step.Content))
			b.WriteString("\n")
		}
		if m.snap.FormStatus == checkout.FormValidating {
			b.WriteString("    ")
			b.WriteString(m.spin.View())
			b.WriteString(" ")
			b.WriteString(m.styles.Info.Render(m.localizer.T(i18n.KeyValidating)))
			b.WriteString("\n")
		}
		if m.snap.FormStatus == checkout.FormSubmitting {
			b.WriteString("    ")
			b.WriteString(m.spin.View())
			b.WriteString(" ")
			b.WriteString(m.styles.Info.Render(m.localizer.T(i18n.KeySubmitOrder)))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func (m wizardModel) viewCoupon() string {
	var b strings.Builder
	b.WriteString("\n")

	if m.mode == modeCoupon {
		b.WriteString(m.styles.PanelTitle.Render(m.localizer.T(i18n.KeyApplyCoupon)))
		b.WriteString("\n")
		b.WriteString(m.couponInput.View())
		b.WriteString("\n")
		return b.String()
	}

	switch m.couponForm.Status() {
	case coupon.StatusPending:
		b.WriteString(m.spin.View())
		b.WriteString(" ")
		b.WriteString(m.styles.Info.Render(m.localizer.T(i18n.KeyApplyCoupon)))
	case coupon.StatusApplied:
		b.WriteString(m.styles.Success.Render(
			"✓ " + m.localizer.T(i18n.KeyCouponApplied) + ": " + m.couponForm.Code()))
	case coupon.StatusRejected:
		b.WriteString(m.styles.Warning.Render(m.localizer.T(i18n.KeyCouponInvalid)))
	default:
		return ""
	}
	b.WriteString("\n")
	return b.String()
}

func (m wizardModel) viewComplete() string {
	var b strings.Builder
	b.WriteString(m.styles.Success.Render("✓ " + m.localizer.T(i18n.KeyOrderComplete)))
	b.WriteString("\n")
	b.WriteString(m.styles.Help.Render("order " + m.snap.SessionID))
	b.WriteString("\n")
	return b.String()
}

func (m wizardModel) viewHelp() string {
	type hint struct {
		key  string
		text string
	}
	var hints []hint

	switch m.mode {
	case modeCoupon:
		hints = []hint{{"enter", "apply"}, {"esc", "back"}}
	case modeEditPick:
		hints = []hint{{"1-9", "pick step"}, {"esc", "back"}}
	default:
		if m.snap.CanContinue {
			hints = append(hints, hint{"enter", m.localizer.T(i18n.KeyContinue)})
		}
		if m.snap.CanSubmit {
			hints = append(hints, hint{"s", m.localizer.T(i18n.KeySubmitOrder)})
		}
		if m.snap.FormStatus.IsInteractive() && m.hasEditableStep() {
			hints = append(hints, hint{"e", m.localizer.T(i18n.KeyEdit)})
		}
		if m.snap.FormStatus.IsInteractive() && m.couponForm != nil {
			hints = append(hints, hint{"c", m.localizer.T(i18n.KeyApplyCoupon)})
		}
		if m.snap.FormStatus == checkout.FormComplete {
			hints = append(hints, hint{"n", "new order"})
		}
		hints = append(hints, hint{"q", "quit"})
	}

	parts := make([]string, 0, len(hints))
	for _, h := range hints {
		parts = append(parts, m.styles.HelpKey.Render(h.key)+" "+m.styles.Help.Render(h.text))
	}
	return strings.Join(parts, m.styles.Help.Render(" · "))
}
