package tui

import (
	"errors"
	"fmt"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"releasekit.dev/releasekit/internal/utils"
)

// ErrInteractiveDisabled is returned when a prompt is needed but the run is not interactive
var ErrInteractiveDisabled = errors.New("interactive prompts are disabled (set --yes or run from a terminal)")

// ErrCanceled is returned when the operator aborts a prompt
var ErrCanceled = errors.New("canceled")

// checkInteractiveAllowed returns an error if prompts cannot be shown
func checkInteractiveAllowed() error {
	if os.Getenv("RELEASEKIT_NON_INTERACTIVE") != "" || !utils.IsInteractive() {
		return ErrInteractiveDisabled
	}
	return nil
}

// textInputModel is a single line text input prompt
type textInputModel struct {
	textInput textinput.Model
	prompt    string
	done      bool
	err       error
}

func (m textInputModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m textInputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.Type {
		case tea.KeyEnter:
			m.done = true
			return m, tea.Quit
		case tea.KeyCtrlC, tea.KeyEsc:
			m.err = ErrCanceled
			m.done = true
			return m, tea.Quit
		}
	}

	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m textInputModel) View() string {
	if m.done {
		return ""
	}
	return lipgloss.NewStyle().Margin(1, 0).
		Render(fmt.Sprintf("%s\n%s\n\n(Press Enter to submit, Ctrl+C to cancel)", m.prompt, m.textInput.View()))
}

// PromptTextInput prompts for a line of text. An empty answer yields defaultValue.
func PromptTextInput(prompt, defaultValue string) (string, error) {
	if err := checkInteractiveAllowed(); err != nil {
		return "", err
	}

	ti := textinput.New()
	ti.Placeholder = defaultValue
	ti.Focus()
	ti.CharLimit = 64
	ti.Width = 40

	p := tea.NewProgram(textInputModel{textInput: ti, prompt: prompt}, tea.WithInput(os.Stdin), tea.WithOutput(os.Stdout))
	model, err := p.Run()
	if err != nil {
		return "", err
	}

	finalModel, ok := model.(textInputModel)
	if !ok {
		return "", fmt.Errorf("unexpected model type")
	}
	if finalModel.err != nil {
		return "", finalModel.err
	}
	return answerOrDefault(finalModel.textInput.Value(), defaultValue), nil
}

func answerOrDefault(answer, defaultValue string) string {
	if answer == "" {
		return defaultValue
	}
	return answer
}

// PromptConfirm asks a yes/no question
func PromptConfirm(prompt string, defaultValue bool) (bool, error) {
	if err := checkInteractiveAllowed(); err != nil {
		return false, err
	}

	var confirmed bool
	if err := survey.AskOne(&survey.Confirm{Message: prompt, Default: defaultValue}, &confirmed); err != nil {
		return false, ErrCanceled
	}
	return confirmed, nil
}

// PromptEnter blocks until the operator presses Enter
func PromptEnter(prompt string) error {
	if err := checkInteractiveAllowed(); err != nil {
		return err
	}

	var ignored string
	if err := survey.AskOne(&survey.Input{Message: prompt}, &ignored); err != nil {
		return ErrCanceled
	}
	return nil
}

// Prompter asks the operator through the terminal. With assumeYes every
// question is answered with its default and nothing blocks.
type Prompter struct {
	splog     *Splog
	assumeYes bool
}

// NewPrompter creates a terminal prompter
func NewPrompter(splog *Splog, assumeYes bool) *Prompter {
	return &Prompter{splog: splog, assumeYes: assumeYes}
}

// Confirm asks a yes/no question defaulting to no
func (p *Prompter) Confirm(message string) (bool, error) {
	if p.assumeYes {
		p.splog.Info("%s yes", message)
		return true, nil
	}
	return p.withQuietLog(func() (bool, error) { return PromptConfirm(message, false) })
}

// Input asks for a value, falling back to defaultValue
func (p *Prompter) Input(message, defaultValue string) (string, error) {
	if p.assumeYes {
		p.splog.Info("%s %s", message, defaultValue)
		return defaultValue, nil
	}
	var answer string
	_, err := p.withQuietLog(func() (bool, error) {
		var err error
		answer, err = PromptTextInput(message, defaultValue)
		return err == nil, err
	})
	return answer, err
}

// Pause waits for Enter
func (p *Prompter) Pause(message string) error {
	if p.assumeYes {
		p.splog.Debug("%s (skipped)", message)
		return nil
	}
	_, err := p.withQuietLog(func() (bool, error) { return true, PromptEnter(message) })
	return err
}

func (p *Prompter) withQuietLog(fn func() (bool, error)) (bool, error) {
	wasQuiet := p.splog.IsQuiet()
	p.splog.SetQuiet(true)
	defer p.splog.SetQuiet(wasQuiet)
	return fn()
}
