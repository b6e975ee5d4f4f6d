package dashboard

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/steveyegge/srmauto/internal/config"
	"github.com/steveyegge/srmauto/internal/constants"
)

// Settings form fields, in tab order.
const (
	fieldSRMPath = iota
	fieldSRMArgs
	fieldTimeout
	fieldTheme
	fieldAutoStart
	fieldCount
)

var fieldLabels = [fieldCount]string{
	fieldSRMPath:   "SRM path",
	fieldSRMArgs:   "SRM args",
	fieldTimeout:   "Timeout (s)",
	fieldTheme:     "Theme",
	fieldAutoStart: "Auto start",
}

// settingsForm edits a copy of the configuration.
type settingsForm struct {
	base   *config.Config
	inputs [fieldCount]textinput.Model
	focus  int
	err    error
}

func newSettingsForm(cfg *config.Config) *settingsForm {
	f := &settingsForm{base: cfg.Clone()}
	values := [fieldCount]string{
		fieldSRMPath:   cfg.SRMPath,
		fieldSRMArgs:   strings.Join(cfg.SRMArgs, " "),
		fieldTimeout:   strconv.Itoa(cfg.TimeoutSRM),
		fieldTheme:     cfg.Theme,
		fieldAutoStart: strconv.FormatBool(cfg.AutoStart),
	}
	placeholders := [fieldCount]string{
		fieldSRMPath:   constants.AutoDetect,
		fieldSRMArgs:   "add",
		fieldTimeout:   "10-600",
		fieldTheme:     "auto, light or dark",
		fieldAutoStart: "true or false",
	}
	for i := range f.inputs {
		in := textinput.New()
		in.Prompt = ""
		in.Placeholder = placeholders[i]
		in.CharLimit = 512
		in.Width = 60
		in.SetValue(values[i])
		f.inputs[i] = in
	}
	f.inputs[0].Focus()
	return f
}

func (f *settingsForm) setWidth(w int) {
	for i := range f.inputs {
		f.inputs[i].Width = max(20, w-24)
	}
}

func (f *settingsForm) move(delta int) {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + delta + fieldCount) % fieldCount
	f.inputs[f.focus].Focus()
}

// update routes a key to the form. It reports whether the user asked to
// save or to leave.
func (f *settingsForm) update(msg tea.KeyMsg, keys KeyMap) (save, back bool, cmd tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Back):
		return false, true, nil
	case msg.String() == "ctrl+s":
		return true, false, nil
	case msg.String() == "enter":
		if f.focus == fieldCount-1 {
			return true, false, nil
		}
		f.move(1)
		return false, false, nil
	case key.Matches(msg, keys.NextField):
		f.move(1)
		return false, false, nil
	case key.Matches(msg, keys.PrevField):
		f.move(-1)
		return false, false, nil
	}
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return false, false, cmd
}

// result builds the edited configuration and validates it.
func (f *settingsForm) result() (*config.Config, error) {
	cfg := f.base.Clone()

	cfg.SRMPath = strings.TrimSpace(f.inputs[fieldSRMPath].Value())
	if cfg.SRMPath == "" {
		cfg.SRMPath = constants.AutoDetect
	}
	cfg.SRMArgs = strings.Fields(f.inputs[fieldSRMArgs].Value())

	timeout, err := strconv.Atoi(strings.TrimSpace(f.inputs[fieldTimeout].Value()))
	if err != nil {
		return nil, fmt.Errorf("timeout must be a whole number of seconds")
	}
	cfg.TimeoutSRM = timeout

	cfg.Theme = strings.TrimSpace(f.inputs[fieldTheme].Value())

	autoStart, err := strconv.ParseBool(strings.TrimSpace(f.inputs[fieldAutoStart].Value()))
	if err != nil {
		return nil, fmt.Errorf("auto start must be true or false")
	}
	cfg.AutoStart = autoStart

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (f *settingsForm) view() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Settings"))
	b.WriteString("\n\n")
	for i := range f.inputs {
		label := labelStyle.Render(fieldLabels[i])
		if i == f.focus {
			label = focusedLabelStyle.Render(fieldLabels[i])
		}
		b.WriteString(label + f.inputs[i].View() + "\n")
	}
	if f.err != nil {
		b.WriteString("\n" + errorStyle.Render(f.err.Error()) + "\n")
	}
	return formBorderStyle.Render(strings.TrimRight(b.String(), "\n"))
}
