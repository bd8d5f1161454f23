package views

import (
	"github.com/matheus3301/evowpp/internal/provider"
	"github.com/matheus3301/evowpp/internal/tui/ui"
	"github.com/rivo/tview"
)

// Form labels.
const (
	LabelBaseURL  = "Base URL"
	LabelAPIKey   = "API key"
	LabelInstance = "Instance"

	ButtonSave    = "Save and test connection"
	ButtonTesting = "Testing..."
	ButtonCancel  = "Cancel"
)

// ConfigForm edits the provider settings.
type ConfigForm struct {
	*tview.Form
	theme    *ui.Theme
	baseURL  *tview.InputField
	apiKey   *tview.InputField
	instance *tview.InputField
	busy     bool
	onSave   func(provider.Config)
	onCancel func()
}

// NewConfigForm creates the settings form.
func NewConfigForm(theme *ui.Theme) *ConfigForm {
	f := tview.NewForm()
	f.SetBorder(true)
	f.SetBorderColor(theme.BorderColor)
	f.SetBackgroundColor(theme.BgColor)
	f.SetTitle(" Evolution API Settings ")
	f.SetTitleColor(theme.TitleColor)
	f.SetFieldBackgroundColor(theme.TableCursorBg)
	f.SetFieldTextColor(theme.TableCursorFg)
	f.SetLabelColor(theme.FgColor)
	f.SetButtonBackgroundColor(theme.BorderColor)
	f.SetButtonTextColor(theme.BgColor)

	cf := &ConfigForm{Form: f, theme: theme}

	cf.baseURL = tview.NewInputField().
		SetLabel(LabelBaseURL).
		SetFieldWidth(48).
		SetPlaceholder("https://evo.example.com")
	cf.apiKey = tview.NewInputField().
		SetLabel(LabelAPIKey).
		SetFieldWidth(48).
		SetMaskCharacter('*')
	cf.instance = tview.NewInputField().
		SetLabel(LabelInstance).
		SetFieldWidth(48)

	f.AddFormItem(cf.baseURL)
	f.AddFormItem(cf.apiKey)
	f.AddFormItem(cf.instance)
	f.AddButton(ButtonSave, cf.submit)
	f.AddButton(ButtonCancel, func() {
		if cf.onCancel != nil {
			cf.onCancel()
		}
	})
	f.SetCancelFunc(func() {
		if cf.onCancel != nil {
			cf.onCancel()
		}
	})

	return cf
}

// Name implements ui.Component.
func (cf *ConfigForm) Name() string { return "config" }

// SetOnSave sets the callback for the save button.
func (cf *ConfigForm) SetOnSave(fn func(provider.Config)) {
	cf.onSave = fn
}

// SetOnCancel sets the callback for Esc and the cancel button.
func (cf *ConfigForm) SetOnCancel(fn func()) {
	cf.onCancel = fn
}

// Load fills the fields from cfg.
func (cf *ConfigForm) Load(cfg provider.Config) {
	cf.baseURL.SetText(cfg.BaseURL)
	cf.apiKey.SetText(cfg.APIKey)
	cf.instance.SetText(cfg.InstanceName)
	cf.SetFocus(0)
}

// Value returns the config currently typed into the form.
func (cf *ConfigForm) Value() provider.Config {
	return provider.Config{
		BaseURL:      cf.baseURL.GetText(),
		APIKey:       cf.apiKey.GetText(),
		InstanceName: cf.instance.GetText(),
	}
}

// SetBusy relabels the save button while a verification runs.
func (cf *ConfigForm) SetBusy(busy bool) {
	cf.busy = busy
	label := ButtonSave
	if busy {
		label = ButtonTesting
	}
	if b := cf.GetButton(0); b != nil {
		b.SetLabel(label)
	}
}

// Busy reports whether a verification is in flight.
func (cf *ConfigForm) Busy() bool { return cf.busy }

func (cf *ConfigForm) submit() {
	if cf.busy || cf.onSave == nil {
		return
	}
	cf.onSave(cf.Value())
}
