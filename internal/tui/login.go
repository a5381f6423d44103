package tui

import (
	"strings"

	"github.com/rivo/tview"
)

// LoginView prompts for the admin bearer token.
type LoginView struct {
	app     *App
	flex    *tview.Flex
	form    *tview.Form
	message *tview.TextView
}

// NewLoginView creates the login view
func NewLoginView(app *App) *LoginView {
	lv := &LoginView{app: app}

	lv.message = tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true)
	lv.message.SetText("Enter the admin token to sign in. The token is stored locally and sent as a bearer credential.")

	lv.form = tview.NewForm().
		AddPasswordField("Admin token", "", 0, '*', nil).
		AddButton("Sign in", func() {
			lv.signIn()
		}).
		AddButton("Quit", func() {
			app.app.Stop()
		})
	lv.form.SetBorder(true).SetTitle(" Polidex Admin ")

	lv.flex = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(lv.message, 3, 0, false).
		AddItem(lv.form, 0, 1, true)

	return lv
}

// Primitive returns the tview primitive
func (lv *LoginView) Primitive() tview.Primitive {
	return lv.flex
}

// Mount focuses the token field.
func (lv *LoginView) Mount() {
	lv.app.app.SetFocus(lv.form)
}

// Unmount is a no-op; the login view holds no subscriptions.
func (lv *LoginView) Unmount() {}

// SetMessage replaces the banner text, e.g. after a rejected session.
func (lv *LoginView) SetMessage(text string) {
	lv.message.SetText(text)
}

// signIn stores the token and enters the app. Validity is the server's
// call; a bad token bounces back here on the first 401/403.
func (lv *LoginView) signIn() {
	field := lv.form.GetFormItem(0).(*tview.InputField)
	token := strings.TrimSpace(field.GetText())
	if token == "" {
		lv.message.SetText("[red]Token must not be empty")
		return
	}
	if err := lv.app.session.Set(token); err != nil {
		lv.message.SetText("[red]Failed to store token: " + err.Error())
		return
	}
	field.SetText("")
	lv.message.SetText("Enter the admin token to sign in.")
	lv.app.switchTo("dashboard")
}
