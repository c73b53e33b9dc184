package ui

import (
	"log/slog"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/tartampluch/go-wedding/internal/config"
)

// loginForm holds the widgets read on submit.
type loginForm struct {
	email    *widget.Entry
	password *widget.Entry
	name     *widget.Entry
	status   *widget.Label
	signIn   *widget.Button
	register *widget.Button
}

// ShowLoginWindow opens the sign-in window, or focuses it when already open.
func (app *WeddingApp) ShowLoginWindow() {
	if app.loginWindow != nil {
		app.loginWindow.RequestFocus()
		return
	}

	slog.Info(config.LogMsgOpenLogin, config.LogKeyComponent, config.CompUI)
	w := app.App.NewWindow(app.GetMsg(config.TKeyWinLogin))
	app.loginWindow = w

	f := &loginForm{
		email:    widget.NewEntry(),
		password: widget.NewPasswordEntry(),
		name:     widget.NewEntry(),
		status:   widget.NewLabel(""),
	}
	f.email.PlaceHolder = config.PlaceholderEmail
	if sess, ok := app.Session.Session(); ok {
		f.email.SetText(sess.User.Email)
	}
	f.status.Wrapping = fyne.TextWrapWord

	f.signIn = widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnSignIn), theme.LoginIcon(), func() {
		app.submitLogin(f, false)
	})
	f.signIn.Importance = widget.HighImportance
	f.register = widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnRegister), theme.AccountIcon(), func() {
		app.submitLogin(f, true)
	})
	f.password.OnSubmitted = func(string) { app.submitLogin(f, false) }

	itemName := widget.NewFormItem(app.GetMsg(config.TKeyLblName), f.name)
	itemName.HintText = app.GetMsg(config.TKeyHelpName)

	form := widget.NewForm(
		widget.NewFormItem(app.GetMsg(config.TKeyLblEmail), f.email),
		widget.NewFormItem(app.GetMsg(config.TKeyLblPassword), f.password),
		itemName,
	)

	w.SetContent(container.NewPadded(container.NewVBox(
		form,
		f.status,
		container.NewGridWithColumns(config.LayoutColumnsDouble, f.register, f.signIn),
	)))
	w.Resize(fyne.NewSize(config.LoginWindowWidth, 0))
	w.SetOnClosed(func() { app.loginWindow = nil })
	w.Show()
}

// submitLogin runs the authentication off the UI thread and reports the
// session store's error message on failure.
func (app *WeddingApp) submitLogin(f *loginForm, register bool) {
	email := strings.TrimSpace(f.email.Text)
	password := f.password.Text
	name := strings.TrimSpace(f.name.Text)

	f.signIn.Disable()
	f.register.Disable()
	f.status.SetText(app.GetMsg(config.TKeyLblSigningIn))

	go func() {
		var err error
		if register {
			err = app.Session.Register(app.Ctx, email, password, name)
		} else {
			err = app.Session.Login(app.Ctx, email, password)
		}

		fyne.Do(func() {
			f.signIn.Enable()
			f.register.Enable()
			if err != nil {
				f.status.SetText(app.Session.ErrorMessage())
				return
			}
			f.status.SetText("")
			f.password.SetText("")
			if app.loginWindow != nil {
				app.loginWindow.Close()
			}
		})
		if err == nil {
			app.performSync(false)
		}
	}()
}
