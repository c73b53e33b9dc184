package ui

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/go-wedding/internal/api"
	"github.com/tartampluch/go-wedding/internal/config"
	"github.com/tartampluch/go-wedding/internal/engine"
	"github.com/tartampluch/go-wedding/internal/model"
	"github.com/tartampluch/go-wedding/internal/server"
	"github.com/tartampluch/go-wedding/internal/session"
	"github.com/tartampluch/go-wedding/internal/stats"
	"github.com/tartampluch/go-wedding/internal/store"
)

//go:embed Icon.svg
var appIconData []byte

// Services are the long-lived collaborators the UI drives.
type Services struct {
	Client   *api.Client
	Session  *session.Store
	Data     *store.Store
	Feed     *server.FeedServer
	Importer *engine.GuestImporter
	// Secrets keeps the address book password next to the session token.
	Secrets session.CredentialStore
}

// WeddingApp encapsulates the UI state, preferences, and background logic.
type WeddingApp struct {
	App         fyne.App
	Window      fyne.Window // settings
	Preferences fyne.Preferences
	I18nBundle  *i18n.Bundle
	Localizer   *i18n.Localizer
	Ctx         context.Context

	Client   *api.Client
	Session  *session.Store
	Data     *store.Store
	Feed     *server.FeedServer
	Importer *engine.GuestImporter
	Secrets  session.CredentialStore
	Clock    engine.Clock

	Tray desktop.App
	Menu *fyne.Menu

	TrayStatusItem   *fyne.MenuItem
	TrayNextItem     *fyne.MenuItem
	TrayRefreshItem  *fyne.MenuItem
	TraySaveItem     *fyne.MenuItem
	TrayGuestsItem   *fyne.MenuItem
	TrayAccountItem  *fyne.MenuItem
	TraySettingsItem *fyne.MenuItem

	SupportedLanguages []string
	configChan         chan string

	// syncMu keeps manual and scheduled syncs from overlapping.
	syncMu sync.Mutex

	guestsWindow fyne.Window
	loginWindow  fyne.Window
}

// NewWeddingApp constructs the application and wires dependencies.
func NewWeddingApp(a fyne.App, ctx context.Context, svc Services) *WeddingApp {
	a.SetIcon(fyne.NewStaticResource(config.IconFile, appIconData))

	app := &WeddingApp{
		App:                a,
		Preferences:        a.Preferences(),
		Ctx:                ctx,
		Client:             svc.Client,
		Session:            svc.Session,
		Data:               svc.Data,
		Feed:               svc.Feed,
		Importer:           svc.Importer,
		Secrets:            svc.Secrets,
		Clock:              engine.RealClock{},
		SupportedLanguages: config.SupportedLanguages,
		configChan:         make(chan string, config.ChannelBufferSize),
	}
	app.Session.FormatError = app.FormatError
	app.Data.FormatError = app.FormatError
	return app
}

// Run launches the application services and the main UI loop.
func (app *WeddingApp) Run() {
	app.SetupI18n()
	app.watchPreferences()

	go func() {
		if err := app.Feed.Start(app.Ctx); err != nil {
			slog.Error(config.ErrServerStartup,
				config.LogKeyError, err,
				config.LogKeyComponent, config.CompUI)
			app.App.SendNotification(fyne.NewNotification(
				config.TitleStartupError,
				fmt.Sprintf(config.MsgPortBusy, app.Feed.Port)))
		}
	}()

	if desk, ok := app.App.(desktop.App); ok {
		app.Tray = desk
		app.Tray.SetSystemTrayIcon(app.App.Icon())
		app.setupTrayMenu()
	} else {
		slog.Warn(config.ErrTrayNotSupported, config.LogKeyComponent, config.CompUI)
	}

	app.Session.OnChange(func(session.Status) {
		fyne.Do(app.refreshAccountItem)
	})

	go app.backgroundWorker()
	app.App.Run()
}

// watchPreferences wakes the worker when settings change.
func (app *WeddingApp) watchPreferences() {
	app.Preferences.AddChangeListener(func() {
		select {
		case app.configChan <- config.PrefInterval:
		default:
		}
	})
}

func (app *WeddingApp) setupTrayMenu() {
	app.TrayStatusItem = fyne.NewMenuItem(config.FallbackTrayLabel, app.ShowGuestsWindow)
	app.TrayNextItem = fyne.NewMenuItem(app.GetMsg(config.TKeyTrayNoTask), nil)
	app.TrayNextItem.Disabled = true

	app.TrayRefreshItem = fyne.NewMenuItem(app.GetMsg(config.TKeyMenuRefresh), func() {
		go app.performSync(true)
	})
	app.TraySaveItem = fyne.NewMenuItem(app.GetMsg(config.TKeyMenuSaveAll), func() {
		go app.saveAll()
	})
	app.TrayGuestsItem = fyne.NewMenuItem(app.GetMsg(config.TKeyMenuGuests), app.ShowGuestsWindow)
	app.TrayAccountItem = fyne.NewMenuItem(app.GetMsg(config.TKeyMenuSignIn), app.toggleAccount)
	app.TraySettingsItem = fyne.NewMenuItem(app.GetMsg(config.TKeyMenuSettings), app.ShowSettingsWindow)

	app.Menu = fyne.NewMenu(config.AppName,
		app.TrayStatusItem,
		app.TrayNextItem,
		fyne.NewMenuItemSeparator(),
		app.TrayRefreshItem,
		app.TraySaveItem,
		app.TrayGuestsItem,
		fyne.NewMenuItemSeparator(),
		app.TrayAccountItem,
		app.TraySettingsItem,
	)

	if app.Tray != nil {
		app.Tray.SetSystemTrayMenu(app.Menu)
	}
	app.refreshAccountItem()
}

// RefreshTrayMenu updates localized labels in the tray menu.
func (app *WeddingApp) RefreshTrayMenu() {
	if app.Menu == nil {
		return
	}
	app.TrayRefreshItem.Label = app.GetMsg(config.TKeyMenuRefresh)
	app.TraySaveItem.Label = app.GetMsg(config.TKeyMenuSaveAll)
	app.TrayGuestsItem.Label = app.GetMsg(config.TKeyMenuGuests)
	app.TraySettingsItem.Label = app.GetMsg(config.TKeyMenuSettings)
	app.refreshAccountItem()
}

// refreshAccountItem shows "Sign in" or "Sign out (email)".
func (app *WeddingApp) refreshAccountItem() {
	if app.Menu == nil || app.TrayAccountItem == nil {
		return
	}
	if sess, ok := app.Session.Session(); ok {
		app.TrayAccountItem.Label = app.Localize(config.TKeyMenuSignOut, map[string]any{"Email": sess.User.Email}, nil)
	} else {
		app.TrayAccountItem.Label = app.GetMsg(config.TKeyMenuSignIn)
	}
	app.Menu.Refresh()
}

func (app *WeddingApp) toggleAccount() {
	if app.Session.IsAuthenticated() {
		app.Session.Logout()
		app.updateTrayStatus(stats.DashboardStats{}, statusSignedOut)
		return
	}
	app.ShowLoginWindow()
}

// backgroundWorker runs the periodic synchronization schedule.
func (app *WeddingApp) backgroundWorker() {
	log := slog.With(config.LogKeyComponent, config.CompWorker)

	if err := app.Session.Resume(app.Ctx); err != nil {
		log.Warn(config.MsgResumeFailed, config.LogKeyError, err)
	}
	app.performSync(false)

	getInterval := func() time.Duration {
		val := app.Preferences.IntWithFallback(config.PrefInterval, config.DefaultRefreshMin)
		if val <= 0 {
			val = config.DefaultRefreshMin
		}
		return time.Duration(val) * time.Minute
	}

	currentDuration := getInterval()
	ticker := time.NewTicker(currentDuration)
	defer ticker.Stop()

	log.Info(config.MsgWorkerStart, config.LogKeyInterval, currentDuration)

	for {
		select {
		case <-app.Ctx.Done():
			log.Info(config.MsgWorkerStop)
			return

		case <-app.configChan:
			newDuration := getInterval()
			if newDuration != currentDuration {
				log.Info(config.MsgUpdateSync, config.LogKeyOld, currentDuration, config.LogKeyNew, newDuration)
				currentDuration = newDuration
				ticker.Reset(currentDuration)
			}

		case <-ticker.C:
			if app.Preferences.IntWithFallback(config.PrefInterval, config.DefaultRefreshMin) == config.DisabledInterval {
				continue
			}
			app.performSync(false)
		}
	}
}

type trayState int

const (
	statusOK trayState = iota
	statusSignedOut
	statusError
)

// performSync refreshes the session when it is about to expire, reloads every
// collection and the inbox, and republishes the tasks calendar.
func (app *WeddingApp) performSync(manual bool) {
	app.syncMu.Lock()
	defer app.syncMu.Unlock()

	log := slog.With(config.LogKeyComponent, config.CompUI)
	log.Info(config.MsgSyncReq, config.LogKeyManual, manual)

	if !app.Session.IsAuthenticated() {
		app.updateTrayStatus(stats.DashboardStats{}, statusSignedOut)
		if manual {
			fyne.Do(app.ShowLoginWindow)
		}
		return
	}

	if app.Session.NeedsRefresh(app.Clock.Now()) {
		if err := app.Session.RefreshSession(app.Ctx); err != nil {
			app.sessionLost(err)
			return
		}
	}

	if manual {
		app.notify(app.GetMsg(config.TKeyNotifStart))
	}

	err := app.Data.LoadAll(app.Ctx)
	if code, ok := api.StatusCode(err); ok && (code == 401 || code == 403) {
		// the token was revoked server-side; one refresh attempt
		if rerr := app.Session.RefreshSession(app.Ctx); rerr != nil {
			app.sessionLost(rerr)
			return
		}
		err = app.Data.LoadAll(app.Ctx)
	}
	if ierr := app.Data.LoadInbox(app.Ctx); ierr != nil {
		log.Warn(config.MsgInboxFailed, config.LogKeyError, ierr)
	}

	app.publishFeed()

	dash := app.Data.DashboardStats()
	if err != nil {
		log.Error(config.MsgSyncFailed, config.LogKeyError, err)
		app.updateTrayStatus(dash, statusError)
		if manual {
			app.notify(app.Localize(config.TKeyNotifError, map[string]any{"Error": app.FormatError(err)}, nil))
		}
		return
	}

	app.updateTrayStatus(dash, statusOK)
	if manual {
		app.notify(app.GetMsg(config.TKeyNotifSuccess))
	}
}

// sessionLost reacts to a refresh that signed the user out.
func (app *WeddingApp) sessionLost(err error) {
	slog.Warn(config.MsgForcedSignOut,
		config.LogKeyComponent, config.CompUI,
		config.LogKeyError, err)
	app.updateTrayStatus(stats.DashboardStats{}, statusSignedOut)
	app.notify(app.GetMsg(config.TKeyNotifSignedOut))
}

// publishFeed renders the open tasks into the calendar feed.
func (app *WeddingApp) publishFeed() {
	cal := engine.NewTaskCalendar(app.Clock)
	cal.ReminderTrigger = app.reminderTrigger()
	cal.FormatSummary = app.buildSummaryFormatter()

	ics, dueToday, err := cal.Generate(app.Data.Tasks())
	if err != nil {
		slog.Error(config.MsgFeedFailed,
			config.LogKeyComponent, config.CompUI,
			config.LogKeyError, err)
		return
	}
	if app.Feed != nil {
		app.Feed.Update(ics)
	}
	if dueToday > 0 {
		slog.Info(config.MsgTasksDueToday,
			config.LogKeyComponent, config.CompUI,
			config.LogKeyCount, dueToday)
	}
}

// saveAll pushes the optimistic collections to the server.
func (app *WeddingApp) saveAll() {
	err := errors.Join(
		app.Data.SaveBudget(app.Ctx),
		app.Data.SaveGifts(app.Ctx),
		app.Data.SaveTasks(app.Ctx),
	)
	if err != nil {
		slog.Error(config.MsgSaveFailed,
			config.LogKeyComponent, config.CompUI,
			config.LogKeyError, err)
		app.notify(app.Localize(config.TKeyNotifSaveError, map[string]any{"Error": app.FormatError(err)}, nil))
		return
	}
	app.notify(app.GetMsg(config.TKeyNotifSaved))
}

func (app *WeddingApp) notify(text string) {
	app.App.SendNotification(fyne.NewNotification(config.AppName, text))
}

// updateTrayStatus shows the guest and budget summary and the next deadline.
func (app *WeddingApp) updateTrayStatus(dash stats.DashboardStats, state trayState) {
	if app.Menu == nil || app.TrayStatusItem == nil {
		return
	}

	var label string
	switch state {
	case statusSignedOut:
		label = app.GetMsg(config.TKeyTraySignedOut)
	case statusError:
		label = app.GetMsg(config.TKeyTrayError)
	default:
		label = app.Localize(config.TKeyTrayStatus, map[string]any{
			"Confirmed": dash.ConfirmedGuests,
			"Total":     dash.TotalGuests,
			"Budget":    fmt.Sprintf("%.0f", dash.BudgetPercentage()),
		}, nil)
		if label == config.TKeyTrayStatus {
			label = fmt.Sprintf(config.FallbackTrayDefault, dash.ConfirmedGuests, dash.TotalGuests)
		}
	}

	app.TrayStatusItem.Label = label
	if app.TrayNextItem != nil {
		app.TrayNextItem.Label = app.nextTaskLabel(state)
	}
	fyne.Do(app.Menu.Refresh)
}

func (app *WeddingApp) nextTaskLabel(state trayState) string {
	if state == statusSignedOut {
		return app.GetMsg(config.TKeyTrayNoTask)
	}
	task, days, ok := engine.NextDue(app.Data.Tasks(), app.Clock.Now())
	switch {
	case !ok:
		return app.GetMsg(config.TKeyTrayNoTask)
	case days == 0:
		return app.Localize(config.TKeyTrayTaskToday, map[string]any{"Title": task.Title}, nil)
	default:
		return app.Localize(config.TKeyTrayNextTask, map[string]any{"Title": task.Title, "Count": days}, days)
	}
}

// reminderTrigger turns the reminder preferences into an ISO8601 duration.
func (app *WeddingApp) reminderTrigger() string {
	if !app.Preferences.BoolWithFallback(config.PrefReminderEnabled, true) {
		return ""
	}
	val := app.Preferences.IntWithFallback(config.PrefReminderValue, config.DefaultReminderValue)
	unit := app.Preferences.StringWithFallback(config.PrefReminderUnit, config.UnitDays)
	dir := app.Preferences.StringWithFallback(config.PrefReminderDir, config.DirBefore)

	sign := config.ISOPeriodPrefix
	if dir == config.DirBefore {
		sign = config.ISONegativePrefix
	}

	switch unit {
	case config.UnitHours:
		return fmt.Sprintf("%s%s%d%s", sign, config.ISOTimePrefix, val, config.ISOHour)
	case config.UnitMinutes:
		return fmt.Sprintf("%s%s%d%s", sign, config.ISOTimePrefix, val, config.ISOMinute)
	default:
		return fmt.Sprintf("%s%d%s", sign, val, config.ISODay)
	}
}

// buildSummaryFormatter localizes calendar event titles.
func (app *WeddingApp) buildSummaryFormatter() func(model.WeddingTask) string {
	return func(t model.WeddingTask) string {
		key := config.TKeyEvtTask
		if t.Priority == model.PriorityUrgent {
			key = config.TKeyEvtTaskUrgent
		}
		msg := app.Localize(key, map[string]any{"Title": t.Title}, nil)
		if msg == key {
			return fmt.Sprintf(config.FallbackSummary, t.Title)
		}
		return msg
	}
}
