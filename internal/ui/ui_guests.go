package ui

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/tartampluch/go-wedding/internal/config"
	"github.com/tartampluch/go-wedding/internal/engine"
	"github.com/tartampluch/go-wedding/internal/model"
	"github.com/tartampluch/go-wedding/internal/stats"
	"github.com/tartampluch/go-wedding/internal/store"
)

// guestView is the filtered and sorted projection shown in the guests table.
type guestView struct {
	all     []model.Guest
	rows    []model.Guest
	query   string
	filter  model.Attendance // empty means all
	sortCol int
	sortAsc bool
}

func (v *guestView) apply() {
	rows := v.all
	if v.filter != "" {
		rows = stats.GuestsByAttendance(rows, v.filter)
	}
	rows = stats.SortGuestsByName(stats.SearchGuests(rows, v.query))

	if v.sortCol != config.ColIDName {
		// Stable, so equal keys stay in name order.
		slices.SortStableFunc(rows, func(a, b model.Guest) int {
			switch v.sortCol {
			case config.ColIDAttendance:
				return cmp.Compare(attendanceRank(a.Attendance), attendanceRank(b.Attendance))
			case config.ColIDParty:
				return cmp.Compare(a.GuestCount, b.GuestCount)
			case config.ColIDGroup:
				return strings.Compare(strings.ToLower(a.Group), strings.ToLower(b.Group))
			}
			return 0
		})
	}
	if !v.sortAsc {
		slices.Reverse(rows)
	}
	v.rows = rows
}

func attendanceRank(a model.Attendance) int {
	switch a {
	case model.AttendanceYes:
		return 0
	case model.AttendanceMaybe:
		return 1
	default:
		return 2
	}
}

// ShowGuestsWindow lists the guests with search, attendance filter, sortable
// headers, and buttons to add or import guests. The table follows store
// changes while the window is open.
func (app *WeddingApp) ShowGuestsWindow() {
	if app.guestsWindow != nil {
		app.guestsWindow.RequestFocus()
		return
	}

	w := app.App.NewWindow(app.GetMsg(config.TKeyWinGuests))
	app.guestsWindow = w
	w.Resize(fyne.NewSize(config.GuestsWinWidth, config.GuestsWinHeight))

	view := &guestView{all: app.Data.Guests(), sortCol: config.ColIDName, sortAsc: true}
	view.apply()

	slog.Info(config.LogMsgOpenGuests,
		config.LogKeyComponent, config.CompUI,
		config.LogKeyCount, len(view.all))

	summary := widget.NewLabel("")
	updateSummary := func() {
		d := stats.Dashboard(view.all, model.BudgetData{}, nil, nil, nil, app.Clock.Now())
		summary.SetText(app.Localize(config.TKeyLblGuestSummary, map[string]any{
			"Confirmed": d.ConfirmedGuests,
			"Total":     d.TotalGuests,
			"Headcount": d.ConfirmedHeadcount,
		}, nil))
	}
	updateSummary()

	table := app.newGuestTable(view)

	search := widget.NewEntry()
	search.PlaceHolder = app.GetMsg(config.TKeyLblSearch)
	search.OnChanged = func(q string) {
		view.query = q
		view.apply()
		table.Refresh()
	}

	filterLabels := []string{
		app.GetMsg(config.TKeyFilterAll),
		app.attendanceLabel(model.AttendanceYes),
		app.attendanceLabel(model.AttendanceMaybe),
		app.attendanceLabel(model.AttendanceNo),
	}
	filterValues := []model.Attendance{"", model.AttendanceYes, model.AttendanceMaybe, model.AttendanceNo}
	filter := widget.NewSelect(filterLabels, func(s string) {
		view.filter = filterValues[max(slices.Index(filterLabels, s), 0)]
		view.apply()
		table.Refresh()
	})
	filter.SetSelectedIndex(0)

	addBtn := widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnAddGuest), theme.ContentAddIcon(), func() {
		app.showAddGuestDialog(w)
	})
	importBtn := widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnImport), theme.DownloadIcon(), func() {
		go app.importGuests()
	})

	cancel := app.Data.OnChange(func(snap store.Snapshot) {
		fyne.Do(func() {
			view.all = snap.Guests
			view.apply()
			table.Refresh()
			updateSummary()
		})
	})

	top := container.NewBorder(nil, nil, nil, container.NewHBox(filter, addBtn, importBtn), search)
	w.SetContent(container.NewBorder(top, summary, nil, nil, table))
	w.SetOnClosed(func() {
		cancel()
		app.guestsWindow = nil
	})
	w.Show()
}

func (app *WeddingApp) newGuestTable(view *guestView) *widget.Table {
	var table *widget.Table
	table = widget.NewTable(
		func() (int, int) { return len(view.rows), config.GuestColumns },
		func() fyne.CanvasObject { return widget.NewLabel(config.TablePlaceholder) },
		func(id widget.TableCellID, o fyne.CanvasObject) {
			label := o.(*widget.Label)
			if id.Row >= len(view.rows) {
				return
			}
			g := view.rows[id.Row]
			switch id.Col {
			case config.ColIDName:
				label.SetText(g.FullName)
			case config.ColIDAttendance:
				label.SetText(app.attendanceLabel(g.Attendance))
			case config.ColIDParty:
				label.SetText(strconv.Itoa(g.GuestCount))
			case config.ColIDGroup:
				label.SetText(g.Group)
			case config.ColIDPhone:
				label.SetText(g.Phone)
			}
		},
	)

	table.ShowHeaderRow = true
	table.CreateHeader = func() fyne.CanvasObject {
		return widget.NewButton(config.TablePlaceholder, func() {})
	}
	headers := map[int]string{
		config.ColIDName:       config.TKeyColName,
		config.ColIDAttendance: config.TKeyColAttendance,
		config.ColIDParty:      config.TKeyColParty,
		config.ColIDGroup:      config.TKeyColGroup,
		config.ColIDPhone:      config.TKeyColPhone,
	}
	table.UpdateHeader = func(id widget.TableCellID, o fyne.CanvasObject) {
		btn := o.(*widget.Button)
		text := app.GetMsg(headers[id.Col])
		if id.Col == view.sortCol {
			if view.sortAsc {
				text += config.SortIconAsc
			} else {
				text += config.SortIconDesc
			}
		}
		btn.SetText(text)
		btn.OnTapped = func() {
			if view.sortCol == id.Col {
				view.sortAsc = !view.sortAsc
			} else {
				view.sortCol, view.sortAsc = id.Col, true
			}
			view.apply()
			slog.Debug(config.LogMsgSorted,
				config.LogKeyComponent, config.CompUI,
				config.LogKeySortCol, view.sortCol,
				config.LogKeySortAsc, view.sortAsc)
			table.Refresh()
		}
	}

	table.SetColumnWidth(config.ColIDName, config.ColWidthName)
	table.SetColumnWidth(config.ColIDAttendance, config.ColWidthAttendance)
	table.SetColumnWidth(config.ColIDParty, config.ColWidthParty)
	table.SetColumnWidth(config.ColIDGroup, config.ColWidthGroup)
	table.SetColumnWidth(config.ColIDPhone, config.ColWidthPhone)
	return table
}

func (app *WeddingApp) attendanceLabel(a model.Attendance) string {
	switch a {
	case model.AttendanceYes:
		return app.GetMsg(config.TKeyAttYes)
	case model.AttendanceNo:
		return app.GetMsg(config.TKeyAttNo)
	default:
		return app.GetMsg(config.TKeyAttMaybe)
	}
}

// showAddGuestDialog collects a new guest and sends it to the server.
func (app *WeddingApp) showAddGuestDialog(parent fyne.Window) {
	name := widget.NewEntry()
	phone := widget.NewEntry()
	group := widget.NewEntry()
	count := NewNumericalEntry()
	count.SetText("1")

	labels := []string{
		app.attendanceLabel(model.AttendanceYes),
		app.attendanceLabel(model.AttendanceMaybe),
		app.attendanceLabel(model.AttendanceNo),
	}
	values := []model.Attendance{model.AttendanceYes, model.AttendanceMaybe, model.AttendanceNo}
	attendance := widget.NewSelect(labels, nil)
	attendance.SetSelectedIndex(1)

	items := []*widget.FormItem{
		widget.NewFormItem(app.GetMsg(config.TKeyColName), name),
		widget.NewFormItem(app.GetMsg(config.TKeyColAttendance), attendance),
		widget.NewFormItem(app.GetMsg(config.TKeyColParty), count),
		widget.NewFormItem(app.GetMsg(config.TKeyColGroup), group),
		widget.NewFormItem(app.GetMsg(config.TKeyColPhone), phone),
	}

	dialog.ShowForm(app.GetMsg(config.TKeyWinAddGuest), app.GetMsg(config.TKeyBtnSave), app.GetMsg(config.TKeyBtnCancel), items, func(ok bool) {
		if !ok {
			return
		}
		n, ok := count.IntValue()
		if !ok {
			n = 1
		}
		g := model.Guest{
			FullName:   strings.TrimSpace(name.Text),
			Phone:      strings.TrimSpace(phone.Text),
			Group:      strings.TrimSpace(group.Text),
			Attendance: values[max(attendance.SelectedIndex(), 0)],
			GuestCount: n,
		}
		go func() {
			if _, err := app.Data.AddGuest(app.Ctx, g); err != nil {
				fyne.Do(func() { dialog.ShowError(fmt.Errorf("%s", app.Data.LastError()), parent) })
			}
		}()
	}, parent)
}

// importSource reads the address book settings.
func (app *WeddingApp) importSource() engine.ImportSource {
	src := engine.ImportSource{
		Mode:      app.Preferences.StringWithFallback(config.PrefSourceMode, config.SourceModeLocal),
		LocalPath: app.Preferences.String(config.PrefLocalPath),
		WebURL:    app.Preferences.String(config.PrefCardDAVURL),
		WebUser:   app.Preferences.String(config.PrefUsername),
	}
	if src.WebUser != "" && app.Secrets != nil {
		if p, err := app.Secrets.Get(config.CredKeyImportPrefix + src.WebUser); err == nil {
			src.WebPass = p
		} else {
			slog.Debug(config.MsgPassFail,
				config.LogKeyUser, src.WebUser,
				config.LogKeyError, err,
				config.LogKeyComponent, config.CompUI)
		}
	}
	return src
}

// importGuests reads the configured address book and adds every card as a
// pending guest. Each guest goes through the server, so a failure stops the
// import with the guests added so far kept.
func (app *WeddingApp) importGuests() int {
	drafts, err := app.Importer.Import(app.Ctx, app.importSource())
	if err != nil {
		app.notify(app.Localize(config.TKeyNotifImportError, map[string]any{"Error": app.FormatError(err)}, nil))
		return 0
	}

	added := 0
	for _, g := range drafts {
		if _, err := app.Data.AddGuest(app.Ctx, g); err != nil {
			app.notify(app.Localize(config.TKeyNotifImportError, map[string]any{"Error": app.Data.LastError()}, nil))
			break
		}
		added++
	}
	if added > 0 {
		app.notify(app.Localize(config.TKeyNotifImported, map[string]any{"Count": added}, added))
	}
	return added
}
