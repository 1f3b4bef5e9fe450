// Package ui is the desktop front end: a fyne window with the board canvas,
// a toolbar and a status line.
package ui

import (
	"fmt"
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"github.com/wastless/ridex-design-app-sub001/internal/board"
	"github.com/wastless/ridex-design-app-sub001/internal/editor"
	"github.com/wastless/ridex-design-app-sub001/internal/export"
)

type Options struct {
	Title string
	// ShareLink is shown with a copy button when this participant hosts.
	ShareLink string
	// MaxLayers caps how many layers a loaded file may add.
	MaxLayers int
	// SaveDir is where save and export dialogs start.
	SaveDir string
	// OnClose runs when the window closes.
	OnClose func()
	Logger  *slog.Logger
}

// App is the main window.
type App struct {
	fapp   fyne.App
	win    fyne.Window
	board  *BoardWidget
	status *widget.Label
	opts   Options
	log    *slog.Logger
}

// New builds the window around ctrl. Call Run on the main goroutine.
func New(ctrl *editor.Controller, opts Options) *App {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Title == "" {
		opts.Title = "Ridex"
	}
	a := &App{
		fapp:   app.NewWithID("com.wastless.ridex"),
		status: widget.NewLabel("Ready"),
		opts:   opts,
		log:    opts.Logger.With("component", "ui"),
	}
	a.win = a.fapp.NewWindow(opts.Title)
	a.win.Resize(fyne.NewSize(1280, 800))
	a.board = NewBoardWidget(ctrl, opts.Logger)
	a.board.OnEditText = a.editText

	top := newToolbar(a).object()
	a.win.SetContent(container.NewBorder(top, a.statusBar(), nil, nil, a.board))
	a.win.SetOnClosed(func() {
		a.board.Close()
		if opts.OnClose != nil {
			opts.OnClose()
		}
	})
	return a
}

// Run shows the window and blocks until it is closed.
func (a *App) Run() {
	a.win.Canvas().Focus(a.board)
	a.win.ShowAndRun()
}

// SetStatus may be called from any goroutine.
func (a *App) SetStatus(text string) {
	fyne.Do(func() { a.status.SetText(text) })
}

func (a *App) statusBar() fyne.CanvasObject {
	b := a.board.Controller().Editor().Board()
	people := widget.NewLabel("")
	show := func(n int) { people.SetText(fmt.Sprintf("%d others online", n)) }
	n, _ := board.Watch(b, func(v board.View) int { return len(v.Others()) }, func(n int) {
		fyne.Do(func() { show(n) })
	})
	show(n)

	items := []fyne.CanvasObject{a.status, widget.NewSeparator(), people}
	if a.opts.ShareLink != "" {
		link := a.opts.ShareLink
		items = append(items, widget.NewSeparator(), widget.NewLabel(link),
			widget.NewButton("Copy link", func() {
				a.win.Clipboard().SetContent(link)
				a.SetStatus("Link copied")
			}))
	}
	return container.NewHBox(items...)
}

func (a *App) fail(what string, err error) {
	a.log.Error(what, "err", err)
	a.SetStatus(what + ": " + err.Error())
}

func (a *App) startIn(d interface{ SetLocation(fyne.ListableURI) }) {
	if a.opts.SaveDir == "" {
		return
	}
	uri, err := storage.ListerForURI(storage.NewFileURI(a.opts.SaveDir))
	if err != nil {
		return
	}
	d.SetLocation(uri)
}

func (a *App) snapshot() board.Snapshot {
	return a.board.Controller().Editor().Board().Snapshot()
}

func (a *App) save() {
	d := dialog.NewFileSave(func(w fyne.URIWriteCloser, err error) {
		if err != nil {
			a.fail("save failed", err)
			return
		}
		if w == nil {
			return
		}
		defer w.Close()
		s := a.snapshot()
		if err := export.Save(w, s); err != nil {
			a.fail("save failed", err)
			return
		}
		a.SetStatus(fmt.Sprintf("Saved %d layers", len(s.Layers)))
	}, a.win)
	d.SetFileName("room.json")
	a.startIn(d)
	d.Show()
}

func (a *App) load() {
	d := dialog.NewFileOpen(func(r fyne.URIReadCloser, err error) {
		if err != nil {
			a.fail("load failed", err)
			return
		}
		if r == nil {
			return
		}
		defer r.Close()
		s, err := export.Load(r)
		if err != nil {
			a.fail("load failed", err)
			return
		}
		n := a.board.Controller().Editor().Board().Restore(s, a.opts.MaxLayers)
		a.SetStatus(fmt.Sprintf("Loaded %d layers", n))
	}, a.win)
	a.startIn(d)
	d.Show()
}

func (a *App) exportPDF() {
	d := dialog.NewFileSave(func(w fyne.URIWriteCloser, err error) {
		if err != nil {
			a.fail("export failed", err)
			return
		}
		if w == nil {
			return
		}
		defer w.Close()
		if err := export.PDF(w, a.snapshot()); err != nil {
			a.fail("export failed", err)
			return
		}
		a.SetStatus("Exported " + w.URI().Name())
	}, a.win)
	d.SetFileName("room.pdf")
	a.startIn(d)
	d.Show()
}

func (a *App) insertImage() {
	entry := widget.NewEntry()
	entry.SetPlaceHolder("https://...")
	dialog.ShowCustomConfirm("Insert image", "Insert", "Cancel", entry, func(ok bool) {
		if !ok || entry.Text == "" {
			return
		}
		if a.board.Controller().Editor().InsertImage(entry.Text, a.board.Center()) == "" {
			a.SetStatus("Layer limit reached")
		}
	}, a.win)
}

func (a *App) editText(id, text string) {
	entry := widget.NewMultiLineEntry()
	entry.SetText(text)
	dialog.ShowCustomConfirm("Edit text", "Apply", "Cancel", entry, func(ok bool) {
		if ok {
			a.board.Controller().Editor().SetText(id, entry.Text)
		}
	}, a.win)
}
