package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/wastless/ridex-design-app-sub001/internal/editor"
	"github.com/wastless/ridex-design-app-sub001/internal/geom"
	"github.com/wastless/ridex-design-app-sub001/internal/layer"
)

var (
	tools = []editor.Tool{
		editor.ToolSelect, editor.ToolRectangle, editor.ToolEllipse,
		editor.ToolTriangle, editor.ToolText, editor.ToolPencil,
	}

	palette = []geom.RGB{
		geom.Black,
		{R: 255},
		{G: 200, B: 80},
		{R: 59, G: 130, B: 246},
		{R: 255, G: 214},
		geom.White,
	}

	roomColors = map[string]geom.RGB{
		"Dark":  {R: 0x1e, G: 0x1e, B: 0x1e},
		"Light": {R: 245, G: 246, B: 248},
		"White": geom.White,
	}
)

type colorSwatch struct {
	widget.BaseWidget
	Color    geom.RGB
	OnTapped func(geom.RGB)
}

func newColorSwatch(c geom.RGB, tapped func(geom.RGB)) *colorSwatch {
	s := &colorSwatch{Color: c, OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	rect := canvas.NewRectangle(s.Color.NRGBA(100))
	rect.SetMinSize(fyne.NewSize(24, 24))

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.Gray{Y: 150}
	border.StrokeWidth = 1

	return widget.NewSimpleRenderer(container.NewStack(rect, border))
}

func (s *colorSwatch) Tapped(*fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.Color)
	}
}

// toolbar holds the controls above the canvas.
type toolbar struct {
	app   *App
	radio *widget.RadioGroup
}

func newToolbar(a *App) *toolbar {
	t := &toolbar{app: a}
	names := make([]string, len(tools))
	for i, tool := range tools {
		names[i] = tool.String()
	}
	t.radio = widget.NewRadioGroup(names, func(name string) {
		for _, tool := range tools {
			if tool.String() == name && tool != a.board.Controller().Tool() {
				a.board.SetTool(tool)
			}
		}
	})
	t.radio.Horizontal = true
	t.radio.Required = true
	t.radio.SetSelected(editor.ToolSelect.String())
	a.board.OnToolChanged = func(tool editor.Tool) { t.radio.SetSelected(tool.String()) }
	return t
}

func (t *toolbar) object() fyne.CanvasObject {
	a := t.app
	ed := a.board.Controller().Editor()
	actions := widget.NewToolbar(
		widget.NewToolbarAction(theme.DeleteIcon(), func() { ed.DeleteLayers() }),
		widget.NewToolbarAction(theme.ContentUndoIcon(), func() { ed.Undo() }),
		widget.NewToolbarAction(theme.ContentRedoIcon(), func() { ed.Redo() }),
		widget.NewToolbarAction(theme.ContentCopyIcon(), func() { ed.Copy() }),
		widget.NewToolbarAction(theme.ContentPasteIcon(), func() { ed.Paste() }),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.FileImageIcon(), a.insertImage),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.DocumentSaveIcon(), a.save),
		widget.NewToolbarAction(theme.FolderOpenIcon(), a.load),
		widget.NewToolbarAction(theme.DocumentPrintIcon(), a.exportPDF),
	)

	// A swatch sets the pen color and fills the selected layers.
	onColor := func(c geom.RGB) {
		ed.SetPenColor(c)
		if len(ed.Board().View().Selected()) > 0 {
			ed.UpdateLayer(layer.Patch{Fill: layer.Ptr(c)})
		}
	}
	swatches := container.NewHBox()
	for _, c := range palette {
		swatches.Add(newColorSwatch(c, onColor))
	}

	opacity := widget.NewSlider(0, 100)
	opacity.SetValue(layer.DefaultOpacity)
	opacity.OnChangeEnded = func(v float64) {
		ed.UpdateLayer(layer.Patch{Opacity: layer.Ptr(int(v))})
	}

	background := widget.NewSelect([]string{"Dark", "Light", "White"}, func(name string) {
		if c, ok := roomColors[name]; ok {
			ed.SetRoomColor(c)
		}
	})
	background.PlaceHolder = "Background"

	return container.NewVBox(
		container.NewHBox(t.radio, widget.NewSeparator(), actions, layout.NewSpacer()),
		container.NewHBox(
			widget.NewLabel("Color:"),
			swatches,
			widget.NewSeparator(),
			widget.NewLabel("Opacity:"),
			container.New(layout.NewGridWrapLayout(fyne.NewSize(150, 35)), opacity),
			widget.NewSeparator(),
			background,
			layout.NewSpacer(),
		),
	)
}
