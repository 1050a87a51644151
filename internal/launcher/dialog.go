package launcher

import (
	"fmt"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/charmbracelet/log"
	"github.com/danielfvm/shadow/internal/options"
)

const (
	windowTitle  = "shadow"
	windowWidth  = 460
	windowHeight = 420
)

// StartFunc launches a renderer for cfg.
type StartFunc func(cfg options.Config) error

// Run shows the dialog and blocks until it is closed.
func Run(base options.Config, displays []string, start StartFunc) {
	a := app.New()
	w := a.NewWindow(windowTitle)
	w.Resize(fyne.NewSize(windowWidth, windowHeight))
	w.SetFixedSize(true)
	w.CenterOnScreen()

	sel := NewSelection(base)

	path := widget.NewEntry()
	path.SetPlaceHolder("path to a .frag or .glsl file")
	path.SetText(sel.ShaderPath)
	browse := widget.NewButton("Browse…", func() {
		dialog.ShowFileOpen(func(rc fyne.URIReadCloser, err error) {
			if err != nil || rc == nil {
				return
			}
			defer rc.Close()
			path.SetText(rc.URI().Path())
		}, w)
	})

	mode := widget.NewSelect([]string{"background", "window", "root"}, nil)
	mode.SetSelected(sel.Mode)

	display := widget.NewSelect(displays, nil)
	display.SetSelected(sel.Display)

	filter := widget.NewRadioGroup([]string{"smooth", "pixel"}, nil)
	filter.Horizontal = true
	filter.SetSelected(sel.Filter)

	quality, qualityRow := slider(options.MinQuality, options.MaxQuality, 0.01, sel.Quality)
	speed, speedRow := slider(-5, 5, 0.1, sel.Speed)
	opacity, opacityRow := slider(0, 1, 0.05, sel.Opacity)

	framelimit := widget.NewEntry()
	framelimit.SetText(strconv.Itoa(sel.FrameLimit))

	stats := widget.NewCheck("Show frame statistics", nil)
	stats.SetChecked(sel.Stats)

	status := widget.NewLabel("")
	status.Wrapping = fyne.TextWrapWord

	form := widget.NewForm(
		widget.NewFormItem("Shader", container.NewBorder(nil, nil, nil, browse, path)),
		widget.NewFormItem("Mode", mode),
		widget.NewFormItem("Display", display),
		widget.NewFormItem("Quality", qualityRow),
		widget.NewFormItem("Scaling", filter),
		widget.NewFormItem("Speed", speedRow),
		widget.NewFormItem("Opacity", opacityRow),
		widget.NewFormItem("Frame limit", framelimit),
		widget.NewFormItem("", stats),
	)

	find := widget.NewButton("Find shaders", func() {
		if err := openURL(ShaderSite); err != nil {
			log.Error("opening shader site", "err", err)
			status.SetText(err.Error())
		}
	})
	launch := widget.NewButton("Start", func() {
		limit, err := strconv.Atoi(framelimit.Text)
		if err != nil {
			status.SetText(fmt.Sprintf("frame limit must be a whole number, got %q", framelimit.Text))
			return
		}
		cfg, err := Selection{
			ShaderPath: path.Text,
			Mode:       mode.Selected,
			Filter:     filter.Selected,
			Display:    display.Selected,
			Quality:    quality.Value,
			Speed:      speed.Value,
			Opacity:    opacity.Value,
			FrameLimit: limit,
			Stats:      stats.Checked,
		}.Config(base)
		if err != nil {
			status.SetText(err.Error())
			return
		}
		if err := start(cfg); err != nil {
			log.Error("starting renderer", "err", err)
			status.SetText(err.Error())
			return
		}
		status.SetText("Started " + cfg.ShaderPath + " in " + cfg.Render.Mode.String() + " mode.")
	})
	launch.Importance = widget.HighImportance

	buttons := container.NewHBox(find, widget.NewSeparator(), launch)
	w.SetContent(container.NewBorder(nil, container.NewVBox(status, container.NewCenter(buttons)), nil, nil, form))
	w.ShowAndRun()
}

// slider returns a slider and a row showing it next to its current value.
func slider(min, max, step, value float64) (*widget.Slider, fyne.CanvasObject) {
	s := widget.NewSlider(min, max)
	s.Step = step
	s.SetValue(value)
	label := widget.NewLabel(strconv.FormatFloat(value, 'f', 2, 64))
	s.OnChanged = func(v float64) {
		label.SetText(strconv.FormatFloat(v, 'f', 2, 64))
	}
	return s, container.NewBorder(nil, nil, nil, label, s)
}
