package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"scanhist/internal/chrome"
	"scanhist/internal/config"
)

// chromeReport is the printable form of a bar tint.
type chromeReport struct {
	Scrolled      bool   `json:"scrolled"`
	Scrollable    bool   `json:"scrollable"`
	StatusBar     string `json:"status_bar"`
	NavigationBar string `json:"navigation_bar"`
	Toolbar       string `json:"toolbar"`
}

// recordingHost captures the colours the colorizer sets.
type recordingHost struct {
	window  recordingWindow
	toolbar recordingToolbar
	noBar   bool
}

type recordingWindow struct {
	status, nav chrome.Color
}

func (w *recordingWindow) SetStatusBarColor(c chrome.Color)     { w.status = c }
func (w *recordingWindow) SetNavigationBarColor(c chrome.Color) { w.nav = c }

type recordingToolbar struct {
	background chrome.Color
}

func (t *recordingToolbar) SetBackground(c chrome.Color) { t.background = c }

func (h *recordingHost) Window() chrome.Window { return &h.window }

func (h *recordingHost) Toolbar() chrome.Toolbar {
	if h.noBar {
		return nil
	}
	return &h.toolbar
}

func newChromeCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var (
		state      chrome.ScrollState
		colorValue string
		noToolbar  bool
	)

	cmd := &cobra.Command{
		Use:   "chrome",
		Short: "Show the bar tint for a list scroll position",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if colorValue == "" {
				colorValue = cfg.Chrome.PrimaryColor
			}
			primary, err := config.ParseColor(colorValue)
			if err != nil {
				return err
			}

			report := runColorizer(chrome.Color(primary), state, noToolbar)
			slog.Debug("bar tint computed", "scrolled", report.Scrolled, "scrollable", report.Scrollable)
			if *jsonOutput {
				return writeJSON(report)
			}
			return writePlain("scrolled: %t\nscrollable: %t\nstatus bar: %s\nnavigation bar: %s\ntoolbar: %s\n",
				report.Scrolled, report.Scrollable, report.StatusBar, report.NavigationBar, report.Toolbar)
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&state.FirstVisible, "first-visible", 0, "adapter position of the first visible item")
	flags.IntVar(&state.TotalItems, "items", 0, "number of items in the list")
	flags.IntVar(&state.FirstChildTop, "first-top", 0, "top offset of the first visible child")
	flags.IntVar(&state.LastChildBottom, "last-bottom", 0, "bottom offset of the last visible child")
	flags.IntVar(&state.ViewportHeight, "height", 0, "viewport height")
	flags.StringVar(&colorValue, "color", "", "primary colour (default: chrome.primary_color)")
	flags.BoolVar(&noToolbar, "no-toolbar", false, "simulate a screen without an action bar")

	return cmd
}

func runColorizer(primary chrome.Color, state chrome.ScrollState, noToolbar bool) chromeReport {
	host := &recordingHost{noBar: noToolbar}
	queue := &chrome.Queue{}
	colorizer := chrome.New(host, queue, primary)
	colorizer.Init()
	colorizer.OnScroll(state)
	queue.Drain()

	report := chromeReport{
		Scrolled:      state.Scrolled(),
		Scrollable:    state.Scrollable(),
		StatusBar:     host.window.status.String(),
		NavigationBar: host.window.nav.String(),
		Toolbar:       "none",
	}
	if !noToolbar {
		report.Toolbar = host.toolbar.background.String()
	}
	return report
}
