// Package chrome tints the system bars and toolbar depending on whether a
// list is scrolled away from its edges.
package chrome

import "fmt"

// Color is a packed 0xAARRGGBB value.
type Color uint32

// Transparent is used for bars over unscrolled content.
const Transparent Color = 0

const translucentAlpha Color = 0xd8000000

// String formats the colour as #AARRGGBB.
func (c Color) String() string {
	return fmt.Sprintf("#%08x", uint32(c))
}

// Translucent replaces the alpha channel of primary with the bar alpha.
func Translucent(primary Color) Color {
	return primary&0xffffff | translucentAlpha
}

// Colors is the computed tint for every surface.
type Colors struct {
	StatusBar     Color `json:"status_bar" yaml:"status_bar"`
	NavigationBar Color `json:"navigation_bar" yaml:"navigation_bar"`
	Toolbar       Color `json:"toolbar" yaml:"toolbar"`
}

// Compute maps the scroll flags to bar colours. The top surfaces are
// tinted once the list leaves its top edge; the bottom bar also when
// there is more content below the viewport.
func Compute(scrolled, scrollable bool, accent Color) Colors {
	top := Transparent
	if scrolled {
		top = accent
	}
	bottom := Transparent
	if scrolled || scrollable {
		bottom = accent
	}
	return Colors{StatusBar: top, NavigationBar: bottom, Toolbar: top}
}

// Window is the platform window whose bar colours can be set.
type Window interface {
	SetStatusBarColor(Color)
	SetNavigationBarColor(Color)
}

// Toolbar is an action bar with a solid background.
type Toolbar interface {
	SetBackground(Color)
}

// Host resolves the UI surfaces. Window returns nil when no container is
// attached; Toolbar returns nil when there is no action bar.
type Host interface {
	Window() Window
	Toolbar() Toolbar
}

// Colorizer applies bar colours to a host.
type Colorizer struct {
	host      Host
	scheduler Scheduler
	accent    Color
}

// New returns a Colorizer for host. primary is the theme colour; its
// alpha is replaced. A nil scheduler runs recomputations immediately.
func New(host Host, scheduler Scheduler, primary Color) *Colorizer {
	if scheduler == nil {
		scheduler = Immediate{}
	}
	return &Colorizer{host: host, scheduler: scheduler, accent: Translucent(primary)}
}

// Accent returns the translucent colour used for tinted bars.
func (c *Colorizer) Accent() Color {
	return c.accent
}

// Init colours the bars for an unscrolled list.
func (c *Colorizer) Init() {
	c.Apply(false, false)
}

// Apply computes and sets the colours. It does nothing when the host has
// no window.
func (c *Colorizer) Apply(scrolled, scrollable bool) Colors {
	colors := Compute(scrolled, scrollable, c.accent)
	if c.host == nil {
		return colors
	}
	win := c.host.Window()
	if win == nil {
		return colors
	}
	win.SetStatusBarColor(colors.StatusBar)
	win.SetNavigationBarColor(colors.NavigationBar)
	if tb := c.host.Toolbar(); tb != nil {
		tb.SetBackground(colors.Toolbar)
	}
	return colors
}

// OnScroll schedules a recomputation for the next idle tick. Layout may
// not have settled when the scroll callback fires, e.g. right after a
// configuration change.
func (c *Colorizer) OnScroll(state ScrollState) {
	c.scheduler.Post(func() {
		c.Apply(state.Scrolled(), state.Scrollable())
	})
}
