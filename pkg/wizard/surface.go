package wizard

// ScrollKind names a scroll destination.
type ScrollKind string

const (
	ScrollTop      ScrollKind = "top"
	ScrollForm     ScrollKind = "form"
	ScrollMessages ScrollKind = "messages"
	ScrollWidget   ScrollKind = "widget"
)

// ScrollTarget is where the surface should bring the user's attention.
// WidgetUID is set for ScrollWidget.
type ScrollTarget struct {
	Kind      ScrollKind
	WidgetUID string
}

// Surface is the presentation side the controller drives. Implementations
// must not call back into the controller's mutating methods.
type Surface interface {
	SetSubmitEnabled(enabled bool)
	ScrollTo(target ScrollTarget)
	Alert(message string)
	Navigate(url string)
}

// NopSurface ignores every presentation request.
type NopSurface struct{}

func (NopSurface) SetSubmitEnabled(bool) {}
func (NopSurface) ScrollTo(ScrollTarget) {}
func (NopSurface) Alert(string)          {}
func (NopSurface) Navigate(string)       {}
