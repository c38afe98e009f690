package givebox

import (
	"slices"

	"github.com/mscno/givebox/pkg/api"
	"github.com/mscno/givebox/pkg/route"
)

// Tone classifies a message for display.
type Tone int

const (
	ToneNone Tone = iota
	ToneInfo
	ToneSuccess
	ToneError
)

// Message is a line of feedback text shown on a view.
type Message struct {
	Text string
	Tone Tone
}

func errorMessage(text string) Message   { return Message{Text: text, Tone: ToneError} }
func successMessage(text string) Message { return Message{Text: text, Tone: ToneSuccess} }

// Button is the rendered state of a clickable control.
type Button struct {
	Label    string
	Disabled bool
}

// LoginState is the position in the OTP flow.
type LoginState int

const (
	LoginIdle LoginState = iota
	LoginAwaitingSend
	LoginOTPRequested
	LoginAwaitingVerify
)

func (s LoginState) String() string {
	switch s {
	case LoginIdle:
		return "idle"
	case LoginAwaitingSend:
		return "awaiting-otp-send"
	case LoginOTPRequested:
		return "otp-requested"
	case LoginAwaitingVerify:
		return "awaiting-otp-verify"
	}
	return "unknown"
}

// Button captions.
const (
	LabelSendOTP   = "Click to Verify Email"
	LabelSending   = "Sending OTP..."
	LabelVerify    = "Login"
	LabelVerifying = "Verifying..."
	LabelWorking   = "Processing..."
)

// LoginPanel is the state of the login view.
type LoginPanel struct {
	State   LoginState
	Message Message
	// Email is the editable address field.
	Email string
	// OTPVisible reveals the passcode section, pre-filled read-only with OTPEmail.
	OTPVisible   bool
	OTPEmail     string
	SendButton   Button
	VerifyButton Button
}

// ListStatus is the load state of a fetched collection.
type ListStatus int

const (
	ListLoading ListStatus = iota
	ListReady
	ListEmpty
	ListError
)

// OrganizationEntry is one clickable NGO on the dashboard.
type OrganizationEntry struct {
	api.Organization
	Link string
}

// DashboardPanel is the state of the dashboard view.
type DashboardPanel struct {
	Identity string
	// DonorCount is the rendered total: a number, "Error", or "" before the first load.
	DonorCount    string
	ListStatus    ListStatus
	Placeholder   string
	Organizations []OrganizationEntry
}

// Checkbox is one requirement item on the details view. Index is 1-based and
// stable for the lifetime of the rendered catalog.
type Checkbox struct {
	Index    int
	ID       string
	Category string
	Item     string
	Checked  bool
}

// CategorySection groups the checkboxes of one category.
type CategorySection struct {
	Category string
	Items    []Checkbox
}

// ActionButtons holds the three submit controls.
type ActionButtons struct {
	Donate   Button
	Giveaway Button
	Resale   Button
}

// Get returns the button for kind.
func (b ActionButtons) Get(kind api.ActionKind) Button {
	switch kind {
	case api.ActionGiveaway:
		return b.Giveaway
	case api.ActionResale:
		return b.Resale
	}
	return b.Donate
}

func (b *ActionButtons) set(kind api.ActionKind, btn Button) {
	switch kind {
	case api.ActionDonate:
		b.Donate = btn
	case api.ActionGiveaway:
		b.Giveaway = btn
	case api.ActionResale:
		b.Resale = btn
	}
}

// DetailsPanel is the state of the organization details view.
type DetailsPanel struct {
	OrganizationID int
	Title          string
	ListStatus     ListStatus
	Placeholder    string
	Sections       []CategorySection
	OriginalCost   string
	PurchaseYear   string
	// ResaleEstimate is the advisory payout, set when cost and year both parse.
	ResaleEstimate *float64
	Buttons        ActionButtons
	Message        Message
}

// Frame is a snapshot of everything the UI shows. Only the panel matching
// View is visible.
type Frame struct {
	Location  string
	View      route.View
	Login     LoginPanel
	Dashboard DashboardPanel
	Details   DetailsPanel
}

// Renderer draws frames. Render is called with the controller's lock held and
// must not call back into the controller.
type Renderer interface {
	Render(f Frame)
}

// RenderFunc adapts a function to Renderer.
type RenderFunc func(f Frame)

func (fn RenderFunc) Render(f Frame) { fn(f) }

type discardRenderer struct{}

func (discardRenderer) Render(Frame) {}

func (f Frame) clone() Frame {
	f.Dashboard.Organizations = slices.Clone(f.Dashboard.Organizations)
	f.Details.Sections = cloneSections(f.Details.Sections)
	if f.Details.ResaleEstimate != nil {
		v := *f.Details.ResaleEstimate
		f.Details.ResaleEstimate = &v
	}
	return f
}

func cloneSections(sections []CategorySection) []CategorySection {
	if sections == nil {
		return nil
	}
	out := make([]CategorySection, len(sections))
	for i, s := range sections {
		out[i] = CategorySection{Category: s.Category, Items: slices.Clone(s.Items)}
	}
	return out
}

// Checkboxes lists every checkbox of the panel in index order.
func (p DetailsPanel) Checkboxes() []Checkbox {
	var out []Checkbox
	for _, s := range p.Sections {
		out = append(out, s.Items...)
	}
	return out
}
