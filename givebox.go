// Package givebox is the client controller of the donation coordination
// app: OTP login, the NGO dashboard, per-NGO requirement catalogs and the
// donate / giveaway / resale submission flow. All state changes are
// published as Frames through a Renderer, so the controller runs the same
// under a terminal, a test recorder or any other front end.
package givebox

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mscno/givebox/pkg/api"
	"github.com/mscno/givebox/pkg/identity"
	"github.com/mscno/givebox/pkg/route"
	"github.com/mscno/givebox/pkg/selection"
)

// MsgLoggedOut is shown on the login view after Logout.
const MsgLoggedOut = "You have been logged out."

// MsgConnectFailed is shown when a request never reached the server.
const MsgConnectFailed = "Failed to connect to server. Please try again."

var (
	// ErrWrongView is returned when an operation is invoked from a view that
	// does not offer it.
	ErrWrongView = errors.New("operation not available on the current view")
	// ErrBusy is returned when the targeted control is disabled by a request in flight.
	ErrBusy = errors.New("a request is already in flight")
	// ErrUnknownItem is returned when toggling an item the catalog does not list.
	ErrUnknownItem = errors.New("item is not part of the requirement catalog")
	// ErrUnknownOrganization is returned when opening an NGO the dashboard does not list.
	ErrUnknownOrganization = errors.New("organization is not listed on the dashboard")
)

// Session is the controller's identity and selection state.
type Session struct {
	// Identity is the logged-in e-mail, "" when logged out. It is persisted.
	Identity string
	// SelectedOrganization is set only while the details view is active.
	SelectedOrganization *int
}

// LoggedIn reports whether an identity is present.
func (s Session) LoggedIn() bool {
	return s.Identity != ""
}

// Config wires a Controller.
type Config struct {
	Client   api.Client
	Identity identity.Store
	Renderer Renderer
	Logger   *slog.Logger
	// LoginDelay keeps the login confirmation visible before moving to the dashboard.
	LoginDelay time.Duration
	// Now is the clock used for resale estimates. Defaults to time.Now.
	Now func() time.Time
}

// Controller owns navigation, session state and the view logic. Its methods
// are safe for concurrent use; the lock is never held across network calls.
type Controller struct {
	client     api.Client
	store      identity.Store
	renderer   Renderer
	logger     *slog.Logger
	loginDelay time.Duration
	now        func() time.Time

	mu        sync.Mutex
	location  string
	session   Session
	selection *selection.Set
	frame     Frame

	// epoch increments on every view activation; responses carrying an older
	// epoch are discarded.
	epoch     uint64
	viewCtx   context.Context
	endView   context.CancelFunc
	donorsGen uint64
	// submitting is set while an action request is in flight.
	submitting bool
}

// New builds a controller and restores the persisted identity.
func New(cfg Config) (*Controller, error) {
	if cfg.Client == nil {
		return nil, errors.New("givebox: API client is required")
	}
	if cfg.Identity == nil {
		cfg.Identity = identity.NewMemoryStore()
	}
	if cfg.Renderer == nil {
		cfg.Renderer = discardRenderer{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	email, err := cfg.Identity.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load persisted identity: %w", err)
	}

	viewCtx, endView := context.WithCancel(context.Background())
	c := &Controller{
		client:     cfg.Client,
		store:      cfg.Identity,
		renderer:   cfg.Renderer,
		logger:     cfg.Logger,
		loginDelay: cfg.LoginDelay,
		now:        cfg.Now,
		session:    Session{Identity: email},
		selection:  selection.New(),
		viewCtx:    viewCtx,
		endView:    endView,
	}
	c.frame.Login = defaultLoginPanel()
	c.frame.Dashboard.Identity = email
	return c, nil
}

// Start performs the initial load at fragment. A persisted identity with an
// empty fragment lands on the dashboard.
func (c *Controller) Start(ctx context.Context, fragment string) {
	c.mu.Lock()
	c.location = route.Normalize(fragment)
	if c.session.LoggedIn() && c.location == route.Root {
		c.location = route.Dashboard
	}
	c.mu.Unlock()
	c.evaluate(ctx)
}

// Navigate changes the location and re-evaluates it. Setting the current
// location again is not a change.
func (c *Controller) Navigate(ctx context.Context, fragment string) {
	fragment = route.Normalize(fragment)
	c.mu.Lock()
	if fragment == c.location {
		c.mu.Unlock()
		return
	}
	c.location = fragment
	c.mu.Unlock()
	c.evaluate(ctx)
}

// Refresh re-evaluates the current location.
func (c *Controller) Refresh(ctx context.Context) {
	c.evaluate(ctx)
}

// Back returns from the details view to the dashboard.
func (c *Controller) Back(ctx context.Context) {
	c.Navigate(ctx, route.Dashboard)
}

// Logout forgets the identity and returns to the login view.
func (c *Controller) Logout(ctx context.Context) error {
	err := c.store.Clear()
	if err != nil {
		c.logger.ErrorContext(ctx, "failed to clear persisted identity", "error", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.session.Identity = ""
	c.frame.Dashboard.Identity = ""
	c.beginViewLocked()
	c.location = route.Root
	c.showLoginLocked(Message{Text: MsgLoggedOut, Tone: ToneInfo})
	c.renderLocked()
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// Close ends any in-flight view requests.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endView()
}

// Location returns the current fragment without the leading '#'.
func (c *Controller) Location() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.location
}

// Session returns a copy of the session state.
func (c *Controller) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.session
	if s.SelectedOrganization != nil {
		id := *s.SelectedOrganization
		s.SelectedOrganization = &id
	}
	return s
}

// Selection returns the checked items in selection order.
func (c *Controller) Selection() []selection.Pair {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selection.Flatten()
}

// Frame returns the current UI snapshot.
func (c *Controller) Frame() Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frame.clone()
}

// evaluate routes the current location through the authentication guard.
func (c *Controller) evaluate(ctx context.Context) {
	c.mu.Lock()
	r := route.Parse(c.location)
	epoch := c.beginViewLocked()

	if r.View != route.ViewDetails {
		c.session.SelectedOrganization = nil
		c.selection.Clear()
	}

	switch {
	case r.View == route.ViewLogin:
		c.showLoginLocked(Message{})
		c.renderLocked()
		c.mu.Unlock()
	case !c.session.LoggedIn() || r.Invalid:
		// Redirects do not re-enter evaluate, so the login view renders
		// exactly once with the guard message.
		c.logger.DebugContext(ctx, "navigation guard redirect", "location", c.location, "view", r.View.String())
		c.redirectLocked(r.GuardMessage())
		c.mu.Unlock()
	case r.View == route.ViewDashboard:
		c.mu.Unlock()
		c.showDashboard(ctx, epoch)
	case r.View == route.ViewDetails:
		c.mu.Unlock()
		c.showDetails(ctx, epoch, r.OrganizationID)
	default:
		c.mu.Unlock()
	}
}

// redirectLocked sends the user to the login view with msg without a
// second evaluation cycle.
func (c *Controller) redirectLocked(msg string) {
	c.beginViewLocked()
	c.location = route.Root
	c.session.SelectedOrganization = nil
	c.selection.Clear()
	c.showLoginLocked(errorMessage(msg))
	c.renderLocked()
}

// beginViewLocked supersedes the previous view activation.
func (c *Controller) beginViewLocked() uint64 {
	c.endView()
	c.viewCtx, c.endView = context.WithCancel(context.Background())
	c.epoch++
	c.submitting = false
	return c.epoch
}

// scope derives a request context from ctx that is also cancelled when the
// view activation ends.
func (c *Controller) scope(ctx context.Context) (context.Context, context.CancelFunc) {
	c.mu.Lock()
	view := c.viewCtx
	c.mu.Unlock()
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(view, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

// currentLocked reports whether epoch is still the active view activation.
func (c *Controller) currentLocked(ctx context.Context, epoch uint64, what string) bool {
	if epoch == c.epoch {
		return true
	}
	c.logger.DebugContext(ctx, "discarding stale response", "request", what, "epoch", epoch, "current", c.epoch)
	return false
}

func (c *Controller) renderLocked() {
	c.frame.Location = c.location
	c.renderer.Render(c.frame.clone())
}

// failureText maps an API error to the text shown to the user: the server's
// message for HTTP errors, fallback for anything else.
func failureText(err error, fallback string) string {
	if httpErr, ok := api.AsHTTPError(err); ok {
		return httpErr.Message
	}
	return fallback
}
