package givebox

import (
	"context"
	"fmt"
	"slices"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/mscno/givebox/pkg/api"
	"github.com/mscno/givebox/pkg/route"
)

// Dashboard texts.
const (
	MsgLoadingOrganizations = "Loading NGOs..."
	MsgNoOrganizations      = "No NGOs found."
	MsgOrganizationsFailed  = "Failed to connect to server to load NGOs."
	DonorCountError         = "Error"
)

func (c *Controller) showDashboard(ctx context.Context, epoch uint64) {
	c.mu.Lock()
	if !c.currentLocked(ctx, epoch, "dashboard") {
		c.mu.Unlock()
		return
	}
	c.frame.View = route.ViewDashboard
	c.frame.Dashboard = DashboardPanel{
		Identity:    c.session.Identity,
		DonorCount:  c.frame.Dashboard.DonorCount,
		ListStatus:  ListLoading,
		Placeholder: MsgLoadingOrganizations,
	}
	c.renderLocked()
	c.mu.Unlock()

	reqCtx, done := c.scope(ctx)
	defer done()

	g, gctx := errgroup.WithContext(reqCtx)
	g.Go(func() error {
		c.loadDonors(gctx, epoch)
		return nil
	})
	g.Go(func() error {
		c.loadOrganizations(gctx, epoch)
		return nil
	})
	_ = g.Wait()
}

// loadDonors refreshes the donor counter. Only the most recently started
// fetch may write the result.
func (c *Controller) loadDonors(ctx context.Context, epoch uint64) {
	c.mu.Lock()
	c.donorsGen++
	gen := c.donorsGen
	c.mu.Unlock()

	total, err := c.client.TotalDonors(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.currentLocked(ctx, epoch, "donors_total") || gen != c.donorsGen {
		return
	}
	if err != nil {
		c.logger.ErrorContext(ctx, "failed to fetch total donors", "error", failureText(err, err.Error()))
		c.frame.Dashboard.DonorCount = DonorCountError
	} else {
		c.frame.Dashboard.DonorCount = strconv.Itoa(total)
	}
	c.renderLocked()
}

func (c *Controller) loadOrganizations(ctx context.Context, epoch uint64) {
	orgs, err := c.client.Organizations(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.currentLocked(ctx, epoch, "ngos") {
		return
	}
	panel := &c.frame.Dashboard
	panel.Organizations = nil
	switch {
	case err != nil:
		panel.ListStatus = ListError
		if httpErr, ok := api.AsHTTPError(err); ok {
			panel.Placeholder = "Error loading NGOs: " + httpErr.Message
		} else {
			c.logger.ErrorContext(ctx, "error fetching NGOs", "error", err)
			panel.Placeholder = MsgOrganizationsFailed
		}
	case len(orgs) == 0:
		panel.ListStatus = ListEmpty
		panel.Placeholder = MsgNoOrganizations
	default:
		panel.ListStatus = ListReady
		panel.Placeholder = ""
		panel.Organizations = make([]OrganizationEntry, 0, len(orgs))
		for _, org := range orgs {
			panel.Organizations = append(panel.Organizations, OrganizationEntry{
				Organization: org,
				Link:         "#" + route.Details(org.ID),
			})
		}
	}
	c.renderLocked()
}

// OpenOrganization activates a dashboard entry. Without an identity the user
// is sent back to the login view.
func (c *Controller) OpenOrganization(ctx context.Context, id int) error {
	c.mu.Lock()
	if c.frame.View != route.ViewDashboard {
		c.mu.Unlock()
		return ErrWrongView
	}
	listed := slices.ContainsFunc(c.frame.Dashboard.Organizations, func(e OrganizationEntry) bool {
		return e.ID == id
	})
	if !listed {
		c.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrUnknownOrganization, id)
	}
	if !c.session.LoggedIn() {
		c.redirectLocked(route.MsgLoginForDetails)
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	c.Navigate(ctx, route.Details(id))
	return nil
}
