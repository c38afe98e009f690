package givebox

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/mscno/givebox/pkg/api"
	"github.com/mscno/givebox/pkg/route"
)

// MsgSelectItem is shown when an action is submitted with nothing checked.
const MsgSelectItem = "Please select at least one item."

// Submit sends the current selection to the API as kind. Validation failures
// and API errors are reported on the details panel; the returned error is
// reserved for calls made outside an active details view.
func (c *Controller) Submit(ctx context.Context, kind api.ActionKind) error {
	if !slices.Contains(api.ActionKinds, kind) {
		return fmt.Errorf("unknown action kind %q", kind)
	}

	c.mu.Lock()
	if c.frame.View != route.ViewDetails || c.session.SelectedOrganization == nil || !c.session.LoggedIn() {
		c.mu.Unlock()
		return ErrWrongView
	}
	if c.submitting {
		c.mu.Unlock()
		return ErrBusy
	}
	panel := &c.frame.Details

	fail := func(text string) error {
		panel.Message = errorMessage(text)
		c.renderLocked()
		c.mu.Unlock()
		return nil
	}

	pairs := c.selection.Flatten()
	if len(pairs) == 0 {
		return fail(MsgSelectItem)
	}
	req := api.DonationActionRequest{
		UserEmail:      c.session.Identity,
		OrganizationID: *c.session.SelectedOrganization,
		ActionType:     kind,
		SelectedItems:  make([]api.ItemRecord, 0, len(pairs)),
	}
	for _, p := range pairs {
		req.SelectedItems = append(req.SelectedItems, api.ItemRecord{Category: p.Category, Item: p.Item, Quantity: 1})
	}
	if kind == api.ActionResale {
		if strings.TrimSpace(panel.OriginalCost) == "" || strings.TrimSpace(panel.PurchaseYear) == "" {
			return fail(MsgResaleFieldsRequired)
		}
		cost, year, err := parseResaleInputs(panel.OriginalCost, panel.PurchaseYear)
		if err != nil {
			return fail(err.Error())
		}
		req.OriginalCost = &cost
		req.PurchaseYear = &year
	}

	c.submitting = true
	for _, k := range api.ActionKinds {
		btn := panel.Buttons.Get(k)
		btn.Disabled = true
		if k == kind {
			btn.Label = LabelWorking
		}
		panel.Buttons.set(k, btn)
	}
	panel.Message = Message{}
	epoch := c.epoch
	c.renderLocked()
	c.mu.Unlock()

	reqCtx, done := c.scope(ctx)
	msg, err := c.client.SubmitAction(reqCtx, req)
	done()

	c.mu.Lock()
	if !c.currentLocked(ctx, epoch, "donate") {
		c.mu.Unlock()
		return nil
	}
	c.submitting = false
	panel = &c.frame.Details
	if err == nil {
		c.logger.InfoContext(ctx, "action recorded", "kind", kind.String(), "ngo_id", req.OrganizationID, "items", len(req.SelectedItems))
		panel.Message = successMessage(msg)
		c.selection.Clear()
		panel.OriginalCost = ""
		panel.PurchaseYear = ""
		panel.ResaleEstimate = nil
		for i := range panel.Sections {
			for j := range panel.Sections[i].Items {
				panel.Sections[i].Items[j].Checked = false
			}
		}
	} else {
		if !isHTTPError(err) {
			c.logger.ErrorContext(ctx, "error submitting action", "kind", kind.String(), "error", err)
		}
		panel.Message = errorMessage(failureText(err, MsgConnectFailed))
	}
	c.recomputeButtonsLocked()
	c.renderLocked()
	c.mu.Unlock()

	if err == nil {
		donorsCtx, done := c.scope(ctx)
		c.loadDonors(donorsCtx, epoch)
		done()
	}
	return nil
}
