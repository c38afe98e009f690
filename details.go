package givebox

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/mscno/givebox/pkg/api"
	"github.com/mscno/givebox/pkg/route"
)

// Details view texts.
const (
	TitleLoadingDetails    = "Loading NGO Details..."
	TitleError             = "Error"
	MsgLoadingRequirements = "Loading requirements..."
	MsgNoRequirements      = "No specific requirements listed for this NGO."
	MsgRequirementsFailed  = "Failed to connect to server to load NGO requirements."
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// CheckboxID is the element id of an item's checkbox.
func CheckboxID(category, item string) string {
	return "item-" + category + "-" + whitespaceRun.ReplaceAllString(item, "-")
}

// Eligible reports whether the action button for kind is enabled given the
// current selection and the raw resale inputs.
func Eligible(kind api.ActionKind, selected bool, cost, year string) bool {
	if !selected {
		return false
	}
	if kind == api.ActionResale {
		return strings.TrimSpace(cost) != "" && strings.TrimSpace(year) != ""
	}
	return true
}

func defaultActionButtons() ActionButtons {
	var b ActionButtons
	for _, kind := range api.ActionKinds {
		b.set(kind, Button{Label: kind.Label(), Disabled: true})
	}
	return b
}

func (c *Controller) showDetails(ctx context.Context, epoch uint64, id int) {
	c.mu.Lock()
	if !c.currentLocked(ctx, epoch, "ngo_details") {
		c.mu.Unlock()
		return
	}
	c.frame.View = route.ViewDetails
	c.session.SelectedOrganization = &id
	c.selection.Clear()
	c.frame.Details = DetailsPanel{
		OrganizationID: id,
		Title:          TitleLoadingDetails,
		ListStatus:     ListLoading,
		Placeholder:    MsgLoadingRequirements,
		Buttons:        defaultActionButtons(),
	}
	c.renderLocked()
	c.mu.Unlock()

	reqCtx, done := c.scope(ctx)
	catalog, err := c.client.Requirements(reqCtx, id)
	done()

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.currentLocked(ctx, epoch, "ngo_requirements") {
		return
	}
	panel := &c.frame.Details
	switch {
	case err != nil:
		panel.Title = TitleError
		panel.ListStatus = ListError
		if httpErr, ok := api.AsHTTPError(err); ok {
			panel.Placeholder = "Error loading NGO requirements: " + httpErr.Message
		} else {
			c.logger.ErrorContext(ctx, "error fetching NGO details", "ngo_id", id, "error", err)
			panel.Placeholder = MsgRequirementsFailed
		}
	default:
		panel.Title = catalog.OrganizationName + " - Requirements"
		panel.Sections = buildSections(catalog.Requirements)
		if len(panel.Sections) == 0 {
			panel.ListStatus = ListEmpty
			panel.Placeholder = MsgNoRequirements
		} else {
			panel.ListStatus = ListReady
			panel.Placeholder = ""
		}
	}
	c.renderLocked()
}

// buildSections lays the catalog out by category name. Categories without
// items are skipped.
func buildSections(requirements map[string][]string) []CategorySection {
	categories := make([]string, 0, len(requirements))
	for category, items := range requirements {
		if len(items) > 0 {
			categories = append(categories, category)
		}
	}
	sort.Strings(categories)

	var sections []CategorySection
	index := 0
	for _, category := range categories {
		section := CategorySection{Category: category}
		for _, item := range requirements[category] {
			index++
			section.Items = append(section.Items, Checkbox{
				Index:    index,
				ID:       CheckboxID(category, item),
				Category: category,
				Item:     item,
			})
		}
		sections = append(sections, section)
	}
	return sections
}

// ToggleItem checks or unchecks one catalog item.
func (c *Controller) ToggleItem(category, item string, checked bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.frame.View != route.ViewDetails {
		return ErrWrongView
	}
	box := c.findCheckboxLocked(func(b *Checkbox) bool {
		return b.Category == category && b.Item == item
	})
	if box == nil {
		return fmt.Errorf("%w: %s/%s", ErrUnknownItem, category, item)
	}
	c.setCheckedLocked(box, checked)
	return nil
}

// ToggleIndex flips the checkbox with the given 1-based index.
func (c *Controller) ToggleIndex(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.frame.View != route.ViewDetails {
		return ErrWrongView
	}
	box := c.findCheckboxLocked(func(b *Checkbox) bool { return b.Index == index })
	if box == nil {
		return fmt.Errorf("%w: #%d", ErrUnknownItem, index)
	}
	c.setCheckedLocked(box, !box.Checked)
	return nil
}

func (c *Controller) findCheckboxLocked(match func(*Checkbox) bool) *Checkbox {
	for i := range c.frame.Details.Sections {
		items := c.frame.Details.Sections[i].Items
		for j := range items {
			if match(&items[j]) {
				return &items[j]
			}
		}
	}
	return nil
}

func (c *Controller) setCheckedLocked(box *Checkbox, checked bool) {
	box.Checked = checked
	c.selection.Toggle(box.Category, box.Item, checked)
	c.recomputeButtonsLocked()
	c.renderLocked()
}

// SetOriginalCost updates the resale cost field.
func (c *Controller) SetOriginalCost(value string) error {
	return c.setResaleField(func(p *DetailsPanel) { p.OriginalCost = value })
}

// SetPurchaseYear updates the resale purchase year field.
func (c *Controller) SetPurchaseYear(value string) error {
	return c.setResaleField(func(p *DetailsPanel) { p.PurchaseYear = value })
}

func (c *Controller) setResaleField(update func(*DetailsPanel)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.frame.View != route.ViewDetails {
		return ErrWrongView
	}
	update(&c.frame.Details)
	c.updateEstimateLocked()
	c.recomputeButtonsLocked()
	c.renderLocked()
	return nil
}

func (c *Controller) updateEstimateLocked() {
	panel := &c.frame.Details
	panel.ResaleEstimate = nil
	cost, year, err := parseResaleInputs(panel.OriginalCost, panel.PurchaseYear)
	if err != nil {
		return
	}
	estimate := ResaleEstimate(cost, year, c.now())
	panel.ResaleEstimate = &estimate
}

// recomputeButtonsLocked re-derives action eligibility. Buttons stay
// disabled while a submission is in flight.
func (c *Controller) recomputeButtonsLocked() {
	if c.submitting {
		return
	}
	panel := &c.frame.Details
	selected := !c.selection.Empty()
	for _, kind := range api.ActionKinds {
		panel.Buttons.set(kind, Button{
			Label:    kind.Label(),
			Disabled: !Eligible(kind, selected, panel.OriginalCost, panel.PurchaseYear),
		})
	}
}
