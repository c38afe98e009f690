package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mscno/givebox"
	"github.com/mscno/givebox/pkg/api"
)

type DonateCmd struct {
	ID    int      `arg:"" help:"NGO id"`
	Kind  string   `short:"k" help:"Action kind" enum:"donate,giveaway,resale" default:"donate"`
	Items []string `name:"item" short:"i" help:"Item as category/item; repeat for more" sep:"none" required:""`
	Cost  string   `help:"Original cost, required for resale"`
	Year  string   `help:"Purchase year, required for resale"`
}

func (c *DonateCmd) Run(ctx *cliCtx) error {
	kind, err := api.ParseActionKind(c.Kind)
	if err != nil {
		return err
	}

	ctrl, closeFn, err := ctx.openController(nil)
	if err != nil {
		return err
	}
	defer closeFn()

	if _, err := openDetails(ctx, ctrl, c.ID); err != nil {
		return err
	}
	for _, spec := range c.Items {
		category, item, ok := strings.Cut(spec, "/")
		if !ok {
			return fmt.Errorf("invalid item %q: expected category/item", spec)
		}
		if err := ctrl.ToggleItem(strings.TrimSpace(category), strings.TrimSpace(item), true); err != nil {
			return err
		}
	}
	if err := ctrl.SetOriginalCost(c.Cost); err != nil {
		return err
	}
	if err := ctrl.SetPurchaseYear(c.Year); err != nil {
		return err
	}

	if err := ctrl.Submit(ctx, kind); err != nil {
		return err
	}
	msg := ctrl.Frame().Details.Message
	if msg.Tone == givebox.ToneError {
		return errors.New(msg.Text)
	}
	printMessage(ctx.Out, msg)
	return nil
}
