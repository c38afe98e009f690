package commands

import (
	"errors"

	"github.com/mscno/givebox"
	"github.com/mscno/givebox/pkg/route"
)

type NgosCmd struct{}

func (c *NgosCmd) Run(ctx *cliCtx) error {
	ctrl, closeFn, err := ctx.openController(nil)
	if err != nil {
		return err
	}
	defer closeFn()

	ctrl.Start(ctx, route.Dashboard)
	f := ctrl.Frame()
	if f.View != route.ViewDashboard {
		return errors.New(f.Login.Message.Text)
	}
	printDashboard(ctx.Out, f.Dashboard)
	if f.Dashboard.ListStatus == givebox.ListError {
		return errors.New(f.Dashboard.Placeholder)
	}
	return nil
}

type NeedsCmd struct {
	ID int `arg:"" help:"NGO id"`
}

func (c *NeedsCmd) Run(ctx *cliCtx) error {
	ctrl, closeFn, err := ctx.openController(nil)
	if err != nil {
		return err
	}
	defer closeFn()

	f, err := openDetails(ctx, ctrl, c.ID)
	if err != nil {
		return err
	}
	printDetails(ctx.Out, f.Details)
	return nil
}

// openDetails starts ctrl on an NGO's details view and fails unless its
// catalog loaded.
func openDetails(ctx *cliCtx, ctrl *givebox.Controller, id int) (givebox.Frame, error) {
	ctrl.Start(ctx, route.Details(id))
	f := ctrl.Frame()
	switch {
	case f.View != route.ViewDetails:
		return f, errors.New(f.Login.Message.Text)
	case f.Details.ListStatus == givebox.ListError:
		return f, errors.New(f.Details.Placeholder)
	}
	return f, nil
}
