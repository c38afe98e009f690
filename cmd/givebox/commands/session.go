package commands

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/mscno/givebox"
	"github.com/mscno/givebox/pkg/route"
)

type LoginCmd struct {
	Email string `arg:"" help:"E-mail address to log in with"`
	OTP   string `name:"otp" help:"One-time passcode; prompted for when omitted"`
}

func (c *LoginCmd) Run(ctx *cliCtx) error {
	ctrl, closeFn, err := ctx.openController(nil)
	if err != nil {
		return err
	}
	defer closeFn()

	if s := ctrl.Session(); s.LoggedIn() {
		ctx.printf("Already logged in as %s\n", s.Identity)
		return nil
	}
	ctrl.Start(ctx, route.Root)

	if err := ctrl.SendOTP(ctx, c.Email); err != nil {
		return err
	}
	f := ctrl.Frame()
	if !f.Login.OTPVisible {
		return errors.New(f.Login.Message.Text)
	}
	printMessage(ctx.Out, f.Login.Message)

	otp := c.OTP
	if otp == "" {
		ctx.printf("OTP: ")
		line, err := bufio.NewReader(ctx.In).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("failed to read passcode: %w", err)
		}
		otp = strings.TrimSpace(line)
	}

	if err := ctrl.VerifyOTP(ctx, otp); err != nil {
		return err
	}
	f = ctrl.Frame()
	if !ctrl.Session().LoggedIn() {
		return errors.New(f.Login.Message.Text)
	}
	printMessage(ctx.Out, f.Login.Message)
	ctx.printf("Logged in as %s\n", ctrl.Session().Identity)
	return nil
}

type LogoutCmd struct{}

func (c *LogoutCmd) Run(ctx *cliCtx) error {
	ctrl, closeFn, err := ctx.openController(nil)
	if err != nil {
		return err
	}
	defer closeFn()

	if err := ctrl.Logout(ctx); err != nil {
		return err
	}
	ctx.printf("%s\n", givebox.MsgLoggedOut)
	return nil
}

type WhoamiCmd struct{}

func (c *WhoamiCmd) Run(ctx *cliCtx) error {
	ctrl, closeFn, err := ctx.openController(nil)
	if err != nil {
		return err
	}
	defer closeFn()

	s := ctrl.Session()
	if !s.LoggedIn() {
		return errors.New("not logged in")
	}
	ctx.printf("%s\n", s.Identity)
	return nil
}
