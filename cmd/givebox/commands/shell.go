package commands

import (
	"bufio"
	"errors"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/mscno/givebox"
	"github.com/mscno/givebox/pkg/api"
)

const shellPrompt = "givebox> "

const shellHelp = `Commands:
  go <location>      navigate to dashboard or ngo-details/<id>
  send <email>       request a one-time passcode
  verify <otp>       log in with the passcode
  open <id>          open an NGO from the dashboard
  toggle <n>...      check or uncheck items by number
  cost [value]       set the original cost for resale
  year [value]       set the purchase year for resale
  donate             donate the checked items
  giveaway           give away the checked items
  resale             resell the checked items
  back               return to the dashboard
  refresh            reload the current view
  show               print the current view
  logout             forget the stored identity
  quit               leave the shell
`

var errQuit = errors.New("quit")

type ShellCmd struct {
	At string `help:"Location to open first" default:""`
}

type shellCtx struct {
	*cliCtx
	ctrl *givebox.Controller
}

func (s *ShellCmd) Run(ctx *cliCtx) error {
	ctrl, closeFn, err := ctx.openController(nil)
	if err != nil {
		return err
	}
	defer closeFn()

	sc := &shellCtx{cliCtx: ctx, ctrl: ctrl}
	ctrl.Start(ctx, s.At)
	printFrame(ctx.Out, ctrl.Frame())

	scanner := bufio.NewScanner(ctx.In)
	for {
		ctx.printf("%s", shellPrompt)
		if !scanner.Scan() {
			break
		}
		args := strings.Fields(scanner.Text())
		if len(args) == 0 {
			continue
		}
		err := sc.dispatch(args)
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			ctx.printf("error: %v\n", err)
		}
		if ctx.Err() != nil {
			return nil
		}
	}
	ctx.printf("\n")
	return scanner.Err()
}

// dispatch parses one shell line and runs it. Every command except help
// and quit prints the resulting view.
func (sc *shellCtx) dispatch(args []string) error {
	var grammar shellGrammar
	parser, err := kong.New(&grammar,
		kong.Name("givebox"),
		kong.NoDefaultHelp(),
		kong.Exit(func(int) {}),
		kong.Writers(sc.Out, sc.Out),
	)
	if err != nil {
		return err
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	if err := kctx.Run(sc); err != nil {
		return err
	}
	switch kctx.Command() {
	case "help", "quit":
	default:
		printFrame(sc.Out, sc.ctrl.Frame())
	}
	return nil
}

type shellGrammar struct {
	Go       GoLine       `cmd:""`
	Send     SendLine     `cmd:""`
	Verify   VerifyLine   `cmd:""`
	Open     OpenLine     `cmd:""`
	Toggle   ToggleLine   `cmd:""`
	Cost     CostLine     `cmd:""`
	Year     YearLine     `cmd:""`
	Donate   DonateLine   `cmd:""`
	Giveaway GiveawayLine `cmd:""`
	Resale   ResaleLine   `cmd:""`
	Back     BackLine     `cmd:""`
	Refresh  RefreshLine  `cmd:""`
	Show     ShowLine     `cmd:""`
	Logout   LogoutLine   `cmd:""`
	Help     HelpLine     `cmd:""`
	Quit     QuitLine     `cmd:"" aliases:"exit"`
}

type GoLine struct {
	Location string `arg:""`
}

func (l *GoLine) Run(sc *shellCtx) error {
	sc.ctrl.Navigate(sc, l.Location)
	return nil
}

type SendLine struct {
	Email string `arg:""`
}

func (l *SendLine) Run(sc *shellCtx) error {
	return sc.ctrl.SendOTP(sc, l.Email)
}

type VerifyLine struct {
	OTP string `arg:""`
}

func (l *VerifyLine) Run(sc *shellCtx) error {
	return sc.ctrl.VerifyOTP(sc, l.OTP)
}

type OpenLine struct {
	ID int `arg:""`
}

func (l *OpenLine) Run(sc *shellCtx) error {
	return sc.ctrl.OpenOrganization(sc, l.ID)
}

type ToggleLine struct {
	Indexes []int `arg:""`
}

func (l *ToggleLine) Run(sc *shellCtx) error {
	for _, i := range l.Indexes {
		if err := sc.ctrl.ToggleIndex(i); err != nil {
			return err
		}
	}
	return nil
}

type CostLine struct {
	Value string `arg:"" optional:""`
}

func (l *CostLine) Run(sc *shellCtx) error {
	return sc.ctrl.SetOriginalCost(l.Value)
}

type YearLine struct {
	Value string `arg:"" optional:""`
}

func (l *YearLine) Run(sc *shellCtx) error {
	return sc.ctrl.SetPurchaseYear(l.Value)
}

type DonateLine struct{}

func (l *DonateLine) Run(sc *shellCtx) error { return sc.ctrl.Submit(sc, api.ActionDonate) }

type GiveawayLine struct{}

func (l *GiveawayLine) Run(sc *shellCtx) error { return sc.ctrl.Submit(sc, api.ActionGiveaway) }

type ResaleLine struct{}

func (l *ResaleLine) Run(sc *shellCtx) error { return sc.ctrl.Submit(sc, api.ActionResale) }

type BackLine struct{}

func (l *BackLine) Run(sc *shellCtx) error {
	sc.ctrl.Back(sc)
	return nil
}

type RefreshLine struct{}

func (l *RefreshLine) Run(sc *shellCtx) error {
	sc.ctrl.Refresh(sc)
	return nil
}

type ShowLine struct{}

func (l *ShowLine) Run(sc *shellCtx) error { return nil }

type LogoutLine struct{}

func (l *LogoutLine) Run(sc *shellCtx) error {
	return sc.ctrl.Logout(sc)
}

type HelpLine struct{}

func (l *HelpLine) Run(sc *shellCtx) error {
	sc.printf("%s", shellHelp)
	return nil
}

type QuitLine struct{}

func (l *QuitLine) Run(sc *shellCtx) error { return errQuit }
