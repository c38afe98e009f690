package commands

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/mscno/givebox"
	"github.com/mscno/givebox/pkg/route"
)

// debugRenderer traces every frame the controller publishes.
func debugRenderer(logger *slog.Logger) givebox.Renderer {
	return givebox.RenderFunc(func(f givebox.Frame) {
		logger.Debug("render", "view", f.View.String(), "location", f.Location)
	})
}

func formatMessage(m givebox.Message) string {
	switch m.Tone {
	case givebox.ToneError:
		return "error: " + m.Text
	case givebox.ToneSuccess:
		return "ok: " + m.Text
	}
	return m.Text
}

func printMessage(w io.Writer, m givebox.Message) {
	if m.Text != "" {
		fmt.Fprintln(w, formatMessage(m))
	}
}

// printFrame writes the visible view of f as plain text.
func printFrame(w io.Writer, f givebox.Frame) {
	switch f.View {
	case route.ViewLogin:
		printLogin(w, f.Login)
	case route.ViewDashboard:
		printDashboard(w, f.Dashboard)
	case route.ViewDetails:
		printDetails(w, f.Details)
	}
}

func printLogin(w io.Writer, p givebox.LoginPanel) {
	fmt.Fprintln(w, "== Login ==")
	printMessage(w, p.Message)
	if p.OTPVisible {
		fmt.Fprintf(w, "Passcode sent to %s. Enter it with: verify <otp>\n", p.OTPEmail)
		return
	}
	fmt.Fprintln(w, "Request a passcode with: send <email>")
}

func printDashboard(w io.Writer, p givebox.DashboardPanel) {
	fmt.Fprintln(w, "== Dashboard ==")
	fmt.Fprintf(w, "Logged in as %s\n", p.Identity)
	fmt.Fprintf(w, "Total donors: %s\n", p.DonorCount)
	if p.ListStatus != givebox.ListReady {
		fmt.Fprintln(w, p.Placeholder)
		return
	}
	for _, org := range p.Organizations {
		line := fmt.Sprintf("  [%d] %s", org.ID, org.Name)
		if org.Description != "" {
			line += " - " + org.Description
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintln(w, "Open an NGO with: open <id>")
}

func printDetails(w io.Writer, p givebox.DetailsPanel) {
	fmt.Fprintf(w, "== %s ==\n", p.Title)
	if p.ListStatus != givebox.ListReady {
		fmt.Fprintln(w, p.Placeholder)
		printMessage(w, p.Message)
		return
	}
	for _, section := range p.Sections {
		fmt.Fprintf(w, "%s:\n", section.Category)
		for _, box := range section.Items {
			mark := " "
			if box.Checked {
				mark = "x"
			}
			fmt.Fprintf(w, "  %2d. [%s] %s\n", box.Index, mark, box.Item)
		}
	}
	fmt.Fprintf(w, "Original cost: %s\n", p.OriginalCost)
	fmt.Fprintf(w, "Purchase year: %s\n", p.PurchaseYear)
	if p.ResaleEstimate != nil {
		fmt.Fprintf(w, "Estimated resale amount: %.2f\n", *p.ResaleEstimate)
	}

	var buttons []string
	for _, btn := range []givebox.Button{p.Buttons.Donate, p.Buttons.Giveaway, p.Buttons.Resale} {
		if btn.Disabled {
			buttons = append(buttons, "("+btn.Label+")")
		} else {
			buttons = append(buttons, "["+btn.Label+"]")
		}
	}
	fmt.Fprintln(w, strings.Join(buttons, " "))
	printMessage(w, p.Message)
}
