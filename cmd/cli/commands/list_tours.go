package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jakechorley/tour-desk/pkg/db"
)

// ListToursCmd creates the listTours command
func ListToursCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "listTours",
		Short: "List all tours with their guide and clients, ordered by date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := app.NewController()
			mount(app.Ctx, app, c)
			defer c.Stop()

			printTours(app.Out, c.Tours())
			return nil
		},
	}
}

// printTours renders one block per tour: header line, guide, then one line per client
func printTours(w io.Writer, list []db.Tour) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No tours scheduled.")
		return
	}

	fmt.Fprintf(w, "\n%d tours:\n\n", len(list))
	for _, t := range list {
		checkedIn, noShow := countStatuses(t.Clients)
		fmt.Fprintf(w, "%s  %s (%s)\n", t.Date.Format("Mon 2006-01-02"), displayName(t.Name), t.ID)
		if t.Guide != nil {
			fmt.Fprintf(w, "    Guide:   %s (%s)\n", t.Guide.Name, t.Guide.ID)
		} else {
			fmt.Fprintf(w, "    Guide:   unassigned\n")
		}
		fmt.Fprintf(w, "    Clients: %d (%d checked in, %d no-show)\n", len(t.Clients), checkedIn, noShow)
		for _, c := range t.Clients {
			fmt.Fprintf(w, "      %s %-24s %s\n", statusMark(c.CheckInStatus), c.Name, c.ID)
		}
		fmt.Fprintln(w)
	}
}

func countStatuses(clients []db.TourClient) (checkedIn, noShow int) {
	for _, c := range clients {
		switch c.CheckInStatus {
		case db.StatusCheckedIn:
			checkedIn++
		case db.StatusNoShow:
			noShow++
		}
	}
	return checkedIn, noShow
}

func statusMark(s db.CheckInStatus) string {
	switch s {
	case db.StatusCheckedIn:
		return "[✓]"
	case db.StatusNoShow:
		return "[✗]"
	default:
		return "[ ]"
	}
}

func displayName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "Untitled tour"
	}
	return name
}
