package commands

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/tour-desk/pkg/db"
)

// CheckInCmd creates the checkIn command
func CheckInCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "checkIn <client_id> <checked-in|no-show>",
		Short: "Set a client's check-in status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientID, status := args[0], db.CheckInStatus(args[1])

			app.Logger.Debug("checkIn command",
				zap.String("client_id", clientID),
				zap.String("status", string(status)))

			app.NewController().UpdateClientStatus(app.Ctx, clientID, status)
			return nil
		},
	}
}
