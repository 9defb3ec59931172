package commands

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// AssignGuideCmd creates the assignGuide command
func AssignGuideCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "assignGuide <tour_id> <guide_id>",
		Short: "Assign a guide to a tour",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tourID, guideID := args[0], args[1]

			app.Logger.Debug("assignGuide command",
				zap.String("tour_id", tourID),
				zap.String("guide_id", guideID))

			app.NewController().AssignGuide(app.Ctx, tourID, guideID)
			return nil
		},
	}
}
