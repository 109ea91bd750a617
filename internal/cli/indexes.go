package cli

import (
	"github.com/spf13/cobra"

	mongodb "github.com/modernforum/forum/internal/infrastructure/db/mongo"
)

var indexesCmd = &cobra.Command{
	Use:   "indexes",
	Short: "Create the MongoDB indexes and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, db, err := mongodb.Connect(cmd.Context(), mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return err
		}
		defer disconnectMongo(client)

		if err := mongodb.NewRepositories(db).EnsureIndexes(cmd.Context()); err != nil {
			return err
		}
		log.Info().Str("database", cfg.Mongo.Database).Msg("indexes ensured")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(indexesCmd)
}
