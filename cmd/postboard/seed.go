package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/d60-Lab/postboard/internal/repository"
	"github.com/d60-Lab/postboard/internal/seed"
	"github.com/d60-Lab/postboard/pkg/database"
	"github.com/d60-Lab/postboard/pkg/logger"
)

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Replace all rows with the demo users and posts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			defer logger.Sync()

			db, err := database.InitDB(cfg)
			if err != nil {
				return err
			}
			defer database.Close(db)

			if err := repository.AutoMigrate(db); err != nil {
				return fmt.Errorf("failed to migrate: %w", err)
			}
			users, err := seed.Run(cmd.Context(), db)
			if err != nil {
				return fmt.Errorf("failed to seed: %w", err)
			}
			for _, u := range users {
				fmt.Printf("- %s (%d posts)\n", u.Email, len(u.Posts))
			}
			return nil
		},
	}
}
