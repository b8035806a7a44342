package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"

	"github.com/telvanni/user-directory/internal/hasher"
)

var (
	seedUserName string
	seedPassword string
	seedClientID string
)

// seedCmd creates the bootstrap admin. User creation requires an admin
// session, so the very first admin has to come from outside the API.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the directory with the bootstrap admin user",
	Long:  `Create the initial admin user so further users can be managed through the API.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		if seedPassword == "" {
			log.Fatal("--password is required")
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer db.Close()

		var existing int
		if err := db.Get(&existing, "SELECT COUNT(1) FROM users WHERE user_name = $1", seedUserName); err != nil {
			log.Fatalf("failed to check existing user: %v", err)
		}
		if existing > 0 {
			fmt.Printf("user %q already exists, nothing to do\n", seedUserName)
			return
		}

		salt, err := hasher.NewSalt()
		if err != nil {
			log.Fatalf("failed to generate salt: %v", err)
		}

		now := time.Now()
		_, err = db.Exec(
			`INSERT INTO users (user_id, client_id, user_name, user_email, user_password, user_salt, user_admin, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, true, $7, $7)`,
			uuid.New().String(), seedClientID, seedUserName, "", hasher.Digest(salt, seedPassword), salt, now,
		)
		if err != nil {
			log.Fatalf("failed to insert admin user: %v", err)
		}

		fmt.Printf("Seeded admin user: %s\n", seedUserName)
	},
}
