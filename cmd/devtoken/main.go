// Command devtoken mints a planner token for local development.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Sizimon/grippendor/internal/auth"
	"github.com/Sizimon/grippendor/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	guildID := flag.String("guild", "", "Guild ID the token is scoped to (required)")
	userID := flag.String("user", "dev-user", "User ID for the token")
	secret := flag.String("secret", cfg.Auth.JWTSecret, "JWT signing secret (default: JWT_SECRET)")
	duration := flag.Duration("exp", cfg.Auth.TokenDuration, "Token lifetime")
	outputJSON := flag.Bool("json", false, "Output as JSON")

	flag.Parse()

	if *guildID == "" {
		fmt.Fprintln(os.Stderr, "Error: -guild is required")
		flag.Usage()
		os.Exit(2)
	}
	if *secret == "" {
		fmt.Fprintln(os.Stderr, "Error: no secret, set JWT_SECRET or pass -secret")
		os.Exit(2)
	}

	token, err := auth.NewJWTManager(*secret, *duration).Generate(*guildID, *userID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error signing token: %v\n", err)
		os.Exit(1)
	}

	if *outputJSON {
		output := map[string]any{
			"access_token": token,
			"token_type":   "Bearer",
			"expires_in":   int(duration.Seconds()),
			"guild_id":     *guildID,
			"user_id":      *userID,
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(output)
		return
	}

	fmt.Println("Planner Token Generated")
	fmt.Println("=======================")
	fmt.Printf("Guild:    %s\n", *guildID)
	fmt.Printf("User ID:  %s\n", *userID)
	fmt.Printf("Expires:  %s\n", time.Now().Add(*duration).Format(time.RFC3339))
	fmt.Println()
	fmt.Println("Token:")
	fmt.Println(token)
}
