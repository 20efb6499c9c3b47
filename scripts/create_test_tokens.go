package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/johnquangdev/meeting-insights/pkg/config"
	pkgjwt "github.com/johnquangdev/meeting-insights/pkg/jwt"
)

type testUser struct {
	ID    string
	Email string
	Name  string
}

func main() {
	only := flag.String("user", "", "issue a token for this user ID only")
	flag.Parse()

	log.Println("🚀 Issuing test tokens...")

	// Load configuration from .env
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.JWT.Secret == "" {
		log.Fatalf("JWT_ACCESS_SECRET must be set to sign test tokens")
	}
	if !cfg.JWT.Enabled {
		log.Println("⚠️  JWT_ENABLED=false, the API will ignore these tokens and trust X-User-ID")
	}

	jwtManager := pkgjwt.NewManager(&cfg.JWT)

	// Define test users
	testUsers := []testUser{
		{ID: "alice", Email: "alice@test.local", Name: "Alice"},
		{ID: "bob", Email: "bob@test.local", Name: "Bob"},
		{ID: "charlie", Email: "charlie@test.local", Name: "Charlie"},
	}
	if *only != "" {
		testUsers = []testUser{{ID: *only, Name: *only}}
	}

	for i, u := range testUsers {
		accessToken, err := jwtManager.GenerateAccessToken(u.ID, u.Email)
		if err != nil {
			log.Printf("❌ Failed to generate access token for %s: %v", u.ID, err)
			continue
		}

		fmt.Printf("═══════════════════════════════════════════════════════════════\n")
		fmt.Printf("🟢 User %d: %s\n", i+1, u.Name)
		fmt.Printf("═══════════════════════════════════════════════════════════════\n")
		fmt.Printf("User ID:      %s\n", u.ID)
		if u.Email != "" {
			fmt.Printf("Email:        %s\n", u.Email)
		}
		fmt.Printf("\n📋 Access Token (Copy to Postman):\n")
		fmt.Printf("%s\n", accessToken)
		fmt.Printf("───────────────────────────────────────────────────────────────\n\n")
	}

	log.Println("✅ Test tokens issued")
	log.Println("💡 Usage: set header Authorization: Bearer <access_token>")
	log.Println("   Token expiry:", jwtManager.GetAccessExpiry())
}
