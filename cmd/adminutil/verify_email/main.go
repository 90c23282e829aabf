package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/sealabid/sealabid/internal/db"
)

func main() {
	email := flag.String("email", "", "Email of the user to mark as verified")
	flag.Parse()

	if *email == "" {
		log.Fatalf("usage: go run cmd/adminutil/verify_email/main.go -email user@example.com")
	}

	_ = godotenv.Load()
	ctx := context.Background()
	database, err := db.Connect(ctx, db.DSNFromEnv())
	if err != nil {
		log.Fatalf("database connect failed: %v", err)
	}
	defer database.Close()

	ct, err := database.Pool.Exec(ctx, `UPDATE users SET email_verified = TRUE WHERE email = $1`, *email)
	if err != nil {
		log.Fatalf("failed to verify user email: %v", err)
	}
	if ct.RowsAffected() == 0 {
		log.Fatalf("no user found with email: %s", *email)
	}

	fmt.Printf("Email %s marked as verified.\n", *email)
}
