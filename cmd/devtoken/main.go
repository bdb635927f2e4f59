// Command devtoken prints a bearer token accepted by IDENTITY_PROVIDER=jwt.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"contesthub/internal/common/security"
	"contesthub/internal/platform/config"
)

func main() {
	email := flag.String("email", "", "email claim of the token")
	flag.Parse()

	if *email == "" {
		fmt.Fprintln(os.Stderr, "usage: devtoken -email user@example.com")
		os.Exit(2)
	}

	cfg := config.Load()
	token, err := security.NewTokenIssuer(cfg.JWTKey, cfg.JWTExp).GenerateToken(*email)
	if err != nil {
		log.Fatalf("Could not sign token: %v", err)
	}
	fmt.Println(token)
}
