// cmd/servicetoken/main.go
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/berkelium/storefront/internal/config"
	"github.com/berkelium/storefront/internal/pkg/auth"
)

// Issues a bearer token for a backend caller of the fulfillment endpoints.
func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run ./cmd/servicetoken <service-name>")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	jwtManager := auth.NewJWTManager(cfg)
	token, err := jwtManager.GenerateServiceToken(os.Args[1])
	if err != nil {
		log.Fatalf("failed to generate token: %v", err)
	}

	if _, err := jwtManager.ValidateServiceToken(token); err != nil {
		log.Fatalf("token verification failed: %v", err)
	}

	fmt.Printf("Service: %s\n", os.Args[1])
	fmt.Printf("Expires in: %s\n", cfg.JWT.ServiceTokenTTL)
	fmt.Printf("Token: %s\n", token)
}
