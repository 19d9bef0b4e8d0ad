// Command devtoken prints a bearer token for local testing:
//
//	devtoken -user 2 -role WAITER
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ariefcatur/go-restaurant-pos/internal/auth"
	"github.com/ariefcatur/go-restaurant-pos/internal/config"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	user := flag.Int64("user", 1, "user id (token subject)")
	role := flag.String("role", auth.RoleAdmin, "ADMIN, WAITER, KITCHEN or CASHIER")
	name := flag.String("name", "", "display name")
	ttl := flag.Duration("ttl", 8*time.Hour, "token lifetime")
	flag.Parse()

	tok, err := auth.Sign(cfg.JWTSecret, auth.Identity{UserID: *user, Role: *role, Name: *name}, *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, "sign:", err)
		os.Exit(1)
	}
	fmt.Println(tok)
}
