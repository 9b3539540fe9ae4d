package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"videoads/internal/middleware"
)

func main() {
	var (
		subject string
		ttl     time.Duration
	)
	flag.StringVar(&subject, "sub", "", "Operator identifier placed in the token subject")
	flag.DurationVar(&ttl, "ttl", 30*24*time.Hour, "Token lifetime (0 = no expiry)")
	flag.Parse()

	_ = godotenv.Load()
	secret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if secret == "" {
		fmt.Fprintln(os.Stderr, "JWT_SECRET is required")
		os.Exit(1)
	}
	if strings.TrimSpace(subject) == "" {
		fmt.Fprintln(os.Stderr, "-sub is required")
		os.Exit(1)
	}

	token, err := middleware.SignOperatorToken(secret, subject, ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sign token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
