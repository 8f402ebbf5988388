package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/threadswap/storefront/internal/api"
	"github.com/threadswap/storefront/internal/auth"
	"github.com/threadswap/storefront/internal/config"
)

func main() {
	email := flag.String("email", "", "Email to sign in with")
	logout := flag.Bool("logout", false, "Clear the stored session instead of signing in")
	flag.Parse()

	if !*logout && *email == "" {
		log.Fatalf("usage: go run ./cmd/login -email user@example.com   (password is read from stdin)")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	store, closeStore, err := auth.OpenStore(ctx, cfg)
	if err != nil {
		log.Fatalf("session store: %v", err)
	}
	defer closeStore()

	session := auth.NewSession(store)
	if err := session.Init(ctx); err != nil {
		log.Fatalf("session: %v", err)
	}

	if *logout {
		if err := session.Logout(ctx); err != nil {
			log.Fatalf("logout: %v", err)
		}
		fmt.Println("Signed out.")
		return
	}

	fmt.Fprint(os.Stderr, "Password: ")
	password, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && password == "" {
		log.Fatalf("read password: %v", err)
	}

	client := api.NewClient(cfg.APIURL, cfg.HTTPTimeout, session)
	u, err := auth.NewService(client, session).Login(ctx, auth.LoginRequest{
		Email:    *email,
		Password: strings.TrimRight(password, "\r\n"),
	})
	if err != nil {
		log.Fatalf("login failed: %v", err)
	}

	fmt.Printf("Signed in as %s (%s).\n", u.Email, u.ID)
}
