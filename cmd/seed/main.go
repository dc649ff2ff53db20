package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Jeomhps/formation-admin/internal/client"
	"github.com/Jeomhps/formation-admin/internal/config"
)

func main() {
	cfg, err := config.LoadTool()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	apiBase := flag.String("api", cfg.PublicBaseURL, "API base URL")
	email := flag.String("email", cfg.AdminDefaultUser, "Admin email")
	password := flag.String("password", cfg.AdminDefaultPass, "Admin password")
	path := flag.String("file", "seed/catalog.yml", "YAML catalog to load")
	flag.Parse()

	cat, err := loadCatalog(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read %s: %v\n", *path, err)
		os.Exit(1)
	}
	if len(cat.Professors) == 0 && len(cat.Formations) == 0 {
		fmt.Println("Nothing to seed.")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cli, err := client.New(*apiBase)
	if err != nil {
		fmt.Fprintf(os.Stderr, "client: %v\n", err)
		os.Exit(1)
	}
	if err := cli.Login(ctx, *email, *password); err != nil {
		fmt.Fprintf(os.Stderr, "Login failed: %v\n", err)
		os.Exit(2)
	}
	defer cli.Logout(context.Background())

	n, err := seed(ctx, cli, cat, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}
	fmt.Printf("Seeded %d professor(s) and %d formation(s).\n", n.professors, n.formations)
}
