// Command conecta is a small console front door to the Conecta API client:
// search listings, inspect the taxonomy and print the dashboard snapshot.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	conecta "github.com/uleam-conecta/conecta-go"
	"github.com/uleam-conecta/conecta-go/internal/config"
	"github.com/uleam-conecta/conecta-go/internal/resource/services"
)

func main() {
	configPath := flag.String("config", "conecta.yaml", "Path to config file")
	search := flag.String("search", "", "Search term for the listings search")
	limit := flag.Int("limit", 10, "Page size for list output")
	token := flag.String("token", "", "Bearer token to store in the session before running")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	client, err := conecta.NewClient(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "client: %v\n", err)
		os.Exit(1)
	}

	if *token != "" {
		if err := client.Session.SetToken(*token); err != nil {
			fmt.Fprintf(os.Stderr, "session: %v\n", err)
			os.Exit(1)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	command := flag.Arg(0)
	if command == "" {
		command = "search"
	}

	switch command {
	case "search":
		err = runSearch(ctx, client, *search, *limit)
	case "faculties":
		err = runFaculties(ctx, client)
	case "dashboard":
		err = runDashboard(ctx, client)
	default:
		err = fmt.Errorf("unknown command %q (want search, faculties or dashboard)", command)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", command, err)
		os.Exit(1)
	}
}

func runSearch(ctx context.Context, client *conecta.Client, term string, limit int) error {
	page, err := client.Services.Search(ctx, services.Filter{Search: term, Limit: limit})
	if err != nil {
		return err
	}
	fmt.Printf("%d services (page %d of %d)\n", page.Total, page.Page, page.TotalPages)
	for _, svc := range page.Items {
		fmt.Printf("  %-28s $%.2f  %.1f★ (%d)\n", svc.Title, svc.Price, svc.Rating, svc.TotalReviews)
	}
	return nil
}

func runFaculties(ctx context.Context, client *conecta.Client) error {
	faculties, err := client.Academic.Faculties(ctx)
	if err != nil {
		return err
	}
	for _, f := range faculties {
		careers, err := client.Academic.Careers(ctx, f.ID)
		if err != nil {
			return err
		}
		fmt.Printf("%s (%d carreras)\n", f.Name, len(careers))
	}
	return nil
}

func runDashboard(ctx context.Context, client *conecta.Client) error {
	metrics := client.Dashboard.Refresh(ctx)
	printSection := func(name string, value any, err error) {
		if err != nil {
			fmt.Printf("  %-10s (no disponible: %v)\n", name, err)
			return
		}
		fmt.Printf("  %-10s %v\n", name, value)
	}
	fmt.Println("Dashboard")
	printSection("usuarios", metrics.Users.Data, metrics.Users.Err)
	printSection("servicios", metrics.Services.Data, metrics.Services.Err)
	printSection("pedidos", metrics.Orders.Data, metrics.Orders.Err)
	printSection("pagos", metrics.Payments.Data, metrics.Payments.Err)
	return nil
}
