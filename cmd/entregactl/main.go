package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/entregalabs/entrega/internal/client"
)

var (
	serverURL string
	token     string
)

func main() {
	root := &cobra.Command{
		Use:   "entregactl",
		Short: "Interact with a delivery marketplace server",
		Long: `entregactl drives the marketplace API as one of its three actors:
customers browse stores and place orders, stores manage stock and approve
orders, carriers claim freights and report positions.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&serverURL, "server", envOr("ENTREGA_SERVER", "http://localhost:8080"), "server base URL")
	root.PersistentFlags().StringVar(&token, "token", os.Getenv("ENTREGA_TOKEN"), "actor bearer token")

	root.AddCommand(customerCmd(), storeCmd(), carrierCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func api() *client.Client {
	return client.New(serverURL, token)
}

func printOrder(o client.Order) {
	fmt.Printf("%s  %-10s  total %d\n", o.ID, o.Status, o.Total)
	for _, it := range o.Items {
		fmt.Printf("    %dx %s @ %d\n", it.Quantity, it.Name, it.UnitPrice)
	}
}

func printOrders(orders []client.Order) {
	if len(orders) == 0 {
		fmt.Println("(none)")
		return
	}
	for _, o := range orders {
		printOrder(o)
	}
}
