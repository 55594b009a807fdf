package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/entregalabs/entrega/internal/client"
)

func customerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "customer",
		Short: "Browse stores, place orders, follow deliveries",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "stores",
			Short: "List registered stores",
			RunE: func(cmd *cobra.Command, args []string) error {
				stores, err := api().Stores(cmd.Context())
				if err != nil {
					return err
				}
				for _, s := range stores {
					fmt.Printf("%s  %s  (%.4f, %.4f)\n", s.ID, s.Name, s.Lat, s.Lng)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "browse <store-id>",
			Short: "List a store's priced stock",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				entries, err := api().StoreCatalog(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				for _, e := range entries {
					fmt.Printf("%s  %-20s  price %d  stock %d\n", e.ProductID, e.ProductName, e.Price, e.Quantity)
				}
				return nil
			},
		},
		orderCmd(),
		&cobra.Command{
			Use:   "cancel <order-id>",
			Short: "Cancel a pending or approved order",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				o, err := api().CancelOrder(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				printOrder(o)
				return nil
			},
		},
		&cobra.Command{
			Use:   "orders [active|history|in-transit]",
			Short: "List my orders",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				filter := ""
				if len(args) == 1 {
					filter = args[0]
				}
				orders, err := api().MyOrders(cmd.Context(), filter)
				if err != nil {
					return err
				}
				printOrders(orders)
				return nil
			},
		},
		watchCmd(),
	)
	return cmd
}

// orderCmd builds a cart from product=qty arguments and submits it. The
// cart is local until the submit; a stock conflict reports the product
// and leaves nothing placed.
func orderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "order <store-id> <product-id>=<qty> [...]",
		Short: "Place an order at a store",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c := api()
			storeID := args[0]

			entries, err := c.StoreCatalog(ctx, storeID)
			if err != nil {
				return err
			}
			byID := make(map[string]client.StoreProduct, len(entries))
			for _, e := range entries {
				byID[e.ProductID] = e
			}

			cart := client.NewCartBuilder(c, storeID)
			for _, arg := range args[1:] {
				productID, qtyStr, ok := strings.Cut(arg, "=")
				if !ok {
					return fmt.Errorf("want <product-id>=<qty>, got %q", arg)
				}
				qty, err := strconv.Atoi(qtyStr)
				if err != nil || qty <= 0 {
					return fmt.Errorf("bad quantity in %q", arg)
				}
				entry, ok := byID[productID]
				if !ok {
					return fmt.Errorf("store does not sell %s", productID)
				}
				for i := 0; i < qty; i++ {
					cart.Add(entry)
				}
			}

			fmt.Printf("cart total: %d\n", cart.Total())
			o, err := cart.Submit(ctx)
			if err != nil {
				return err
			}
			printOrder(o)
			return nil
		},
	}
}

// watchCmd follows in-transit deliveries: recovery on start and on every
// reconnect, realtime events in between, polling as the safety net.
func watchCmd() *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow my deliveries in real time",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c := api()
			view := client.NewViewState()
			log := slog.New(slog.NewTextHandler(io.Discard, nil))
			if os.Getenv("ENTREGA_DEBUG") != "" {
				log = slog.New(slog.NewTextHandler(os.Stderr, nil))
			}

			rec := client.NewRecovery(c, view, log)
			rt := client.NewRealtime(serverURL, token, view, log)
			rt.OnRecover = func(ctx context.Context) {
				if err := rec.Run(ctx); err != nil {
					log.Warn("recovery failed", "err", err)
				}
			}
			go rt.Run(ctx)

			poller := client.NewPoller(c, view, "in-transit", interval, log)
			go poller.Run(ctx)

			ticker := time.NewTicker(2 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
					status := "live"
					if !rt.Connected() {
						status = "degraded (polling)"
					}
					fmt.Printf("-- %s --\n", status)
					for _, v := range view.InTransit() {
						pos := "position unknown"
						if v.Vehicle != nil {
							pos = fmt.Sprintf("at (%.4f, %.4f)", v.Vehicle.Lat, v.Vehicle.Lng)
						}
						fmt.Printf("%s  %s  %s  route points: %d\n",
							v.Order.ID, v.Order.Status, pos, len(v.Route))
					}
				}
			}
		},
	}

	cmd.Flags().DurationVar(&interval, "poll-interval", 15*time.Second, "poll interval")
	return cmd
}
