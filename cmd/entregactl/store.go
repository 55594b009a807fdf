package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func storeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage stock and approve orders",
	}

	addProduct := &cobra.Command{
		Use:   "add-product <name> [description]",
		Short: "Register a product in the global catalog",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			desc := ""
			if len(args) == 2 {
				desc = args[1]
			}
			p, err := api().CreateProduct(cmd.Context(), args[0], desc)
			if err != nil {
				return err
			}
			fmt.Printf("%s  %s\n", p.ID, p.Name)
			return nil
		},
	}

	search := &cobra.Command{
		Use:   "search <name-prefix>",
		Short: "Search the global catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			products, err := api().SearchProducts(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, p := range products {
				fmt.Printf("%s  %s\n", p.ID, p.Name)
			}
			return nil
		},
	}

	link := &cobra.Command{
		Use:   "link <product-id> <price> <quantity>",
		Short: "Put a catalog product on my shelf",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			price, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("bad price %q", args[1])
			}
			qty, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("bad quantity %q", args[2])
			}
			sp, err := api().LinkStock(cmd.Context(), args[0], price, int32(qty))
			if err != nil {
				return err
			}
			fmt.Printf("%s  price %d  stock %d\n", sp.ProductName, sp.Price, sp.Quantity)
			return nil
		},
	}

	restock := &cobra.Command{
		Use:   "restock <product-id> <delta>",
		Short: "Add stock for a linked product",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			delta, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("bad delta %q", args[1])
			}
			sp, err := api().Restock(cmd.Context(), args[0], int32(delta))
			if err != nil {
				return err
			}
			fmt.Printf("%s  stock %d\n", sp.ProductName, sp.Quantity)
			return nil
		},
	}

	unlink := &cobra.Command{
		Use:   "unlink <product-id>",
		Short: "Remove a product from my shelf",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return api().UnlinkStock(cmd.Context(), args[0])
		},
	}

	pending := &cobra.Command{
		Use:   "pending",
		Short: "List orders waiting for approval",
		RunE: func(cmd *cobra.Command, args []string) error {
			orders, err := api().MyOrders(cmd.Context(), "")
			if err != nil {
				return err
			}
			printOrders(orders)
			return nil
		},
	}

	approve := &cobra.Command{
		Use:   "approve <order-id>",
		Short: "Approve a pending order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := api().ApproveOrder(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printOrder(o)
			return nil
		},
	}

	cmd.AddCommand(addProduct, search, link, restock, unlink, pending, approve)
	return cmd
}
