package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

func carrierCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "carrier",
		Short: "Claim freights and drive deliveries",
	}

	addVehicle := &cobra.Command{
		Use:   "add-vehicle <name> <lat> <lng>",
		Short: "Register a vehicle",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			lat, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("bad lat %q", args[1])
			}
			lng, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return fmt.Errorf("bad lng %q", args[2])
			}
			v, err := api().RegisterVehicle(cmd.Context(), args[0], lat, lng)
			if err != nil {
				return err
			}
			fmt.Printf("%s  %s\n", v.ID, v.Name)
			return nil
		},
	}

	vehicles := &cobra.Command{
		Use:   "vehicles",
		Short: "List my vehicles",
		RunE: func(cmd *cobra.Command, args []string) error {
			vs, err := api().Vehicles(cmd.Context())
			if err != nil {
				return err
			}
			for _, v := range vs {
				fmt.Printf("%s  %-15s  at (%.4f, %.4f)\n", v.ID, v.Name, v.Lat, v.Lng)
			}
			return nil
		},
	}

	freights := &cobra.Command{
		Use:   "freights",
		Short: "List approved orders available to claim",
		RunE: func(cmd *cobra.Command, args []string) error {
			orders, err := api().AvailableFreights(cmd.Context())
			if err != nil {
				return err
			}
			printOrders(orders)
			return nil
		},
	}

	accept := &cobra.Command{
		Use:   "accept <order-id> <vehicle-id>",
		Short: "Claim a freight with a vehicle",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := api().AcceptFreight(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			printOrder(o)
			return nil
		},
	}

	complete := &cobra.Command{
		Use:   "complete <order-id>",
		Short: "Mark an in-transit delivery as done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := api().CompleteDelivery(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printOrder(o)
			return nil
		},
	}

	cmd.AddCommand(addVehicle, vehicles, freights, accept, complete, driveCmd())
	return cmd
}

// driveCmd replays the planned route as live position updates, then
// completes the delivery. It is a simulator for demos and smoke tests.
func driveCmd() *cobra.Command {
	var step time.Duration

	cmd := &cobra.Command{
		Use:   "drive <order-id>",
		Short: "Simulate driving an accepted freight along its route",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c := api()
			orderID := args[0]

			route, err := c.OrderRoute(ctx, orderID)
			if err != nil {
				return err
			}

			for _, p := range route.Waypoints {
				if _, err := c.MoveVehicle(ctx, route.VehicleID, p.Lat, p.Lng); err != nil {
					return err
				}
				fmt.Printf("at (%.4f, %.4f)\n", p.Lat, p.Lng)

				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(step):
				}
			}

			o, err := c.CompleteDelivery(ctx, orderID)
			if err != nil {
				return err
			}
			fmt.Printf("delivered: %s\n", o.ID)
			return nil
		},
	}

	cmd.Flags().DurationVar(&step, "step", time.Second, "pause between waypoints")
	return cmd
}
