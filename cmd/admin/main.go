// cmd/admin/main.go
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/twinkleshop/shopapp-orders/internal/adapters/httpclient"
	"github.com/twinkleshop/shopapp-orders/internal/application"
	"github.com/twinkleshop/shopapp-orders/internal/config"
	"github.com/twinkleshop/shopapp-orders/internal/domain"
	"github.com/twinkleshop/shopapp-orders/pkg/auth"
	"github.com/twinkleshop/shopapp-orders/pkg/logger"
)

// terminalNavigator is the Navigator side effect for a terminal session:
// the "login route" is a prompt on stdin.
type terminalNavigator struct {
	gateway *httpclient.Gateway
	in      *bufio.Scanner
}

func (n *terminalNavigator) RedirectToLogin() {
	fmt.Println("login required")
	fmt.Print("phone number: ")
	if !n.in.Scan() {
		return
	}
	phone := strings.TrimSpace(n.in.Text())
	fmt.Print("password: ")
	if !n.in.Scan() {
		return
	}
	password := strings.TrimSpace(n.in.Text())

	if _, err := n.gateway.Login(context.Background(), phone, password); err != nil {
		fmt.Printf("login failed: %v\n", err)
		return
	}
	fmt.Println("logged in")
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logger.New("shopapp-admin", cfg.LogLevel)

	store, err := auth.NewFileTokenStore(cfg.SessionFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open session store")
	}

	gateway := httpclient.NewGateway(cfg.APIBaseURL, store, log)
	in := bufio.NewScanner(os.Stdin)
	nav := &terminalNavigator{gateway: gateway, in: in}
	guard := auth.NewAdminGuard(store, nav)
	console := application.NewConsole(gateway, store, cfg.APIBaseURL, log)

	ctx := context.Background()
	if !guard.CanEnter("/admin/order-confirm") {
		// The navigator already ran the login prompt; check once more with
		// the fresh credential.
		if !guard.CanEnter("/admin/order-confirm") {
			fmt.Println("admin access denied")
			os.Exit(1)
		}
	}

	fmt.Println("commands: list [pending|shipping|delivered|cancelled], confirm <id> <status>, expand <id>, history, logout, quit")
	printRows(ctx, console, "pending")

	for {
		fmt.Print("> ")
		if !in.Scan() {
			return
		}
		fields := strings.Fields(in.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "list":
			statusParam := ""
			if len(fields) > 1 {
				statusParam = fields[1]
			}
			printRows(ctx, console, statusParam)
		case "confirm":
			if len(fields) != 3 {
				fmt.Println("usage: confirm <id> <status>")
				continue
			}
			id, err := strconv.ParseInt(fields[1], 10, 64)
			if err != nil {
				fmt.Println("invalid order id")
				continue
			}
			target, err := domain.ParseStatus(fields[2])
			if err != nil {
				fmt.Println(err)
				continue
			}
			msg, err := console.Confirm(ctx, id, target)
			fmt.Println(msg)
			if err != nil && !errors.Is(err, domain.ErrIllegalTransition) {
				// Conflict / network / auth: a fresh list is the operator's
				// next move anyway.
				printRows(ctx, console, console.Status().String())
			}
		case "expand":
			if len(fields) != 2 {
				fmt.Println("usage: expand <id>")
				continue
			}
			id, err := strconv.ParseInt(fields[1], 10, 64)
			if err != nil {
				fmt.Println("invalid order id")
				continue
			}
			fmt.Printf("order %d expanded: %v\n", id, console.ToggleExpand(id))
		case "history":
			rows, err := console.History(ctx)
			if err != nil {
				fmt.Printf("history failed: %v\n", err)
				continue
			}
			printRowList(rows)
		case "logout":
			if err := store.Clear(); err != nil {
				fmt.Printf("logout failed: %v\n", err)
				continue
			}
			fmt.Println("logged out")
			return
		case "quit", "exit":
			return
		default:
			fmt.Println("unknown command")
		}
	}
}

func printRows(ctx context.Context, console *application.Console, statusParam string) {
	rows, err := console.Load(ctx, statusParam)
	if err != nil {
		fmt.Printf("load failed: %v\n", err)
		return
	}
	fmt.Printf("%d order(s), filter %s\n", len(rows), console.Status())
	printRowList(rows)
}

func printRowList(rows []application.OrderRow) {
	for _, row := range rows {
		fmt.Printf("  #%d  %-10s  ordered %s", row.Order.ID, row.Order.Status, row.OrderDate)
		if row.ShippingDate != "" {
			fmt.Printf("  shipping %s", row.ShippingDate)
		}
		fmt.Printf("  %s  %.2f\n", row.Order.PhoneNumber, row.Order.TotalMoney)
		if row.Expanded {
			for _, item := range row.Order.Items {
				fmt.Printf("      product %d x%d @ %.2f\n", item.ProductID, item.Quantity, item.UnitPrice)
			}
		}
	}
}
