package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"heladeria-pos/internal/app"
	"heladeria-pos/internal/core"
	"heladeria-pos/internal/db"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// session is the state owned by this terminal: who is selling and the cart
// being built. Nothing below the adapter knows about it.
type session struct {
	vendor *core.Vendor
	cart   *core.Cart
}

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer pool.Close()

	svc := app.NewAppService(
		core.NewCatalogService(pool),
		core.NewClientService(pool),
		core.NewVendorService(pool),
		core.NewSaleService(pool),
		core.NewCreditService(pool),
		core.NewReportingService(pool),
	)

	reader := bufio.NewReader(os.Stdin)

	vendor, err := login(ctx, svc, reader)
	if err != nil {
		log.Fatalf("login: %v", err)
	}

	sess := &session{vendor: vendor, cart: core.NewCart()}
	runREPL(ctx, svc, sess, reader)
}

func login(ctx context.Context, svc app.ApplicationService, reader *bufio.Reader) (*core.Vendor, error) {
	res, err := svc.ListVendors(ctx)
	if err != nil {
		return nil, err
	}
	if len(res.Vendors) == 0 {
		return nil, fmt.Errorf("no active vendors, has the seed run?")
	}

	fmt.Println("Heladería POS")
	fmt.Println("-------------")
	for _, v := range res.Vendors {
		fmt.Printf("  [%d] %s %s (%s)\n", v.ID, v.Icon, v.Name, v.Role)
	}

	for {
		fmt.Print("Vendedor: ")
		input, _ := reader.ReadString('\n')
		id, err := strconv.Atoi(strings.TrimSpace(input))
		if err != nil {
			fmt.Println("Enter a vendor number from the list.")
			continue
		}
		vendor, err := svc.GetVendor(ctx, id)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}
		fmt.Printf("Hola, %s.\n", vendor.Name)
		return vendor, nil
	}
}

func runREPL(ctx context.Context, svc app.ApplicationService, sess *session, reader *bufio.Reader) {
	fmt.Println("Type 'help' for commands.")

	for {
		fmt.Print("\n> ")
		input, _ := reader.ReadString('\n')
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		tokens := strings.Fields(input)
		cmd := strings.ToLower(tokens[0])
		args := tokens[1:]

		var err error
		switch cmd {
		case "help":
			printHelp()
		case "products":
			err = printProducts(ctx, svc)
		case "clients":
			err = printClients(ctx, svc)
		case "add":
			err = addToCart(ctx, svc, sess, args)
		case "qty":
			err = changeQuantity(sess, args)
		case "remove":
			err = removeLine(sess, args)
		case "clear":
			sess.cart.Clear()
			fmt.Println("Cart cleared.")
		case "cart":
			printCart(sess.cart)
		case "checkout":
			err = checkout(ctx, svc, sess, args)
		case "pay":
			err = applyPayment(ctx, svc, args)
		case "history":
			err = printHistory(ctx, svc, args)
		case "sales":
			err = printTodaySales(ctx, svc)
		case "summary":
			err = printSummary(ctx, svc)
		case "exit", "quit":
			return
		default:
			fmt.Printf("Unknown command: %s\n", cmd)
		}
		if err != nil {
			fmt.Printf("Error: %v\n", err)
		}
	}
}

func printHelp() {
	fmt.Println("Available commands:")
	fmt.Println("  products                        list the catalog")
	fmt.Println("  clients                         list registered clients")
	fmt.Println("  add <product-id>                add one unit to the cart")
	fmt.Println("  qty <line> <delta>              change a cart line quantity")
	fmt.Println("  remove <line>                   remove a cart line")
	fmt.Println("  cart                            show the cart")
	fmt.Println("  clear                           empty the cart")
	fmt.Println("  checkout <cash|transfer|credit> [client-id]")
	fmt.Println("  pay <client-id> <amount> <cash|transfer>")
	fmt.Println("  history <client-id>             client ledger, newest first")
	fmt.Println("  sales                           today's sales")
	fmt.Println("  summary                         dashboard totals")
	fmt.Println("  exit")
}

func printProducts(ctx context.Context, svc app.ApplicationService) error {
	res, err := svc.ListProducts(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%-4s %-3s %-24s %10s %7s\n", "ID", "", "NAME", "PRICE", "STOCK")
	fmt.Println(strings.Repeat("-", 52))
	for _, p := range res.Products {
		marker := ""
		if p.LowStock() {
			marker = " !"
		}
		fmt.Printf("%-4d %-3s %-24s %10s %5d%s\n", p.ID, p.Icon, p.Name, p.Price.StringFixed(2), p.Stock, marker)
	}
	return nil
}

func printClients(ctx context.Context, svc app.ApplicationService) error {
	res, err := svc.ListClients(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%-4s %-24s %12s %12s\n", "ID", "NAME", "DEBT", "AVAILABLE")
	fmt.Println(strings.Repeat("-", 56))
	for _, c := range res.Clients {
		fmt.Printf("%-4d %-24s %12s %12s\n", c.ID, c.Name, c.CurrentDebt.StringFixed(2), c.AvailableCredit().StringFixed(2))
	}
	return nil
}

func addToCart(ctx context.Context, svc app.ApplicationService, sess *session, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: add <product-id>")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid product id %q", args[0])
	}
	res, err := svc.ListProducts(ctx)
	if err != nil {
		return err
	}
	for _, p := range res.Products {
		if p.ID == id {
			if err := sess.cart.AddItem(p); err != nil {
				return err
			}
			printCart(sess.cart)
			return nil
		}
	}
	return fmt.Errorf("product %d not found", id)
}

func changeQuantity(sess *session, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: qty <line> <delta>")
	}
	index, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid line number %q", args[0])
	}
	delta, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid delta %q", args[1])
	}
	if err := sess.cart.ChangeQuantity(index-1, delta); err != nil {
		return err
	}
	printCart(sess.cart)
	return nil
}

func removeLine(sess *session, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: remove <line>")
	}
	index, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid line number %q", args[0])
	}
	if err := sess.cart.RemoveItem(index - 1); err != nil {
		return err
	}
	printCart(sess.cart)
	return nil
}

func printCart(cart *core.Cart) {
	items := cart.Items()
	if len(items) == 0 {
		fmt.Println("Cart is empty.")
		return
	}
	fmt.Printf("%-4s %-24s %5s %10s %10s\n", "#", "PRODUCT", "QTY", "PRICE", "TOTAL")
	fmt.Println(strings.Repeat("-", 58))
	for i, l := range items {
		lineTotal := l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
		fmt.Printf("%-4d %-24s %5d %10s %10s\n", i+1, l.ProductName, l.Quantity, l.UnitPrice.StringFixed(2), lineTotal.StringFixed(2))
	}
	fmt.Println(strings.Repeat("-", 58))
	fmt.Printf("%46s %10s\n", "TOTAL", cart.Total().StringFixed(2))
}

func checkout(ctx context.Context, svc app.ApplicationService, sess *session, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: checkout <cash|transfer|credit> [client-id]")
	}
	method := core.PaymentMethod(strings.ToLower(args[0]))

	var clientID *int
	if len(args) > 1 {
		id, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid client id %q", args[1])
		}
		clientID = &id
	}

	items := sess.cart.Items()
	lines := make([]app.CheckoutLine, len(items))
	for i, l := range items {
		lines[i] = app.CheckoutLine{ProductID: l.ProductID, Quantity: l.Quantity}
	}

	res, err := svc.Checkout(ctx, app.CheckoutRequest{
		Lines:         lines,
		VendorName:    sess.vendor.Name,
		ClientID:      clientID,
		PaymentMethod: method,
	})
	if err != nil {
		return err
	}

	sess.cart.Clear()
	sale := res.Sale
	fmt.Printf("Sale #%d recorded: %s, %s, total %s\n", sale.ID, sale.ClientName, sale.PaymentMethod, sale.Total.StringFixed(2))
	return nil
}

func applyPayment(ctx context.Context, svc app.ApplicationService, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: pay <client-id> <amount> <cash|transfer>")
	}
	clientID, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid client id %q", args[0])
	}
	amount, err := decimal.NewFromString(args[1])
	if err != nil {
		return fmt.Errorf("invalid amount %q", args[1])
	}
	method := core.PaymentMethod(strings.ToLower(args[2]))

	res, err := svc.ApplyCreditPayment(ctx, app.PaymentRequest{
		ClientID: clientID,
		Amount:   amount,
		Method:   method,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Payment recorded. %s now owes %s.\n", res.Client.Name, res.Client.CurrentDebt.StringFixed(2))
	return nil
}

func printHistory(ctx context.Context, svc app.ApplicationService, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: history <client-id>")
	}
	clientID, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid client id %q", args[0])
	}

	client, err := svc.GetClient(ctx, clientID)
	if err != nil {
		return err
	}
	res, err := svc.CreditHistory(ctx, clientID)
	if err != nil {
		return err
	}

	fmt.Printf("%s owes %s\n", client.Name, client.CurrentDebt.StringFixed(2))
	fmt.Println(strings.Repeat("-", 70))
	for _, t := range res.Transactions {
		fmt.Printf("%s %10s  %-8s %s\n", t.CreatedAt.Format("2006-01-02 15:04"), t.Amount.StringFixed(2), t.Type, t.Description)
	}
	return nil
}

func printTodaySales(ctx context.Context, svc app.ApplicationService) error {
	res, err := svc.ListTodaySales(ctx)
	if err != nil {
		return err
	}
	if len(res.Sales) == 0 {
		fmt.Println("No sales today.")
		return nil
	}
	fmt.Printf("%-5s %-6s %-20s %-10s %10s\n", "ID", "TIME", "CLIENT", "METHOD", "TOTAL")
	fmt.Println(strings.Repeat("-", 56))
	for _, s := range res.Sales {
		fmt.Printf("%-5d %-6s %-20s %-10s %10s\n", s.ID, s.CreatedAt.Format("15:04"), s.ClientName, s.PaymentMethod, s.Total.StringFixed(2))
	}
	return nil
}

func printSummary(ctx context.Context, svc app.ApplicationService) error {
	res, err := svc.DashboardSummary(ctx)
	if err != nil {
		return err
	}

	fmt.Println("\n--- TODAY ---")
	fmt.Printf("Sales:     %d\n", res.Today.SaleCount)
	fmt.Printf("Total:     %s\n", res.Today.Total.StringFixed(2))
	fmt.Printf("Cash:      %s\n", res.Today.CashTotal.StringFixed(2))
	fmt.Printf("Transfer:  %s\n", res.Today.TransferTotal.StringFixed(2))
	fmt.Printf("Credit:    %s\n", res.Today.CreditTotal.StringFixed(2))

	fmt.Println("\n--- CREDIT ---")
	fmt.Printf("Outstanding debt: %s across %d clients\n", res.Credit.TotalDebt.StringFixed(2), res.Credit.ClientsWithDebt)

	if len(res.LowStock) > 0 {
		fmt.Println("\n--- LOW STOCK ---")
		for _, p := range res.LowStock {
			fmt.Printf("  %s %s: %d left (reorder at %d)\n", p.Icon, p.Name, p.Stock, p.MinStock)
		}
	}
	return nil
}
