package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/safar/pizza-storefront/internal/api"
	"github.com/safar/pizza-storefront/internal/config"
	"github.com/safar/pizza-storefront/internal/models"
	"github.com/safar/pizza-storefront/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Load config: %v", err)
	}

	logger, err := config.NewLogger(&cfg.Logger)
	if err != nil {
		log.Fatalf("Build logger: %v", err)
	}
	defer logger.Sync()

	tokens, err := store.NewFileTokenStore(cfg.Storage.TokenDir)
	if err != nil {
		log.Fatalf("Open token store: %v", err)
	}

	client, err := api.NewClient(&cfg.API, tokens, logger)
	if err != nil {
		log.Fatalf("Build API client: %v", err)
	}

	session := store.NewSession(client, tokens)
	cart := store.NewCart(client)

	ctx := context.Background()
	if err := session.Bootstrap(ctx); err != nil {
		// A stale token on disk is a normal cold start, not a failure.
		logger.Debug("session bootstrap", zap.Error(err))
	}

	sh := &shell{
		client:   client,
		session:  session,
		cart:     cart,
		products: make(map[int64]models.Product),
	}
	sh.run(ctx)
}

// shell is the storefront's interactive front: one command per line, each
// reading from or mutating the stores. It holds no domain state of its own
// beyond a product lookup cache for resolving "add" by id.
type shell struct {
	client   *api.Client
	session  *store.Session
	cart     *store.Cart
	products map[int64]models.Product
}

func (sh *shell) run(ctx context.Context) {
	fmt.Println("Pizza storefront. Type 'help' for commands.")
	sh.cmdWhoami()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		args := strings.Fields(scanner.Text())
		if len(args) == 0 {
			continue
		}
		if args[0] == "exit" || args[0] == "quit" {
			return
		}
		sh.dispatch(ctx, args[0], args[1:])
	}
}

func (sh *shell) dispatch(ctx context.Context, cmd string, args []string) {
	var err error
	switch cmd {
	case "help":
		sh.cmdHelp()
	case "menu":
		err = sh.cmdMenu(ctx, args)
	case "search":
		err = sh.cmdSearch(ctx, args)
	case "add":
		err = sh.cmdAdd(ctx, args)
	case "cart":
		sh.cmdCart()
	case "rm":
		err = sh.cmdRemove(args)
	case "qty":
		err = sh.cmdQuantity(args)
	case "open":
		sh.cart.ToggleVisibility()
		sh.cmdCart()
	case "checkout":
		err = sh.cmdCheckout(ctx, args)
	case "login":
		err = sh.cmdLogin(ctx, args)
	case "register":
		err = sh.cmdRegister(ctx, args)
	case "logout":
		err = sh.session.Logout()
		if err == nil {
			fmt.Println("Logged out.")
		}
	case "whoami":
		sh.cmdWhoami()
	case "passwd":
		err = sh.cmdChangePassword(ctx, args)
	case "forgot":
		err = sh.cmdForgotPassword(ctx, args)
	case "reset":
		err = sh.cmdResetPassword(ctx, args)
	case "verify":
		err = sh.cmdVerifyEmail(ctx, args)
	case "create-employee":
		err = sh.cmdCreateEmployee(ctx, args)
	case "orders":
		err = sh.cmdOrders(ctx, args)
	case "order-status":
		err = sh.cmdOrderStatus(ctx, args)
	case "product-add":
		err = sh.cmdProductAdd(ctx, args)
	case "product-update":
		err = sh.cmdProductUpdate(ctx, args)
	case "product-del":
		err = sh.cmdProductDelete(ctx, args)
	default:
		fmt.Printf("Unknown command %q. Type 'help'.\n", cmd)
	}
	if err != nil {
		fmt.Println("Error:", err)
	}
}

func (sh *shell) cmdHelp() {
	fmt.Print(`Browsing:
  menu [pizza|drinks|desserts]      list the catalog
  search <query>                    search products by name
Cart:
  add <product-id> [30cm|40cm]      add a product (size matters for pizzas)
  cart                              show cart lines and total
  rm <line-id>                      remove a line
  qty <line-id> <delta>             change a line's quantity (never below 1)
  open                              toggle the cart panel
  checkout <address>                place the order
Account:
  login <email> <password>          sign in
  register <email> <password>       create an account and sign in
  logout | whoami
  passwd <old> <new>                change password
  forgot <email>                    request a password reset mail
  reset <token> <new-password>      finish a password reset
  verify <token>                    confirm email address
Back office:
  orders [status]                   list orders, optionally by status
  order-status <id> <status>        set an order's status (admin)
  product-add <name> <price> <category> [description]
  product-update <id> <name> <price> <category> [description]
  product-del <id>
  create-employee <email> <password>
`)
}

func (sh *shell) cmdMenu(ctx context.Context, args []string) error {
	var category models.Category
	if len(args) > 0 {
		category = models.Category(args[0])
	}

	products, err := sh.client.ListPizzas(ctx, category)
	if err != nil {
		return err
	}
	sh.printProducts(products)
	return nil
}

func (sh *shell) cmdSearch(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: search <query>")
	}

	products, err := sh.client.SearchPizzas(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	sh.printProducts(products)
	return nil
}

func (sh *shell) cmdAdd(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: add <product-id> [30cm|40cm]")
	}

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid product id %q", args[0])
	}

	size := models.SizeSmall
	if len(args) > 1 {
		size = models.Size(args[1])
		if size != models.SizeSmall && size != models.SizeLarge {
			return fmt.Errorf("invalid size %q (want 30cm or 40cm)", args[1])
		}
	}

	product, err := sh.resolveProduct(ctx, id)
	if err != nil {
		return err
	}

	line := sh.cart.AddItem(*product, size)
	fmt.Printf("Added %s (%s) for %s as line %s\n", product.Name, size, line.UnitPrice.StringFixed(2), line.ID)
	return nil
}

// resolveProduct finds a product by id, re-fetching the catalog when the
// local lookup cache misses. There is no get-by-id endpoint.
func (sh *shell) resolveProduct(ctx context.Context, id int64) (*models.Product, error) {
	if p, ok := sh.products[id]; ok {
		return &p, nil
	}

	products, err := sh.client.ListPizzas(ctx, "")
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		sh.products[p.ID] = p
	}

	if p, ok := sh.products[id]; ok {
		return &p, nil
	}
	return nil, fmt.Errorf("no product with id %d", id)
}

func (sh *shell) cmdCart() {
	lines := sh.cart.Lines()
	if len(lines) == 0 {
		fmt.Println("Cart is empty.")
		return
	}

	state := "closed"
	if sh.cart.IsOpen() {
		state = "open"
	}
	fmt.Printf("Cart (%s):\n", state)
	for _, line := range lines {
		fmt.Printf("  [%s] %s %s x%d @ %s = %s\n",
			line.ID, line.Product.Name, line.Size, line.Quantity,
			line.UnitPrice.StringFixed(2), line.Subtotal().StringFixed(2))
	}
	fmt.Printf("Total: %s\n", sh.cart.TotalPrice().StringFixed(2))
}

func (sh *shell) cmdRemove(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: rm <line-id>")
	}
	sh.cart.RemoveItem(args[0])
	return nil
}

func (sh *shell) cmdQuantity(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: qty <line-id> <delta>")
	}
	delta, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid delta %q", args[1])
	}
	sh.cart.ChangeQuantity(args[0], delta)
	return nil
}

func (sh *shell) cmdCheckout(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: checkout <delivery address>")
	}
	if sh.cart.Len() == 0 {
		fmt.Println("Cart is empty.")
		return nil
	}

	if err := sh.cart.Checkout(ctx, strings.Join(args, " ")); err != nil {
		return err
	}
	fmt.Println("Order placed.")
	return nil
}

func (sh *shell) cmdLogin(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: login <email> <password>")
	}
	if err := sh.session.Login(ctx, args[0], args[1]); err != nil {
		return err
	}
	sh.cmdWhoami()
	return nil
}

func (sh *shell) cmdRegister(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: register <email> <password>")
	}
	if err := sh.session.Register(ctx, args[0], args[1]); err != nil {
		return err
	}
	sh.cmdWhoami()
	return nil
}

func (sh *shell) cmdWhoami() {
	if user, ok := sh.session.User(); ok {
		fmt.Printf("Signed in as %s (%s)\n", user.Email, user.Role)
		return
	}
	fmt.Println("Not signed in.")
}

func (sh *shell) cmdChangePassword(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: passwd <old-password> <new-password>")
	}
	if err := sh.client.ChangePassword(ctx, args[0], args[1]); err != nil {
		return err
	}
	fmt.Println("Password changed.")
	return nil
}

func (sh *shell) cmdForgotPassword(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: forgot <email>")
	}
	if err := sh.client.ForgotPassword(ctx, args[0]); err != nil {
		return err
	}
	fmt.Println("Reset mail requested.")
	return nil
}

func (sh *shell) cmdResetPassword(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: reset <token> <new-password>")
	}
	if err := sh.client.ResetPassword(ctx, args[0], args[1]); err != nil {
		return err
	}
	fmt.Println("Password reset.")
	return nil
}

func (sh *shell) cmdVerifyEmail(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: verify <token>")
	}
	if err := sh.client.VerifyEmail(ctx, args[0]); err != nil {
		return err
	}
	fmt.Println("Email verified.")
	return nil
}

func (sh *shell) cmdCreateEmployee(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: create-employee <email> <password>")
	}
	if err := sh.client.CreateEmployee(ctx, args[0], args[1]); err != nil {
		return err
	}
	fmt.Println("Employee account created.")
	return nil
}

func (sh *shell) cmdOrders(ctx context.Context, args []string) error {
	orders, err := sh.client.ListOrders(ctx)
	if err != nil {
		return err
	}

	var statusFilter string
	if len(args) > 0 {
		statusFilter = args[0]
	}

	shown := 0
	for _, order := range orders {
		if statusFilter != "" && order.Status != statusFilter {
			continue
		}
		shown++
		fmt.Printf("Order %d [%s] to %q, total %s\n",
			order.ID, order.Status, order.DeliveryAddress, order.TotalPrice.StringFixed(2))
		for _, item := range order.Items {
			fmt.Printf("  product %d x%d @ %s\n", item.ProductID, item.Quantity, item.Price.StringFixed(2))
		}
	}
	if shown == 0 {
		fmt.Println("No orders found.")
	}
	return nil
}

func (sh *shell) cmdOrderStatus(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: order-status <id> <pending|processing|delivered|cancelled>")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid order id %q", args[0])
	}

	order, err := sh.client.UpdateOrderStatus(ctx, id, args[1])
	if err != nil {
		return err
	}
	fmt.Printf("Order %d is now %s.\n", order.ID, order.Status)
	return nil
}

func parseProductInput(args []string) (models.ProductInput, error) {
	if len(args) < 3 {
		return models.ProductInput{}, fmt.Errorf("want <name> <price> <category> [description]")
	}

	price, err := decimal.NewFromString(args[1])
	if err != nil {
		return models.ProductInput{}, fmt.Errorf("invalid price %q", args[1])
	}

	return models.ProductInput{
		Name:        args[0],
		Price:       price,
		Category:    models.Category(args[2]),
		Description: strings.Join(args[3:], " "),
	}, nil
}

func (sh *shell) cmdProductAdd(ctx context.Context, args []string) error {
	input, err := parseProductInput(args)
	if err != nil {
		return err
	}

	product, err := sh.client.CreatePizza(ctx, input)
	if err != nil {
		return err
	}
	sh.products[product.ID] = *product
	fmt.Printf("Created product %d: %s\n", product.ID, product.Name)
	return nil
}

func (sh *shell) cmdProductUpdate(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: product-update <id> <name> <price> <category> [description]")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid product id %q", args[0])
	}

	input, err := parseProductInput(args[1:])
	if err != nil {
		return err
	}

	product, err := sh.client.UpdatePizza(ctx, id, input)
	if err != nil {
		return err
	}
	sh.products[product.ID] = *product
	fmt.Printf("Updated product %d: %s\n", product.ID, product.Name)
	return nil
}

func (sh *shell) cmdProductDelete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: product-del <id>")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid product id %q", args[0])
	}

	if err := sh.client.DeletePizza(ctx, id); err != nil {
		return err
	}
	delete(sh.products, id)
	fmt.Printf("Deleted product %d.\n", id)
	return nil
}

func (sh *shell) printProducts(products []models.Product) {
	if len(products) == 0 {
		fmt.Println("No products found.")
		return
	}
	for _, p := range products {
		sh.products[p.ID] = p
		fmt.Printf("%3d  %-24s %8s  %s\n", p.ID, p.Name, p.Price.StringFixed(2), p.Category)
		if p.Description != "" {
			fmt.Printf("     %s\n", p.Description)
		}
	}
}
