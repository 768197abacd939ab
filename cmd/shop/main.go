// Command shop is a storefront client: it signs in, builds a cart against
// the API, and runs a checkout with the simulated payment gateway.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"genwear/internal/cart"
	"genwear/internal/checkout"
	"genwear/internal/config"
	"genwear/internal/domain"
)

// itemFlag collects repeated -item values of the form productID:size[:qty].
type itemFlag []itemSpec

type itemSpec struct {
	ProductID string
	Size      string
	Quantity  int
}

func (f *itemFlag) String() string {
	parts := make([]string, 0, len(*f))
	for _, it := range *f {
		parts = append(parts, fmt.Sprintf("%s:%s:%d", it.ProductID, it.Size, it.Quantity))
	}
	return strings.Join(parts, ",")
}

func (f *itemFlag) Set(v string) error {
	fields := strings.Split(v, ":")
	if len(fields) < 2 || fields[0] == "" || fields[1] == "" {
		return errors.New("expected productID:size[:qty]")
	}
	spec := itemSpec{ProductID: fields[0], Size: fields[1], Quantity: 1}
	if len(fields) > 2 {
		qty, err := strconv.Atoi(fields[2])
		if err != nil || qty < 1 {
			return errors.New("qty must be a positive integer")
		}
		spec.Quantity = qty
	}
	*f = append(*f, spec)
	return nil
}

func main() {
	var (
		baseURL  = flag.String("base", envOr("SHOP_API_URL", "http://localhost:8080"), "API base URL")
		email    = flag.String("email", "", "account email")
		password = flag.String("password", "", "account password")
		deviceID = flag.String("device", "default", "device id for the local cart cache")
		cacheDir = flag.String("cache-dir", defaultCacheDir(), "directory for the local cart cache")
		discount = flag.String("discount", "", "discount code to apply")
		method   = flag.String("method", "card", "payment method: card or cod")

		cardNumber = flag.String("card-number", "4242424242424242", "card number (card method)")
		cardExpiry = flag.String("card-expiry", "12/30", "card expiry MM/YY (card method)")
		cardCVV    = flag.String("card-cvv", "123", "card cvv (card method)")

		shipName    = flag.String("ship-name", "", "shipping full name")
		shipEmail   = flag.String("ship-email", "", "shipping contact email (defaults to account email)")
		shipStreet  = flag.String("ship-street", "", "shipping street")
		shipCity    = flag.String("ship-city", "", "shipping city")
		shipPostal  = flag.String("ship-postal", "", "shipping postal code")
		shipCountry = flag.String("ship-country", "", "shipping country")

		items itemFlag
	)
	flag.Var(&items, "item", "cart line as productID:size[:qty]; repeatable")
	flag.Parse()

	logger := log.New(os.Stderr, "[shop] ", log.LstdFlags|log.LUTC)
	cfg := config.FromEnv()

	if *email == "" || *password == "" {
		logger.Fatal("email and password are required")
	}
	if len(items) == 0 {
		logger.Fatal("at least one -item is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	token, customerID, err := login(ctx, *baseURL, *email, *password)
	if err != nil {
		logger.Fatalf("login: %v", err)
	}

	session := cart.Session{CustomerID: customerID, DeviceID: *deviceID, Authenticated: true}
	engine := cart.New(session,
		cart.NewFileStore(*cacheDir, *deviceID),
		cart.NewAPIStore(*baseURL, token),
		logger,
	)
	engine.Hydrate(ctx)

	for _, spec := range items {
		product, err := fetchProduct(ctx, *baseURL, spec.ProductID)
		if err != nil {
			logger.Fatalf("product %s: %v", spec.ProductID, err)
		}
		addLine(ctx, engine, product, spec)
	}

	if *discount != "" {
		if engine.ApplyDiscount(*discount) {
			logger.Printf("discount %s applied", engine.DiscountCode())
		} else {
			logger.Printf("discount code %q not recognized", *discount)
		}
	}

	snap := engine.Snapshot()
	fmt.Printf("cart: %d item(s), subtotal %s, discount %s, total %s\n",
		snap.TotalItems, cents(snap.SubtotalCents), cents(snap.DiscountCents), cents(snap.TotalCents))

	contactEmail := *shipEmail
	if contactEmail == "" {
		contactEmail = *email
	}
	form := checkout.ShippingForm{
		FullName:   *shipName,
		Email:      contactEmail,
		Street:     *shipStreet,
		City:       *shipCity,
		PostalCode: *shipPostal,
		Country:    *shipCountry,
	}

	var card *checkout.Card
	payMethod := domain.PaymentMethod(*method)
	if payMethod == domain.PaymentCard {
		card = &checkout.Card{Number: *cardNumber, Expiry: *cardExpiry, CVV: *cardCVV}
	}

	flow := checkout.NewFlow(engine,
		checkout.NewSimulator(cfg.PaymentDelay, cfg.PaymentSuccessRate),
		checkout.NewAPIClient(*baseURL, token),
		cfg.RedirectDelay,
	)
	res, err := flow.Submit(ctx, form, payMethod, card)
	if err != nil {
		logger.Fatalf("checkout: %v", err)
	}

	fmt.Printf("order placed: %s (id %s)\n", res.OrderNumber, res.OrderID)
	time.Sleep(res.RedirectAfter)
}

// addLine puts spec.Quantity units of one product/size line in the cart.
// Repeated adds land on the exact line, so two specs for the same product in
// different sizes stay independent.
func addLine(ctx context.Context, engine *cart.Engine, product *domain.Product, spec itemSpec) {
	line := domain.CartLine{
		ProductID:  product.ID,
		Name:       product.Name,
		PriceCents: product.PriceCents,
		Image:      product.Image,
		Size:       spec.Size,
	}
	for i := 0; i < spec.Quantity; i++ {
		engine.AddItem(ctx, line)
	}
}

func login(ctx context.Context, baseURL, email, password string) (token, customerID string, err error) {
	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(baseURL, "/")+"/v1/login", strings.NewReader(body))
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var out struct {
		Customer    *domain.Customer `json:"customer"`
		AccessToken string           `json:"accessToken"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", "", err
	}
	if out.AccessToken == "" || out.Customer == nil {
		return "", "", errors.New("malformed login response")
	}
	return out.AccessToken, out.Customer.ID, nil
}

func fetchProduct(ctx context.Context, baseURL, id string) (*domain.Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		strings.TrimRight(baseURL, "/")+"/v1/products/"+id, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var out struct {
		Product *domain.Product `json:"product"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if out.Product == nil {
		return nil, errors.New("malformed product response")
	}
	return out.Product, nil
}

func cents(v int64) string {
	return fmt.Sprintf("$%d.%02d", v/100, v%100)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func defaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "."
	}
	return dir + "/genwear"
}
