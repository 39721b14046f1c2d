package catalogue

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/IshaanNene/ShelfGoat/internal/browser/browsertest"
	"github.com/IshaanNene/ShelfGoat/internal/config"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

const (
	entryURL   = "https://shop.test/catalogue"
	listingURL = "https://shop.test/catalogue/listing"
)

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Catalogue.URL = entryURL
	cfg.Catalogue.Postcode = "3000"
	cfg.Selectors.PostcodeInput = "#postcode"
	cfg.Selectors.FirstSuggestion = "#suggestion-0"
	cfg.Selectors.ReadCatalogue = ".read-catalogue"
	cfg.Selectors.MenuTrigger = "#nav-button"
	cfg.Selectors.MenuItem = ".nav-link"

	cfg.Timeouts.Bootstrap = time.Second
	cfg.Timeouts.Menu = time.Second
	cfg.Timeouts.Products = time.Second
	cfg.Timeouts.Pagination = time.Second
	cfg.Timeouts.Settle = 500 * time.Millisecond
	cfg.Timeouts.StablePeriod = 0
	return cfg
}

// tile renders a product container with every default field populated.
func tile(title, price string) string {
	return fmt.Sprintf(`<div class="sf-item-content">
  <h3 class="sf-item-heading">%s</h3>
  <span class="sf-pricedisplay">%s</span>
  <span class="sf-optionsuffix"> each </span>
  <span class="sf-saleoptiontext">Save</span>
  <span class="sf-regprice">Was $9.00</span>
  <span class="sf-regoptiondesc">per kg</span>
  <span class="sale-dates">Offer valid until Sunday</span>
  <span class="sf-comparativeText">$1.00 / 100g</span>
  <span class="sf-saleoptiondesc">Half price</span>
</div>`, title, price)
}

const menu = `<button id="nav-button" data-reveals-menu>Browse</button>
<nav data-hover-menu>
  <a class="nav-link" href="/c/fruit">Fruit &amp; Veg</a>
  <a class="nav-link" href="/c/dairy"> Dairy </a>
  <a class="nav-link" href="/c/empty"></a>
</nav>`

func page(body string) string {
	return "<html><body>" + menu + body + "</body></html>"
}

func nextLink(href string) string {
	return fmt.Sprintf(`<a aria-label="Next page" href="%s">Next</a>`, href)
}

// listingPage renders n tiles titled "<prefix> 1..n" plus an optional next link.
func listingPage(prefix string, n int, next string) string {
	var b strings.Builder
	for i := 1; i <= n; i++ {
		b.WriteString(tile(fmt.Sprintf("%s %d", prefix, i), fmt.Sprintf("$%d.00", i)))
	}
	if next != "" {
		b.WriteString(nextLink(next))
	}
	return page(b.String())
}

// catalogueSite serves two categories of two pages with three products each.
func catalogueSite() map[string]string {
	return map[string]string{
		entryURL: `<html><body>
  <input id="postcode">
  <ul><li id="suggestion-0">3000 Melbourne</li></ul>
  <a class="read-catalogue" href="/catalogue/listing">Read catalogue</a>
</body></html>`,
		listingURL: page("<p>Pick a category</p>"),
		"https://shop.test/c/fruit":        listingPage("Apple", 3, "/c/fruit?page=2"),
		"https://shop.test/c/fruit?page=2": listingPage("Banana", 3, ""),
		"https://shop.test/c/dairy":        listingPage("Milk", 3, "/c/dairy?page=2"),
		"https://shop.test/c/dairy?page=2": listingPage("Cheese", 3, ""),
	}
}

// lazyEntry is an entry page whose read-catalogue link, like a real browser,
// leaves the session on the entry URL until the next element wait.
const lazyEntry = `<html><body>
  <input id="postcode">
  <ul><li id="suggestion-0">3000 Melbourne</li></ul>
  <a class="read-catalogue" data-lazy href="/catalogue/listing">Read catalogue</a>
</body></html>`

func newSite() *browsertest.Session {
	return newSiteFrom(catalogueSite())
}

func newSiteFrom(pages map[string]string) *browsertest.Session {
	return browsertest.NewSession(pages)
}
