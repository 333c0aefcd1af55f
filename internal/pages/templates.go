package pages

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed templates/*.html
var templatesFS embed.FS

type navItem struct {
	Href        string
	Label       string
	Description string
}

var navigation = []navItem{
	{Href: "/", Label: "Dashboard", Description: "Overview of your workspace"},
	{Href: "/products", Label: "Products", Description: "Manage your product catalog"},
}

// prices are in US dollars
var pricePrinter = message.NewPrinter(language.AmericanEnglish)

var templateFuncs = template.FuncMap{
	"price":       formatPrice,
	"productPath": productPath,
}

func formatPrice(price float64) string {
	return pricePrinter.Sprintf("$%.2f", price)
}

type pageTemplates struct {
	home     *template.Template
	products *template.Template
	product  *template.Template
	notFound *template.Template
}

func parseTemplates() (pageTemplates, error) {
	var ret pageTemplates
	for _, t := range []struct {
		target **template.Template
		file   string
	}{
		{&ret.home, "home.html"},
		{&ret.products, "products.html"},
		{&ret.product, "product.html"},
		{&ret.notFound, "not_found.html"},
	} {
		parsed, err := template.New("layout.html").Funcs(templateFuncs).
			ParseFS(templatesFS, "templates/layout.html", "templates/"+t.file)
		if err != nil {
			return pageTemplates{}, fmt.Errorf("parsing page template %s: %w", t.file, err)
		}
		*t.target = parsed
	}
	return ret, nil
}

// layoutData is embedded in the data of every page.
type layoutData struct {
	Title      string
	Navigation []navItem
}

func newLayoutData(title string) layoutData {
	return layoutData{Title: title, Navigation: navigation}
}

func render(t *template.Template, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
