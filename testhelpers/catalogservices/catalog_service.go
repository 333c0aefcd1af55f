package catalogservices

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/launchdarkly/go-test-helpers/v3/httphelpers"

	"github.com/mohsenKh75/next-patterns/catalog"
)

// ProductsPath is the request path of the product list.
const ProductsPath = "/products"

// SampleProducts returns a small fixed catalog.
func SampleProducts() []catalog.Product {
	return []catalog.Product{
		{ID: 1, Title: "Fjallraven Backpack", Price: 109.95, Category: "men's clothing",
			Description: "Your perfect pack for everyday use", Image: "https://example.com/img/1.jpg",
			Rating: catalog.Rating{Rate: 3.9, Count: 120}},
		{ID: 2, Title: "Slim Fit T-Shirt", Price: 22.3, Category: "men's clothing",
			Description: "Slim-fitting style", Image: "https://example.com/img/2.jpg",
			Rating: catalog.Rating{Rate: 4.1, Count: 259}},
		{ID: 3, Title: "Cotton Jacket", Price: 55.99, Category: "men's clothing",
			Description: "Great outerwear jackets", Image: "https://example.com/img/3.jpg",
			Rating: catalog.Rating{Rate: 4.7, Count: 500}},
	}
}

// CatalogServiceHandler creates an HTTP handler that mimics the catalog REST API for the given
// products: GET /products returns all of them, and GET /products/{id} returns one. Like the real
// API, an unknown ID gets a 200 response with an empty body. Other paths get a 404, and other
// methods a 405.
func CatalogServiceHandler(products []catalog.Product) http.Handler {
	listBody, _ := catalog.MarshalProducts(products)
	byID := make(map[string][]byte, len(products))
	for _, p := range products {
		data, _ := p.MarshalJSON()
		byID[strconv.Itoa(p.ID)] = data
	}
	jsonHeaders := http.Header{"Content-Type": {"application/json"}}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == ProductsPath {
			httphelpers.HandlerWithResponse(http.StatusOK, jsonHeaders, listBody).ServeHTTP(w, r)
			return
		}
		id, ok := strings.CutPrefix(r.URL.Path, ProductsPath+"/")
		if !ok || id == "" || strings.Contains(id, "/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		httphelpers.HandlerWithResponse(http.StatusOK, jsonHeaders, byID[id]).ServeHTTP(w, r)
	})
	return httphelpers.HandlerForMethod("GET", handler, nil)
}
