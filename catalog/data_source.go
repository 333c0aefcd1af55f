package catalog

import (
	"context"
	"errors"

	"github.com/mohsenKh75/next-patterns/interfaces"
)

// ErrUnknownProduct is returned by a DataSource that has no product with the requested ID.
var ErrUnknownProduct = errors.New("unknown product")

// DataSource is where the pages get their products from.
//
// The method signatures match isr.ListFetcher and isr.DetailFetcher, so that the methods of a
// DataSource can be used directly as the fetch functions of an isr.Config.
type DataSource interface {
	// FetchProducts returns every product, in catalog order.
	FetchProducts(ctx context.Context, opts interfaces.FetchOptions) ([]Product, error)

	// FetchProductByID returns one product.
	FetchProductByID(ctx context.Context, id int, opts interfaces.FetchOptions) (Product, error)
}

// ProductID returns the ID of a product. It is the GetID function of the product detail route.
func ProductID(p Product) int {
	return p.ID
}
