// Package isr wires static path generation, route identifier extraction, and revalidated data
// fetching together for a "list + detail" page pattern.
//
// A Handle is built once per route definition from a Config:
//
//	products := isr.New(isr.Config[catalog.Product, int, catalog.Product]{
//	    FetchAll:    source.FetchProducts,
//	    GetID:       func(p catalog.Product) int { return p.ID },
//	    ParamName:   "productId",
//	    FetchByID:   source.FetchProductByID,
//	    CacheLife:   interfaces.CacheLifeHours,
//	    TransformID: strconv.Atoi,
//	})
//
// The handle's GenerateStaticParams method enumerates the detail pages to pre-render, ExtractID
// turns route parameters into a validated identifier, and FetchData loads the page payload. Both
// ExtractID and FetchData report every failure as a not-found outcome (see ErrNotFound), so that
// the routing layer only ever has to choose between rendering the data and rendering a 404 page.
//
// The handle does not cache anything itself. It passes revalidation intervals and the cache
// lifetime unit to the fetch functions in interfaces.FetchOptions, and the fetch implementation
// applies them.
package isr
