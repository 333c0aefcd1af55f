package catalog

import (
	"github.com/launchdarkly/go-jsonstream/v3/jreader"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
)

// ParseProducts parses a JSON array of products.
func ParseProducts(data []byte) ([]Product, error) {
	r := jreader.NewReader(data)
	ret := ReadProducts(&r)
	if err := r.Error(); err != nil {
		return nil, err
	}
	return ret, nil
}

// ParseProduct parses a single JSON product object.
func ParseProduct(data []byte) (Product, error) {
	var p Product
	r := jreader.NewReader(data)
	p.ReadFromJSONReader(&r)
	if err := r.Error(); err != nil {
		return Product{}, err
	}
	if err := r.RequireEOF(); err != nil {
		return Product{}, err
	}
	return p, nil
}

// ReadProducts reads a JSON array of products. Errors are reported through the Reader.
func ReadProducts(r *jreader.Reader) []Product {
	ret := []Product{}
	for arr := r.Array(); arr.Next(); {
		var p Product
		p.ReadFromJSONReader(r)
		ret = append(ret, p)
	}
	return ret
}

// MarshalProducts serializes products as a JSON array.
func MarshalProducts(products []Product) ([]byte, error) {
	w := jwriter.NewWriter()
	arr := w.Array()
	for _, p := range products {
		p.WriteToJSONWriter(&w)
	}
	arr.End()
	return w.Bytes(), w.Error()
}
