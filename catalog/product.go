package catalog

import (
	"github.com/launchdarkly/go-jsonstream/v3/jreader"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
)

// Product is one catalog entry, in the shape returned by the catalog REST API:
//
//	{
//	  "id": 1,
//	  "title": "Backpack",
//	  "price": 109.95,
//	  "description": "Your perfect pack for everyday use",
//	  "category": "men's clothing",
//	  "image": "https://fakestoreapi.com/img/81fPKd-2AYL._AC_SL1500_.jpg",
//	  "rating": { "rate": 3.9, "count": 120 }
//	}
//
// Unknown properties are ignored when reading.
type Product struct {
	ID          int
	Title       string
	Price       float64
	Description string
	Category    string
	Image       string
	Rating      Rating
}

// Rating is the aggregated review score of a Product.
type Rating struct {
	Rate  float64
	Count int
}

// ReadFromJSONReader reads a Product from a JSON object.
func (p *Product) ReadFromJSONReader(r *jreader.Reader) {
	var ret Product
	for obj := r.Object(); obj.Next(); {
		switch string(obj.Name()) {
		case "id":
			ret.ID = r.Int()
		case "title":
			ret.Title = r.String()
		case "price":
			ret.Price = r.Float64()
		case "description":
			ret.Description, _ = r.StringOrNull()
		case "category":
			ret.Category, _ = r.StringOrNull()
		case "image":
			ret.Image, _ = r.StringOrNull()
		case "rating":
			ret.Rating.ReadFromJSONReader(r)
		}
	}
	if r.Error() == nil {
		*p = ret
	}
}

// WriteToJSONWriter writes a Product as a JSON object.
func (p Product) WriteToJSONWriter(w *jwriter.Writer) {
	obj := w.Object()
	obj.Name("id").Int(p.ID)
	obj.Name("title").String(p.Title)
	obj.Name("price").Float64(p.Price)
	obj.Name("description").String(p.Description)
	obj.Name("category").String(p.Category)
	obj.Name("image").String(p.Image)
	p.Rating.WriteToJSONWriter(obj.Name("rating"))
	obj.End()
}

// MarshalJSON implements json.Marshaler.
func (p Product) MarshalJSON() ([]byte, error) {
	return jwriter.MarshalJSONWithWriter(p)
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Product) UnmarshalJSON(data []byte) error {
	return jreader.UnmarshalJSONWithReader(data, p)
}

// ReadFromJSONReader reads a Rating from a JSON object. A null rating is read as the zero value.
func (rt *Rating) ReadFromJSONReader(r *jreader.Reader) {
	var ret Rating
	for obj := r.ObjectOrNull(); obj.Next(); {
		switch string(obj.Name()) {
		case "rate":
			ret.Rate = r.Float64()
		case "count":
			ret.Count = r.Int()
		}
	}
	*rt = ret
}

// WriteToJSONWriter writes a Rating as a JSON object.
func (rt Rating) WriteToJSONWriter(w *jwriter.Writer) {
	obj := w.Object()
	obj.Name("rate").Float64(rt.Rate)
	obj.Name("count").Int(rt.Count)
	obj.End()
}
