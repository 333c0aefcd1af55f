package ondemand

import (
	"errors"

	"github.com/launchdarkly/go-jsonstream/v3/jreader"
)

const revalidateEvent = "revalidate"

// RevalidateData is the parsed data of a "revalidate" event. At least one of the two lists must
// be present.
//
// Example JSON representation:
//
//	{
//	  "tags": ["products", "product:3"],
//	  "keys": ["https://fakestoreapi.com/products/3"]
//	}
type RevalidateData struct {
	Tags []string
	Keys []string
}

func parseRevalidateData(data []byte) (RevalidateData, error) {
	var ret RevalidateData
	found := false
	r := jreader.NewReader(data)
	for obj := r.Object(); obj.Next(); {
		switch string(obj.Name()) {
		case "tags":
			ret.Tags = readStrings(&r)
			found = true
		case "keys":
			ret.Keys = readStrings(&r)
			found = true
		}
	}
	if err := r.Error(); err != nil {
		return RevalidateData{}, err
	}
	if !found {
		return RevalidateData{}, errors.New(`missing required property "tags" or "keys"`)
	}
	return ret, nil
}

func readStrings(r *jreader.Reader) []string {
	var ret []string
	for arr := r.ArrayOrNull(); arr.Next(); {
		ret = append(ret, r.String())
	}
	return ret
}
