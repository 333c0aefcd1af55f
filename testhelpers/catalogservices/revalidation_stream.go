package catalogservices

import (
	"net/http"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/launchdarkly/go-test-helpers/v3/httphelpers"
)

// RevalidationStreamPath is the request path of the revalidation event stream.
const RevalidationStreamPath = "/revalidate/stream"

// RevalidationStreamHandler creates an HTTP handler that serves a revalidation event stream at
// RevalidationStreamPath. Use the returned SSEStreamControl to push events.
//
//	handler, stream := catalogservices.RevalidationStreamHandler()
//	server := httptest.NewServer(handler)
//	stream.Send(catalogservices.RevalidateEvent([]string{"product:1"}, nil))
func RevalidationStreamHandler() (http.Handler, httphelpers.SSEStreamControl) {
	handler, stream := httphelpers.SSEHandler(nil)
	return httphelpers.HandlerForPath(RevalidationStreamPath, httphelpers.HandlerForMethod("GET", handler, nil), nil),
		stream
}

// RevalidateEvent returns a "revalidate" event naming the tags and cache keys to invalidate.
func RevalidateEvent(tags []string, keys []string) httphelpers.SSEEvent {
	w := jwriter.NewWriter()
	obj := w.Object()
	writeStrings(obj.Name("tags"), tags)
	writeStrings(obj.Name("keys"), keys)
	obj.End()
	return httphelpers.SSEEvent{Event: "revalidate", Data: string(w.Bytes())}
}

func writeStrings(w *jwriter.Writer, values []string) {
	arr := w.Array()
	for _, v := range values {
		w.String(v)
	}
	arr.End()
}
