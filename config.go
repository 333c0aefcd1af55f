package isr

import (
	"context"
	"time"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"

	"github.com/mohsenKh75/next-patterns/interfaces"
	"github.com/mohsenKh75/next-patterns/isrhooks"
)

// DefaultRevalidate is the default value for Config.Revalidate.
const DefaultRevalidate = 3600 * time.Second

// DefaultListRevalidate is the default value for Config.ListRevalidate.
const DefaultListRevalidate = 86400 * time.Second

// DefaultPregenerateLimit is the default value for Config.PregenerateLimit.
const DefaultPregenerateLimit = 20

// ID is the set of types that can identify an item. Identifiers are rendered into route
// parameters with their default string formatting.
type ID interface {
	~string | ~int | ~int32 | ~int64 | ~uint | ~uint32 | ~uint64
}

// ListFetcher fetches every item for which a detail page could exist.
type ListFetcher[TItem any] func(ctx context.Context, opts interfaces.FetchOptions) ([]TItem, error)

// DetailFetcher fetches the detail page payload for one identifier.
type DetailFetcher[TID ID, TData any] func(ctx context.Context, id TID, opts interfaces.FetchOptions) (TData, error)

// Config describes one "list + detail" route.
//
// FetchAll, GetID, ParamName and FetchByID are required; a Config missing any of them fails the
// first time the corresponding Handle method is used. Every other field is optional, and the zero
// value of each selects the default described on the field.
type Config[TItem any, TID ID, TData any] struct {
	// FetchAll returns the items to pre-render, in the order they should be pre-rendered. It is
	// called with Revalidate set to ListRevalidate.
	FetchAll ListFetcher[TItem]

	// GetID projects an item onto its identifier. It must not fail.
	GetID func(TItem) TID

	// ParamName is the route parameter that carries the identifier, such as "productId".
	ParamName string

	// FetchByID returns the detail payload for an identifier. It is called with Revalidate set to
	// the Revalidate field of this Config.
	FetchByID DetailFetcher[TID, TData]

	// CacheLife is the cache lifetime profile of the detail page, if any. It is passed along to
	// both fetch functions and exposed by Handle.CacheLife.
	CacheLife interfaces.CacheLifeUnit

	// Revalidate is the revalidation interval of detail fetches. If zero, DefaultRevalidate is used.
	Revalidate time.Duration

	// ListRevalidate is the revalidation interval of the list fetch. If zero,
	// DefaultListRevalidate is used.
	ListRevalidate time.Duration

	// PregenerateLimit is the maximum number of identifiers returned by GenerateStaticParams. If
	// undefined, DefaultPregenerateLimit is used. A negative value (see Unlimited) means no limit.
	PregenerateLimit ldvalue.OptionalInt

	// ValidateID, if set, is called with the raw route parameter. Returning false produces a
	// not-found outcome and TransformID is not called.
	ValidateID func(string) bool

	// TransformID, if set, converts the raw route parameter into an identifier. Returning an error
	// produces a not-found outcome. If nil, the raw string is used as the identifier, which
	// requires TID to have a string underlying type.
	TransformID func(string) (TID, error)

	// Loggers is used for reporting fetch failures. The zero value logs with the ldlog defaults.
	Loggers ldlog.Loggers

	// Hooks are run before and after every fetch, in order before the fetch and in reverse order
	// after it.
	Hooks []isrhooks.Hook
}

// Limit returns a PregenerateLimit value of n.
func Limit(n int) ldvalue.OptionalInt {
	return ldvalue.NewOptionalInt(n)
}

// Unlimited returns a PregenerateLimit value that disables truncation of the static params.
func Unlimited() ldvalue.OptionalInt {
	return ldvalue.NewOptionalInt(-1)
}
