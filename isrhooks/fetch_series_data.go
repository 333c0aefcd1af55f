package isrhooks

// FetchSeriesData is an immutable data type used for passing implementation-specific data between
// stages in the fetch series.
type FetchSeriesData struct {
	data map[string]any
}

// FetchSeriesDataBuilder should be used by hook implementers to append data.
type FetchSeriesDataBuilder struct {
	data map[string]any
}

// EmptyFetchSeriesData returns empty series data. This function is not intended for use by hook
// implementors. Hook implementations should always use NewFetchSeriesBuilder.
func EmptyFetchSeriesData() FetchSeriesData {
	return FetchSeriesData{
		data: make(map[string]any),
	}
}

// Get gets the value associated with the given key. If there is no value, then ok will be false.
func (b FetchSeriesData) Get(key string) (value any, ok bool) {
	val, ok := b.data[key]
	return val, ok
}

// AsAnyMap returns a copy of the contents of the series data as a map.
func (b FetchSeriesData) AsAnyMap() map[string]any {
	ret := make(map[string]any, len(b.data))
	for key, value := range b.data {
		ret[key] = value
	}
	return ret
}

// NewFetchSeriesBuilder creates a FetchSeriesDataBuilder based on the provided FetchSeriesData.
//
//	func (h MyHook) BeforeFetch(ctx context.Context, seriesContext isrhooks.FetchSeriesContext,
//		data isrhooks.FetchSeriesData) (isrhooks.FetchSeriesData, error) {
//		return isrhooks.NewFetchSeriesBuilder(data).Set("started", time.Now()).Build(), nil
//	}
func NewFetchSeriesBuilder(data FetchSeriesData) *FetchSeriesDataBuilder {
	newData := make(map[string]any, len(data.data))
	for k, v := range data.data {
		newData[k] = v
	}
	return &FetchSeriesDataBuilder{
		data: newData,
	}
}

// Set sets the given key to the given value.
func (b *FetchSeriesDataBuilder) Set(key string, value any) *FetchSeriesDataBuilder {
	b.data[key] = value
	return b
}

// Merge copies the keys and values from the given map to the builder.
func (b *FetchSeriesDataBuilder) Merge(newValues map[string]any) *FetchSeriesDataBuilder {
	for k, v := range newValues {
		b.data[k] = v
	}
	return b
}

// Build builds a FetchSeriesData based on the contents of the builder.
func (b *FetchSeriesDataBuilder) Build() FetchSeriesData {
	newData := make(map[string]any, len(b.data))
	for k, v := range b.data {
		newData[k] = v
	}
	return FetchSeriesData{
		data: newData,
	}
}
