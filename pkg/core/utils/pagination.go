package utils

// FetchAllPages drains a paginated listing call. The fetch function receives the
// continuation token returned by the previous page (nil on the first call) and
// returns one page of items together with the token of the next page, if any.
// Items are concatenated in the order the pages produced them.
func FetchAllPages[T any](fetch func(nextToken *string) ([]T, *string, error)) ([]T, error) {
	items := make([]T, 0)
	var nextToken *string
	for {
		pageItems, token, err := fetch(nextToken)
		if err != nil {
			return nil, err
		}
		items = append(items, pageItems...)

		if token == nil {
			return items, nil
		}
		nextToken = token
	}
}

// Result struct can be used for passing data on channels
type Result[T any] struct {
	Data T
	Err  error
}
