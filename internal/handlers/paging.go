package handlers

// collectAllPages drains a paginated repository listing. fetch returns one
// page plus the total row count; collection stops once every reported row has
// been gathered or a page comes back empty.
func collectAllPages[T any](limit int, fetch func(page, limit int) ([]T, int64, error)) ([]T, error) {
	var all []T
	for page := 1; ; page++ {
		items, total, err := fetch(page, limit)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
		if int64(len(all)) >= total || len(items) == 0 {
			return all, nil
		}
	}
}
