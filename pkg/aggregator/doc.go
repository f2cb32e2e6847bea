// Package aggregator runs the character request pipeline: make sure the
// snapshot is fresh, seed the film title cache when it is empty, select the
// requested page, enrich it and attach pagination links.
//
// Example usage:
//
//	svc := aggregator.NewService(store, orchestrator, aggregator.Options{PageSize: 10})
//	resp, err := svc.Characters(ctx, aggregator.ParseQuery(r.URL.Query()))
//	if errors.Is(err, snapshot.ErrNoSnapshot) {
//		// 503 {"error":"Failed to load characters."}
//	}
package aggregator
