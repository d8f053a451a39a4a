// Package vitigate fetches the Embrapa vitivinicultura datasets and returns
// them as typed records.
//
// Quick start:
//
//	g, err := vitigate.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	records, err := g.Fetch(ctx, "processamento", "viniferas")
//	if err != nil {
//	    var verr *vitigate.Error
//	    if errors.As(err, &verr) && verr.Kind == vitigate.NotFound { ... }
//	}
//	fmt.Println(records[0].Values["ano"]) // int64
//
// Each call downloads the upstream CSV afresh; nothing is cached. A Gateway
// is safe for concurrent use.
package vitigate
