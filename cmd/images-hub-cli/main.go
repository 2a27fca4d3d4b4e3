// Terminal pager for a running images-hub server: runs one search and keeps
// loading pages, printing the merged per-provider lists as they grow.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/williamjxj/images-hub/internal/hub"
	"github.com/williamjxj/images-hub/internal/hubclient"
)

func main() {
	serverURL := flag.String("server", "http://localhost:8081", "images-hub server base URL")
	query := flag.String("q", "", "search query")
	providersArg := flag.String("providers", "", "comma-separated providers (default: all)")
	user := flag.String("user", "", "basic auth user")
	pass := flag.String("pass", "", "basic auth password")
	perPage := flag.Int("per-page", 20, "results per page per provider")
	pages := flag.Int("pages", 1, "number of pages to load")
	flag.Parse()

	if strings.TrimSpace(*query) == "" {
		log.Fatalln("-q is required")
	}

	opts := []hubclient.Option{hubclient.WithPerPage(*perPage)}
	if *user != "" {
		opts = append(opts, hubclient.WithBasicAuth(*user, *pass))
	}
	sess := hubclient.NewSession(*serverURL, opts...)

	var providers []hub.Provider
	for _, name := range strings.Split(*providersArg, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		p, ok := hub.ParseProvider(name)
		if !ok {
			log.Println("Ignoring unknown provider", name)
			continue
		}
		providers = append(providers, p)
	}

	ctx := context.Background()
	if err := sess.Search(ctx, *query, providers...); err != nil {
		log.Fatalln("Search failed:", err)
	}
	printResults(sess)

	for n := 1; n < *pages && sess.HasMore(); n++ {
		if err := sess.LoadMore(ctx); err != nil {
			log.Println("Load more failed:", err)
			if err := sess.Retry(ctx); err != nil {
				log.Fatalln("Retry failed:", err)
			}
		}
		printResults(sess)
	}
}

func printResults(sess *hubclient.Session) {
	res := sess.Results()
	if res == nil {
		return
	}
	fmt.Printf("== %q page %d: %d total results, more=%v\n",
		res.Query, sess.CurrentPage(), res.TotalResults, res.HasMore)
	for _, pr := range res.Providers {
		if pr.Error != "" {
			fmt.Printf("  %-8s ERROR %s\n", pr.Provider, pr.Error)
			continue
		}
		fmt.Printf("  %-8s %d loaded of %d (page %d/%d)\n",
			pr.Provider, len(pr.Images), pr.Total, pr.CurrentPage, pr.TotalPages)
		for _, img := range pr.Images {
			fmt.Printf("    %-14s %4dx%-4d %s\n", img.ID, img.Width, img.Height, img.Attribution)
		}
	}
	for name, msg := range res.Errors {
		log.Printf("Provider %s degraded: %s", name, msg)
	}
}
