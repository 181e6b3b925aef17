// Command download-kg fetches a knowledge-graph dataset index page, scrapes
// the triple-file links out of its HTML, and downloads them into a local
// directory ready for loading.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/net/html"
)

func main() {
	var (
		indexURL = flag.String("index", "", "Dataset index page URL (required)")
		outDir   = flag.String("out", "testdata/kg", "Output directory")
		suffixes = flag.String("suffixes", ".tsv,.txt,.nt", "Comma-separated link suffixes to download")
	)
	flag.Parse()

	if *indexURL == "" {
		log.Fatal("--index required")
	}

	base, err := url.Parse(*indexURL)
	if err != nil {
		log.Fatal("Bad index URL:", err)
	}

	log.Printf("Fetching dataset index %s...", *indexURL)
	links, err := scrapeLinks(*indexURL, strings.Split(*suffixes, ","))
	if err != nil {
		log.Fatal("Failed to scrape index:", err)
	}
	if len(links) == 0 {
		log.Fatal("No matching dataset links found on index page")
	}
	log.Printf("Found %d dataset files", len(links))

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		log.Fatal("Failed to create output directory:", err)
	}

	downloaded := 0
	for _, link := range links {
		ref, err := url.Parse(link)
		if err != nil {
			log.Printf("Skipping bad link %q: %v", link, err)
			continue
		}
		abs := base.ResolveReference(ref)
		dest := filepath.Join(*outDir, path.Base(abs.Path))

		if err := downloadFile(abs.String(), dest); err != nil {
			log.Printf("Failed to download %s: %v", abs, err)
			continue
		}
		downloaded++
		log.Printf("Downloaded %s", dest)

		// Be nice to the host
		time.Sleep(100 * time.Millisecond)
	}

	log.Printf("✓ Successfully downloaded %d/%d files to %s", downloaded, len(links), *outDir)
}

// scrapeLinks returns the href of every anchor on the page whose path ends
// with one of the given suffixes.
func scrapeLinks(pageURL string, suffixes []string) ([]string, error) {
	resp, err := http.Get(pageURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, err
	}

	var links []string
	seen := make(map[string]bool)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key != "href" {
					continue
				}
				if matchesSuffix(attr.Val, suffixes) && !seen[attr.Val] {
					seen[attr.Val] = true
					links = append(links, attr.Val)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return links, nil
}

func matchesSuffix(href string, suffixes []string) bool {
	u, err := url.Parse(href)
	if err != nil {
		return false
	}
	for _, s := range suffixes {
		s = strings.TrimSpace(s)
		if s != "" && strings.HasSuffix(u.Path, s) {
			return true
		}
	}
	return false
}

func downloadFile(srcURL, dest string) error {
	resp, err := http.Get(srcURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		os.Remove(dest)
		return err
	}
	return nil
}
