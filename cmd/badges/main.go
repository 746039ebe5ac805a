package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/fortuna/footyguess/internal/identity"
	"github.com/fortuna/footyguess/internal/ingest/sportsdb"
	"github.com/fortuna/footyguess/internal/ingest/wiki"
)

const (
	appName    = "footyguess-badges"
	appVersion = "1.0.0"
)

func main() {
	log.Printf("=== %s v%s ===", appName, appVersion)

	var (
		apiBase   = flag.String("api", getEnv("SPORTSDB_API_BASE", sportsdb.BaseURL), "TheSportsDB API base URL")
		aliasFile = flag.String("aliases", getEnv("ALIAS_FILE", ""), "YAML file with extra aliases")
		namesFile = flag.String("file", "", "File with one team name per line (- for stdin)")
		useWiki   = flag.Bool("wiki", false, "Fall back to Wikipedia crests")
		backoff   = flag.Duration("backoff", time.Second, "Wait after a rate-limited lookup")
		timeout   = flag.Duration("timeout", 20*time.Second, "Time limit per team")
		export    = flag.String("export", "", "Write the missing-team report to this file")
		terms     = flag.Bool("terms", false, "Only print the search terms for each name")
	)

	flag.Parse()

	names, err := collectNames(flag.Args(), *namesFile)
	if err != nil {
		log.Fatalf("read names: %v", err)
	}
	if len(names) == 0 {
		log.Fatalf("Pass team names as arguments or with --file")
	}

	aliases := identity.DefaultAliases()
	if *aliasFile != "" {
		overrides, err := identity.LoadAliasFile(*aliasFile)
		if err != nil {
			log.Fatalf("load aliases: %v", err)
		}
		aliases = aliases.Merge(overrides)
	}

	retry := identity.DefaultRetryPolicy()
	retry.Backoff = *backoff
	retry.Timeout = *timeout

	opts := identity.Options{
		Aliases: aliases,
		Retry:   &retry,
		Logger:  log.New(io.Discard, "", 0),
	}
	if *useWiki {
		opts.Fallback = wiki.NewClient("")
	}
	resolver := identity.NewResolver(sportsdb.New(*apiBase), opts)

	if *terms {
		for _, name := range names {
			canonical := identity.Normalize(name)
			fmt.Printf("%s: %s\n", canonical, strings.Join(resolver.SearchTerms(canonical), " | "))
		}
		return
	}

	ctx := context.Background()
	for _, name := range names {
		fmt.Println(formatArt(resolver.TeamArt(ctx, name, "")))
	}

	ledger := resolver.Ledger()
	if ledger.Len() == 0 {
		log.Printf("✓ All %d teams resolved", len(names))
		return
	}

	report := ledger.Export(time.Now())
	fmt.Println()
	fmt.Print(report)

	if *export != "" {
		if err := os.WriteFile(*export, []byte(report), 0o644); err != nil {
			log.Fatalf("write report: %v", err)
		}
		log.Printf("Missing-team report written to %s", *export)
	}
}

// formatArt renders one result line; placeholders show their initials, not the data URI.
func formatArt(art identity.Art) string {
	if art.Placeholder {
		return fmt.Sprintf("✗ %-30s placeholder %s", art.CanonicalName, art.Initials)
	}
	return fmt.Sprintf("✓ %-30s %s", art.CanonicalName, art.BadgeURL)
}

// collectNames merges positional names with those read from path.
func collectNames(args []string, path string) ([]string, error) {
	names := append([]string(nil), args...)
	if path == "" {
		return names, nil
	}

	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" && !strings.HasPrefix(line, "#") {
			names = append(names, line)
		}
	}
	return names, scanner.Err()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
