package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/urfave/cli/v2"

	"github.com/ruteri/sites-portal-backend/api/clients"
)

var flags []cli.Flag = []cli.Flag{
	&cli.StringFlag{
		Name:  "portal-addr",
		Value: "http://127.0.0.1:5000",
		Usage: "portal server address to request",
	},
	&cli.StringFlag{
		Name:     "url",
		Required: true,
		Usage:    "site URL to fetch, e.g. https://demo.wal.app/",
	},
	&cli.StringFlag{
		Name:  "output-dir",
		Usage: "write fetched files to this directory instead of listing them",
	},
	&cli.BoolFlag{
		Name:  "resource",
		Usage: "fetch only the file addressed by the URL path and print it",
	},
}

const usage string = `Fetches a site through a portal server.

Without --output-dir the files are listed with their sizes. Files that failed
are listed with their error.`

func main() {
	app := &cli.App{
		Name:  "portal-client",
		Usage: usage,
		Flags: flags,
		Action: func(cCtx *cli.Context) error {
			client := clients.NewPortalClient(cCtx.String("portal-addr"), nil)
			siteURL := cCtx.String("url")

			if cCtx.Bool("resource") {
				body, _, err := client.FetchResource(cCtx.Context, siteURL)
				if err != nil {
					return err
				}
				_, err = os.Stdout.Write(body)
				return err
			}

			return fetchSite(cCtx.Context, client, siteURL, cCtx.String("output-dir"))
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func fetchSite(ctx context.Context, client *clients.PortalClient, siteURL, outputDir string) error {
	resp, err := client.FetchBlobs(ctx, siteURL)
	if err != nil {
		return err
	}

	if len(resp.Data.Results) == 0 {
		fmt.Println(resp.Message)
		return nil
	}
	fmt.Printf("%s: site %s on %s at %s\n", resp.Message, resp.Data.ObjectID, resp.Data.Network, resp.Data.TimeStamp)

	if outputDir != "" {
		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			return err
		}
	}

	names := make([]string, 0, len(resp.Data.Results))
	for name := range resp.Data.Results {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		file := resp.Data.Results[name]
		if file.Error != "" || file.Content == nil {
			fmt.Printf("  %-32s error: %s\n", name, file.Error)
			continue
		}

		fmt.Printf("  %-32s %d bytes\n", name, len(*file.Content))
		if outputDir == "" {
			continue
		}
		// Result names are untrusted.
		target := filepath.Join(outputDir, filepath.Base(name))
		if err := os.WriteFile(target, []byte(*file.Content), 0o644); err != nil {
			return fmt.Errorf("could not write %s: %w", target, err)
		}
	}
	return nil
}
