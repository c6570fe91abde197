// Command cachectl drops cached TMDB responses by tag, e.g. "genres",
// "providers" or "movie:550".
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/marquee/marquee-go/internal/cache"
	"github.com/marquee/marquee-go/internal/config"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), "usage: cachectl TAG...")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}
	cfg := config.Load()

	c, err := cache.New(cfg.Redis)
	if err != nil {
		slog.Error("redis unavailable", "error", err)
		os.Exit(1)
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	failed := false
	for _, tag := range flag.Args() {
		n, err := c.InvalidateTag(ctx, tag)
		if err != nil {
			slog.Error("invalidate failed", "tag", tag, "error", err)
			failed = true
			continue
		}
		slog.Info("invalidated", "tag", tag, "keys", n)
	}
	if failed {
		os.Exit(1)
	}
}
