package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"store-auditor/analyzers"
	"store-auditor/internal/report"
	"store-auditor/internal/types"
	"store-auditor/retriever"
)

var linksCmd = &cobra.Command{
	Use:   "links <store url>",
	Short: "Show how the store's navigation links are classified",
	Args:  cobra.ExactArgs(1),
	RunE:  runLinks,
}

func runLinks(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	r := retriever.New(cfg, logger)
	defer r.Close()

	page, err := r.Retrieve(ctx, args[0])
	if err != nil {
		logger.Debugf("Retrieval failed: %v", err)
		return errors.New(types.UserMessage(err))
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Total links found: %d\n", len(page.Anchors()))
	fmt.Fprintf(out, "Links with '/collections/' in path: %d\n", page.Count("a[href*='/collections/']"))
	fmt.Fprintf(out, "Links with '/products/' in path: %d\n", page.Count("a[href*='/products/']"))

	report.RenderNavigation(out, analyzers.ClassifyNavigation(page))
	return nil
}
