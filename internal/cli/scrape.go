package cli

import (
	"github.com/spf13/cobra"

	"github.com/baxromumarov/recipe-hunter/internal/core"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape <url>",
	Short: "Extract a recipe from a supported recipe website",
	Long: `Scrape fetches a recipe page, reads its schema.org Recipe data and prints
the normalized recipe as JSON. Nothing is stored.

Examples:
  recipectl scrape https://www.allrecipes.com/recipe/12345/banana-bread/
  recipectl scrape https://www.foodnetwork.com/recipes/food-network-kitchen/pie-1234567`,
	Args: cobra.ExactArgs(1),
	RunE: runScrape,
}

var videoCmd = &cobra.Command{
	Use:   "video <url>",
	Short: "Extract a recipe from a YouTube or TikTok video",
	Long: `Video reads a video's transcript or caption and prints the recipe it
describes as JSON. Videos that do not describe a recipe are reported as errors.

Examples:
  recipectl video https://www.youtube.com/watch?v=dQw4w9WgXcQ
  recipectl video https://www.tiktok.com/@chef/video/7234567890123`,
	Args: cobra.ExactArgs(1),
	RunE: runVideo,
}

var sitesCmd = &cobra.Command{
	Use:   "sites",
	Short: "List supported recipe websites and video platforms",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printJSON(cmd.OutOrStdout(), map[string][]string{
			"sites":     core.DefaultRecipeRouter(nil).SupportedSites(),
			"platforms": core.DefaultVideoRouter(nil, "").SupportedPlatforms(),
		})
	},
}

func init() {
	rootCmd.AddCommand(scrapeCmd)
	rootCmd.AddCommand(videoCmd)
	rootCmd.AddCommand(sitesCmd)
}

func runScrape(cmd *cobra.Command, args []string) error {
	rt, err := loadRuntime(cmd)
	if err != nil {
		return err
	}
	res, err := core.DefaultRecipeRouter(rt.fetcher).ScrapeRecipeFromURL(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), res)
}

func runVideo(cmd *cobra.Command, args []string) error {
	rt, err := loadRuntime(cmd)
	if err != nil {
		return err
	}
	v, err := core.DefaultVideoRouter(rt.fetcher, rt.cfg.YouTubeBaseURL).ScrapeVideoRecipeFromURL(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), v)
}
