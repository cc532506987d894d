package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kiesman99/tilesplit/internal/splitter"
	"github.com/kiesman99/tilesplit/pkg/tile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is reported by the server health endpoint
const Version = "1.0.0"

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tilesplit [input]",
	Short: "Split a sprite sheet into a fixed grid of PNG tiles",
	Long: `tilesplit cuts a sprite sheet into equally sized tiles and writes each
tile to its own PNG file named tile_<index>.png, numbered in row-major order.

Tile size is the image size divided by the grid, rounded down. Leftover pixels
on the right and bottom edges are not part of any tile.

Examples:
  # Split spritesheet2.png into 2x3 tiles under output_tiles/
  tilesplit

  # Split another sheet into a 4x4 grid
  tilesplit characters.png --cols 4 --rows 4 -o characters

  # Show the grid, tile size and every written tile on stderr
  tilesplit -v

  # Start HTTP server
  tilesplit serve --port 8080

  # Upload the tiles to an S3-compatible bucket
  tilesplit upload --bucket sprites --endpoint http://localhost:9000`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE:         runSplit,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.tilesplit.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "print progress to stderr")

	rootCmd.Flags().StringP("input", "i", splitter.DefaultInput, "sprite sheet to split")
	rootCmd.Flags().StringP("output-dir", "o", splitter.DefaultOutputDir, "directory the tiles are written to")

	// Grid options
	rootCmd.PersistentFlags().Int("cols", tile.DefaultCols, "number of tile columns")
	rootCmd.PersistentFlags().Int("rows", tile.DefaultRows, "number of tile rows")

	// Bind flags to viper for root command
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("input", rootCmd.Flags().Lookup("input"))
	viper.BindPFlag("output-dir", rootCmd.Flags().Lookup("output-dir"))
	viper.BindPFlag("cols", rootCmd.PersistentFlags().Lookup("cols"))
	viper.BindPFlag("rows", rootCmd.PersistentFlags().Lookup("rows"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".tilesplit" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".tilesplit")
	}

	// TILESPLIT_OUTPUT_DIR, TILESPLIT_S3_BUCKET, ...
	viper.SetEnvPrefix("tilesplit")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil && viper.GetBool("verbose") {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// configuredGrid returns the grid from flags, config or environment
func configuredGrid() tile.Grid {
	return tile.Grid{
		Cols: viper.GetInt("cols"),
		Rows: viper.GetInt("rows"),
	}
}

func progressWriter(cmd *cobra.Command) io.Writer {
	if viper.GetBool("verbose") {
		return cmd.ErrOrStderr()
	}
	return io.Discard
}

func runSplit(cmd *cobra.Command, args []string) error {
	input := viper.GetString("input")
	if len(args) == 1 {
		input = args[0]
	}

	grid := configuredGrid()
	if err := grid.Validate(); err != nil {
		return err
	}

	sp := splitter.New(splitter.Options{
		OutputDir: viper.GetString("output-dir"),
		Grid:      grid,
		Progress:  progressWriter(cmd),
	})

	result, err := sp.Split(cmd.Context(), input)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✅ %d tiles saved to %s/\n", result.Count, result.Dir)
	return nil
}
