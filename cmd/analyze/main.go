// Command analyze prints quick, human-readable economics of the game
// configurations in the configs directory: what the board costs, how fast
// each color group pays itself back and which spaces can wipe out a player's
// starting cash.
package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/monopolio-paisa/game/board"
	"github.com/wricardo/monopolio-paisa/game/engine"
)

// GroupStats summarizes one group of purchasable spaces: a color group,
// the transit lines or the utilities
type GroupStats struct {
	Name       string
	Spaces     int
	TotalPrice int

	// MaxRent is collected when one owner holds the whole group and a
	// visitor lands once on each of its spaces
	MaxRent int

	// Payback is how many such rounds of visits cover TotalPrice
	Payback int
}

// Report is the analysis of one configuration on a board
type Report struct {
	Name         string
	Description  string
	Players      int
	StartingCash int

	Purchasable int
	TotalPrice  int

	// Affordable counts the spaces one player can buy from starting cash,
	// cheapest first
	Affordable int

	// LapsToBuyAll is the board price expressed in start bonuses
	LapsToBuyAll float64

	Groups   []GroupStats
	Warnings []string
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "Print board economics for game configurations",
		ArgsUsage: "[config.json ...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   "configs",
				Usage:   "Directory scanned when no files are given",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			paths := cmd.Args().Slice()
			if len(paths) == 0 {
				matches, err := filepath.Glob(filepath.Join(cmd.String("config-dir"), "*.json"))
				if err != nil {
					return err
				}
				paths = matches
			}
			if len(paths) == 0 {
				return fmt.Errorf("no configuration files found")
			}

			out := cmd.Root().Writer
			if out == nil {
				out = os.Stdout
			}

			b := board.Default()
			failed := 0
			for _, path := range paths {
				fmt.Fprintf(out, "\n=== Analyzing %s ===\n", filepath.Base(path))
				report, err := analyzeConfig(path, b)
				if err != nil {
					fmt.Fprintf(out, "Error: %v\n", err)
					failed++
					continue
				}
				printReport(out, report)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d configurations could not be analyzed", failed, len(paths))
			}
			return nil
		},
	}
}

func analyzeConfig(path string, b *board.Board) (*Report, error) {
	config, err := engine.LoadGameConfig(path)
	if err != nil {
		return nil, err
	}
	return buildReport(config, b), nil
}

func buildReport(config *engine.GameConfig, b *board.Board) *Report {
	r := &Report{
		Name:         config.Name,
		Description:  config.Description,
		Players:      len(config.Players),
		StartingCash: config.StartingCash,
	}

	groups := map[string]*GroupStats{}
	var order []string
	var prices []int

	for _, s := range b.Spaces() {
		switch {
		case s.Type == board.Tax:
			if s.TaxAmount >= config.StartingCash {
				r.Warnings = append(r.Warnings,
					fmt.Sprintf("%s ($%d) can take a player's whole starting cash", s.Name, s.TaxAmount))
			}
			continue
		case !s.Purchasable() || !s.HasPrice():
			continue
		}

		r.Purchasable++
		r.TotalPrice += s.Price
		prices = append(prices, s.Price)

		key := groupName(s)
		g, ok := groups[key]
		if !ok {
			g = &GroupStats{Name: key}
			groups[key] = g
			order = append(order, key)
		}
		g.Spaces++
		g.TotalPrice += s.Price
		if s.Type == board.Property {
			g.MaxRent += s.BaseRent()
		}
	}

	for _, key := range order {
		g := groups[key]
		switch key {
		case string(board.Railroad):
			if g.Spaces >= 1 && g.Spaces <= len(engine.RailroadRents) {
				g.MaxRent = engine.RailroadRents[g.Spaces-1] * g.Spaces
			}
		case string(board.Utility):
			rent := engine.UtilityRentSingle
			if g.Spaces >= 2 {
				rent = engine.UtilityRentBoth
			}
			g.MaxRent = rent * g.Spaces
		}
		if g.MaxRent > 0 {
			g.Payback = int(math.Ceil(float64(g.TotalPrice) / float64(g.MaxRent)))
		}
		r.Groups = append(r.Groups, *g)
	}

	sort.Ints(prices)
	cash := config.StartingCash
	for _, p := range prices {
		if p > cash {
			break
		}
		cash -= p
		r.Affordable++
	}
	if r.Affordable == 0 && r.Purchasable > 0 {
		r.Warnings = append(r.Warnings, "players cannot afford any space with their starting cash")
	}

	r.LapsToBuyAll = float64(r.TotalPrice) / float64(engine.StartBonus)
	return r
}

// groupName is the color for properties and the space type otherwise
func groupName(s board.Space) string {
	if s.Type == board.Property && s.Color != "" {
		return s.Color
	}
	return string(s.Type)
}

func printReport(w io.Writer, r *Report) {
	fmt.Fprintf(w, "Name: %s\n", r.Name)
	fmt.Fprintf(w, "Players: %d, Starting cash: $%d\n", r.Players, r.StartingCash)
	fmt.Fprintf(w, "Purchasable spaces: %d, Board price: $%d (%.1f start bonuses)\n",
		r.Purchasable, r.TotalPrice, r.LapsToBuyAll)
	fmt.Fprintf(w, "Spaces one player can buy at start: %d\n", r.Affordable)

	fmt.Fprintf(w, "\n%-10s %6s %12s %12s %8s\n", "Group", "Spaces", "Price", "Max rent", "Payback")
	for _, g := range r.Groups {
		fmt.Fprintf(w, "%-10s %6d %12d %12d %8d\n", g.Name, g.Spaces, g.TotalPrice, g.MaxRent, g.Payback)
	}

	if len(r.Warnings) == 0 {
		fmt.Fprintf(w, "\n✅ No economic red flags\n")
		return
	}
	fmt.Fprintln(w)
	for _, warning := range r.Warnings {
		fmt.Fprintf(w, "⚠️  WARNING: %s\n", warning)
	}
}
