// Command validate provides a small CLI that validates game configuration JSON
// files. Unlike the server, which stops at the first problem, it reports
// every issue it finds. It checks:
//   - JSON structure and unknown fields
//   - Required fields and the starting cash range
//   - Player roster size, unique names, colors and tokens
//   - Message templates: required keys and placeholder counts
//   - Playability: whether players can afford anything at the start
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/monopolio-paisa/game/board"
	"github.com/wricardo/monopolio-paisa/game/engine"
)

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) info(format string, args ...any) {
	r.Errors = append(r.Errors, "✓ "+fmt.Sprintf(format, args...))
}

// messageTemplate is one configurable log line and how many values it is
// formatted with
type messageTemplate struct {
	key      string
	text     string
	maxVerbs int
}

func messageTemplates(m engine.Messages) []messageTemplate {
	return []messageTemplate{
		{"welcome", m.Welcome, 1},
		{"rolled", m.Rolled, 4},
		{"doubles", m.Doubles, 1},
		{"passed_start", m.PassedStart, 2},
		{"landed", m.Landed, 2},
		{"purchased", m.Purchased, 3},
		{"declined", m.Declined, 2},
		{"rent_paid", m.RentPaid, 4},
		{"tax_paid", m.TaxPaid, 3},
		{"eliminated", m.Eliminated, 1},
		{"turn_started", m.TurnStarted, 1},
		{"victory", m.Victory, 1},
	}
}

// countVerbs counts formatting verbs, ignoring escaped percent signs
func countVerbs(template string) int {
	return strings.Count(template, "%") - 2*strings.Count(template, "%%")
}

// validateConfig loads and validates a single configuration JSON file.
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	var config engine.GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		result.fail("Invalid JSON: %v", err)
		return result
	}

	strict := json.NewDecoder(bytes.NewReader(data))
	strict.DisallowUnknownFields()
	if err := strict.Decode(&engine.GameConfig{}); err != nil {
		result.fail("Unknown field: %v", err)
	}

	// Required fields
	if strings.TrimSpace(config.Name) == "" {
		result.fail("name is required")
	}
	if strings.TrimSpace(config.Description) == "" {
		result.fail("description is required")
	}
	if config.StartingCash < engine.MinStartingCash || config.StartingCash > engine.MaxStartingCash {
		result.fail("starting_cash must be between %d and %d, got %d",
			engine.MinStartingCash, engine.MaxStartingCash, config.StartingCash)
	}

	validatePlayers(&result, config.Players)
	validateMessages(&result, config.Messages)

	// The engine has the final word
	if result.Valid {
		if err := engine.ValidateGameConfig(&config); err != nil {
			result.fail("%v", err)
		}
	}

	if result.Valid {
		names := make([]string, len(config.Players))
		for i, p := range config.Players {
			names[i] = p.Token + " " + p.Name
		}
		result.info("Name: %s", config.Name)
		result.info("Players (%d): %s", len(config.Players), strings.Join(names, ", "))
		result.info("Starting cash: $%d", config.StartingCash)
		result.info("Custom messages: %d of %d", customMessages(config.Messages), len(messageTemplates(config.Messages)))
		if cheapest := cheapestSpace(board.Default()); cheapest > config.StartingCash {
			result.info("Note: no player can afford a space at the start (cheapest is $%d)", cheapest)
		}
	}

	return result
}

func validatePlayers(result *ValidationResult, players []engine.PlayerSetup) {
	if len(players) < engine.MinPlayers || len(players) > engine.MaxPlayers {
		result.fail("players must have between %d and %d entries, got %d",
			engine.MinPlayers, engine.MaxPlayers, len(players))
	}

	names := map[string]bool{}
	tokens := map[string]bool{}
	for i, p := range players {
		label := fmt.Sprintf("player %d", i+1)
		name := strings.TrimSpace(p.Name)
		if name == "" {
			result.fail("%s has no name", label)
		} else {
			label = fmt.Sprintf("player %q", p.Name)
			key := strings.ToLower(name)
			if names[key] {
				result.fail("duplicate player name %q", p.Name)
			}
			names[key] = true
		}

		switch {
		case p.Color == "":
			result.fail("%s has no color", label)
		case !hexColor.MatchString(p.Color):
			result.fail("%s color %q is not a #rrggbb hex color", label, p.Color)
		}

		if p.Token == "" {
			result.fail("%s has no token", label)
		} else if tokens[p.Token] {
			result.fail("%s reuses token %s", label, p.Token)
		}
		tokens[p.Token] = true
	}
}

func validateMessages(result *ValidationResult, messages engine.Messages) {
	if messages.Welcome == "" {
		result.fail("Missing required message: welcome")
	}
	if messages.Victory == "" {
		result.fail("Missing required message: victory")
	} else if !strings.Contains(messages.Victory, "%s") {
		result.fail("messages.victory must contain %%s for the winner's name")
	}

	for _, m := range messageTemplates(messages) {
		if m.text == "" {
			continue
		}
		if n := countVerbs(m.text); n > m.maxVerbs {
			result.fail("messages.%s uses %d placeholders, at most %d allowed", m.key, n, m.maxVerbs)
		}
	}
}

func customMessages(messages engine.Messages) int {
	n := 0
	for _, m := range messageTemplates(messages) {
		if m.text != "" {
			n++
		}
	}
	return n
}

func cheapestSpace(b *board.Board) int {
	cheapest := 0
	for _, s := range b.Spaces() {
		if s.Purchasable() && s.HasPrice() && (cheapest == 0 || s.Price < cheapest) {
			cheapest = s.Price
		}
	}
	return cheapest
}

// printResults writes a concise report and reports whether every file is valid
func printResults(w io.Writer, results []ValidationResult) bool {
	allValid := true
	for _, result := range results {
		fmt.Fprintf(w, "\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Fprintln(w, "✅ VALID")
			for _, info := range result.Errors {
				fmt.Fprintln(w, "  "+info)
			}
			continue
		}

		fmt.Fprintln(w, "❌ INVALID")
		allValid = false
		for _, err := range result.Errors {
			if !strings.HasPrefix(err, "✓") {
				fmt.Fprintln(w, "  ❌ "+err)
			}
		}
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Fprintln(w, "✅ All configurations are valid!")
	} else {
		fmt.Fprintln(w, "❌ Some configurations have errors")
	}
	return allValid
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Validate game configuration files",
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
			files := cmd.Args().Slice()
			if len(files) == 0 {
				matches, err := filepath.Glob(filepath.Join(cmd.String("config-dir"), "*.json"))
				if err != nil {
					return fmt.Errorf("finding config files: %w", err)
				}
				files = matches
			}
			if len(files) == 0 {
				return fmt.Errorf("no configuration files found")
			}

			results := make([]ValidationResult, 0, len(files))
			for _, file := range files {
				results = append(results, validateConfig(file))
			}

			out := cmd.Root().Writer
			if out == nil {
				out = os.Stdout
			}
			if !printResults(out, results) {
				return fmt.Errorf("%d configuration(s) checked, some have errors", len(results))
			}
			return nil
		},
	}
}

// main validates the given files, or every *.json in the config directory,
// exiting with non-zero status if any are invalid.
func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
