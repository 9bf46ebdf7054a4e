package commands

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"unicode"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// InteractiveCmd creates the interactive command
func InteractiveCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "interactive",
		Short: "Start a session that runs many commands with one database connection and one Google sign-in",
		Long: `Start an interactive session. The database connection and Google
authorization are set up once and reused by every command you run.

Type 'help' to see available commands, 'exit' or 'quit' to leave.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("\n🚀 %s interactive session\n", app.Cfg.TeamName)
			fmt.Println("Type 'help' for available commands, 'exit' or 'quit' to leave")

			commands := siblingCommands(cmd)
			return runSession(os.Stdin, commands)
		},
	}
}

func siblingCommands(cmd *cobra.Command) map[string]*cobra.Command {
	commands := make(map[string]*cobra.Command)
	for _, sub := range cmd.Parent().Commands() {
		switch sub.Name() {
		case "interactive", "completion", "help":
			continue
		}
		commands[sub.Name()] = sub
	}
	return commands
}

func runSession(in io.Reader, commands map[string]*cobra.Command) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts, err := splitArgs(line)
		if err != nil {
			fmt.Printf("❌ %v\n\n", err)
			continue
		}
		if len(parts) == 0 {
			continue
		}

		switch name := parts[0]; name {
		case "exit", "quit":
			fmt.Println("👋 Do zobaczenia!")
			return nil
		case "help":
			printInteractiveHelp(commands)
		default:
			target, ok := commands[name]
			if !ok {
				fmt.Printf("❌ Unknown command: %s (type 'help' for available commands)\n\n", name)
				continue
			}
			if err := runCommand(target, parts[1:]); err != nil {
				fmt.Printf("❌ Error: %v\n\n", err)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading input: %w", err)
	}
	return nil
}

// runCommand runs a command's RunE directly. Going through Execute would run
// the root's PersistentPreRunE and set the app up a second time.
func runCommand(target *cobra.Command, args []string) error {
	target.Flags().VisitAll(func(flag *pflag.Flag) {
		flag.Changed = false
		_ = flag.Value.Set(flag.DefValue)
	})

	if err := target.ParseFlags(args); err != nil {
		return fmt.Errorf("parsing flags: %w", err)
	}
	args = target.Flags().Args()

	if target.Args != nil {
		if err := target.Args(target, args); err != nil {
			return err
		}
	}
	if target.RunE != nil {
		return target.RunE(target, args)
	}
	if target.Run != nil {
		target.Run(target, args)
	}
	return nil
}

func printInteractiveHelp(commands map[string]*cobra.Command) {
	fmt.Println("\nAvailable commands:")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		fmt.Printf("  %-40s %s\n", commands[name].Use, commands[name].Short)
	}
	fmt.Printf("\n  %-40s %s\n", "help", "Show this help message")
	fmt.Printf("  %-40s %s\n\n", "exit, quit", "Leave the session")
}

// splitArgs splits a line on whitespace, keeping single- or double-quoted
// text together so titles like "Próba generalna" stay one argument
func splitArgs(line string) ([]string, error) {
	var (
		args    []string
		current strings.Builder
		quote   rune
		started bool
	)
	for _, r := range line {
		switch {
		case quote != 0 && r == quote:
			quote = 0
		case quote != 0:
			current.WriteRune(r)
		case r == '"' || r == '\'':
			quote, started = r, true
		case unicode.IsSpace(r):
			if started {
				args = append(args, current.String())
				current.Reset()
				started = false
			}
		default:
			current.WriteRune(r)
			started = true
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unclosed quote: %c", quote)
	}
	if started {
		args = append(args, current.String())
	}
	return args, nil
}
