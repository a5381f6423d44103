package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/polidex/cli/config"
	"github.com/polidex/cli/internal/session"
	"github.com/polidex/cli/internal/tui"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(cfg *config.Config, sess session.Store) *cli.App {
	return &cli.App{
		Name:    "polidex",
		Usage:   "Admin console for the Polidex knowledge-base service",
		Version: Version,
		Commands: []*cli.Command{
			loginCmd(sess),
			logoutCmd(sess),
			statusCmd(sess),
		},
		Action: func(c *cli.Context) error {
			if c.Args().Len() > 0 {
				return fmt.Errorf("unknown command %q", c.Args().First())
			}
			return tui.NewApp(cfg, sess).Run()
		},
	}
}

// loginCmd stores the admin token for subsequent sessions.
func loginCmd(sess session.Store) *cli.Command {
	return &cli.Command{
		Name:      "login",
		Usage:     "Store the admin bearer token",
		ArgsUsage: "[token]",
		Action: func(c *cli.Context) error {
			token := strings.TrimSpace(c.Args().First())
			if token == "" {
				fmt.Print("Admin token: ")
				line, err := bufio.NewReader(os.Stdin).ReadString('\n')
				if err != nil {
					return fmt.Errorf("failed to read token: %w", err)
				}
				token = strings.TrimSpace(line)
			}
			if token == "" {
				return fmt.Errorf("token must not be empty")
			}
			if err := sess.Set(token); err != nil {
				return err
			}
			fmt.Println("Token stored.")
			return nil
		},
	}
}

// logoutCmd clears the stored token.
func logoutCmd(sess session.Store) *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "Clear the stored admin token",
		Action: func(c *cli.Context) error {
			if err := sess.Clear(); err != nil {
				return err
			}
			fmt.Println("Signed out.")
			return nil
		},
	}
}

// statusCmd reports whether a token is stored. The token itself is
// never printed.
func statusCmd(sess session.Store) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show whether an admin token is stored",
		Action: func(c *cli.Context) error {
			if _, ok := sess.Get(); ok {
				fmt.Println("Signed in (token stored at " + config.TokenPath() + ").")
			} else {
				fmt.Println("Signed out.")
			}
			return nil
		},
	}
}
