package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"webeng-hq/hello/pkg/cli"
	"webeng-hq/hello/pkg/storage"
	"webeng-hq/hello/pkg/users"
)

var usersFlags struct {
	password string
	role     string
	output   string
}

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage user accounts",
	Long: `Create, list and delete user accounts in the configured store.

The commands need a persistent storage backend; the memory backend
only lives as long as a running server.`,
}

var usersCreateCmd = &cobra.Command{
	Use:   "create <username>",
	Short: "Create a user",
	Long: `Create a user with a bcrypt-hashed password.

Without --password the password is read from the first line of stdin.

Examples:
  hello users create admin --role ADMIN --password s3cret
  echo s3cret | hello users create bob`,
	Args: cobra.ExactArgs(1),
	RunE: runUsersCreate,
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users",
	Args:  cobra.NoArgs,
	RunE:  runUsersList,
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete <username>",
	Short: "Delete a user",
	Long: `Delete a user. The user's greeting history is kept and shown as
anonymous.`,
	Args: cobra.ExactArgs(1),
	RunE: runUsersDelete,
}

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(usersCreateCmd, usersListCmd, usersDeleteCmd)

	usersCreateCmd.Flags().StringVarP(&usersFlags.password, "password", "p", "", "password (read from stdin when empty)")
	usersCreateCmd.Flags().StringVarP(&usersFlags.role, "role", "r", string(users.RoleUser), "role (USER or ADMIN)")
	usersListCmd.Flags().StringVarP(&usersFlags.output, "output", "o", "text", "output format (text, json, csv)")
}

// userTable renders users as rows.
type userTable []users.User

func (t userTable) Header() []string { return []string{"ID", "USERNAME", "ROLE"} }

func (t userTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, u := range t {
		rows = append(rows, []string{strconv.FormatInt(u.ID, 10), u.Username, string(u.Role)})
	}
	return rows
}

// withUsers opens the configured store and runs fn against a users.Service.
func withUsers(ctx context.Context, fn func(*users.Service) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Storage.Backend == "memory" {
		return cli.NewConfigError("storage.backend", errors.New("user commands need a persistent backend, got memory"))
	}
	logger, err := setupLogging(cfg, os.Stderr)
	if err != nil {
		return err
	}

	store, err := storage.Open(ctx, cfg.Storage, logger.Slog())
	if err != nil {
		return err
	}
	defer store.Close()

	return fn(users.NewService(store, users.WithLogger(logger.Slog())))
}

func runUsersCreate(cmd *cobra.Command, args []string) error {
	role, err := users.ParseRole(usersFlags.role)
	if err != nil {
		return err
	}
	password := usersFlags.password
	if password == "" {
		if password, err = readPassword(cmd.InOrStdin()); err != nil {
			return err
		}
	}

	return withUsers(cmd.Context(), func(svc *users.Service) error {
		u, err := svc.Create(cmd.Context(), args[0], password, role)
		if err != nil {
			return cli.NewCommandError("users create", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Created user %s (id %d, role %s)\n", u.Username, u.ID, u.Role)
		return nil
	})
}

func runUsersList(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(usersFlags.output)
	if err != nil {
		return err
	}

	return withUsers(cmd.Context(), func(svc *users.Service) error {
		list, err := svc.List(cmd.Context())
		if err != nil {
			return cli.NewCommandError("users list", err)
		}
		var data any = userTable(list)
		if format == cli.FormatJSON {
			data = list
		}
		return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), data)
	})
}

func runUsersDelete(cmd *cobra.Command, args []string) error {
	return withUsers(cmd.Context(), func(svc *users.Service) error {
		if err := svc.Delete(cmd.Context(), args[0]); err != nil {
			return cli.NewCommandError("users delete", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted user %s\n", args[0])
		return nil
	})
}

func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", errors.New("password is required")
	}
	return password, nil
}
