package app

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/simple-bulletin/simple-bulletin/internal/daemon"
)

var (
	// ErrEmptyUsername is returned when --username is missing.
	ErrEmptyUsername = errors.New("username can not be empty")
	// ErrEmptyPassword is returned when no password was entered.
	ErrEmptyPassword = errors.New("password can not be empty")
	// ErrPasswordMismatch is returned when the repeated password differs.
	ErrPasswordMismatch = errors.New("passwords do not match")
)

func init() { //nolint: gochecknoinits
	createAdminCmd.Flags().StringVar(&newUsername, "username", "", "name of the new administrator")
	createUserCmd.Flags().StringVar(&newUsername, "username", "", "name of the new user")
	createUserCmd.Flags().BoolVar(&newUserActive, "active", false, "activate the user right away")

	rootCmd.AddCommand(createAdminCmd, createUserCmd)
}

var (
	newUsername   string
	newUserActive bool

	createAdminCmd = &cobra.Command{
		Use:   "create-admin",
		Short: "Create an active administrator",
		Long: `Create an active user in the admins group. The password is read from the
terminal, or from the first line of stdin when stdin is not a terminal.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := readCredentials(cmd)
			if err != nil {
				return err
			}

			id, err := daemon.CreateAdmin(cmd.Context(), &cfg, newUsername, password)
			if err != nil {
				return err //nolint:wrapcheck
			}

			log.Info().Uint64("user_id", id.ID).Str("username", id.Username).Msg("administrator created")

			return nil
		},
	}

	createUserCmd = &cobra.Command{
		Use:   "create-user",
		Short: "Create a user in the users group",
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := readCredentials(cmd)
			if err != nil {
				return err
			}

			id, err := daemon.CreateUser(cmd.Context(), &cfg, newUsername, password, newUserActive)
			if err != nil {
				return err //nolint:wrapcheck
			}

			log.Info().Uint64("user_id", id.ID).Str("username", id.Username).Bool("active", newUserActive).
				Msg("user created")

			return nil
		},
	}
)

func readCredentials(cmd *cobra.Command) (string, error) {
	if strings.TrimSpace(newUsername) == "" {
		return "", ErrEmptyUsername
	}

	fd := int(os.Stdin.Fd()) //nolint:gosec

	if !term.IsTerminal(fd) {
		return readPasswordLine(cmd.InOrStdin())
	}

	return promptPassword(cmd.ErrOrStderr(), fd)
}

// promptPassword asks twice without echo.
func promptPassword(out io.Writer, fd int) (string, error) {
	_, _ = fmt.Fprint(out, "Password: ")

	first, err := term.ReadPassword(fd)
	_, _ = fmt.Fprintln(out)

	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	_, _ = fmt.Fprint(out, "Repeat password: ")

	second, err := term.ReadPassword(fd)
	_, _ = fmt.Fprintln(out)

	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	if string(first) != string(second) {
		return "", ErrPasswordMismatch
	}

	if len(first) == 0 {
		return "", ErrEmptyPassword
	}

	return string(first), nil
}

// readPasswordLine reads the password from the first line of r.
func readPasswordLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}

	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", ErrEmptyPassword
	}

	return password, nil
}
