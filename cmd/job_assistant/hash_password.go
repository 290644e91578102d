package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-assistant/internal/config"
)

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password",
	Short: "Print a bcrypt hash for AUTH_PASSWORD_HASH",
	Long: `Reads a password from standard input and prints the bcrypt hash that enables
basic auth on the web front end. BCRYPT_COST and PASSWORD_PEPPER are honoured.`,
	Args: cobra.NoArgs,
	RunE: runHashPassword,
}

func init() {
	rootCmd.AddCommand(hashPasswordCmd)
}

func runHashPassword(cmd *cobra.Command, _ []string) error {
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		return fmt.Errorf("password is empty")
	}

	passwords, err := config.NewPasswordConfig()
	if err != nil {
		return err
	}
	hash, err := passwords.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), hash)
	return nil
}
