package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"assessment-games-go/config"
	"assessment-games-go/internal/auth"
)

var tokenCmd = &cobra.Command{
	Use:   "token [subject]",
	Short: "Mint a teacher access token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.JWTSecret == "" {
			return config.ErrMissingJWTSecret
		}
		svc, err := auth.NewService([]byte(cfg.JWTSecret), cfg.JWTExpiration, cfg.TeacherPasscodeHash)
		if err != nil {
			return err
		}
		pair, err := svc.IssueToken(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), pair.AccessToken)
		return nil
	},
}

var hashCmd = &cobra.Command{
	Use:   "hash-passcode [passcode]",
	Short: "Print a bcrypt hash for TEACHER_PASSCODE_HASH",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, err := auth.HashPasscode(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd, hashCmd)
}
