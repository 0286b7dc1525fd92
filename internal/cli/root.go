// Package cli provides the terminal client for ReviverImagem.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/config"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	sessionMode string

	cfg      *config.ClientConfig
	app      *App
	closeLog func() error
)

// rootCmd starts the chat when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "revivar",
	Short: "Chat with the ReviverImagem image assistant",
	Long: `revivar is a terminal client for ReviverImagem.

Conversations are saved automatically once you sign in. Without an account
you can still chat, with GPT and image generation limited.`,
	Version:      Version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		cfg = config.LoadClient()
		if sessionMode != "" {
			cfg.SessionMode = strings.ToLower(sessionMode)
		}

		logger, closeFn := config.SetupFileLogger(cfg.LogFile, cfg.LogLevel)
		closeLog = closeFn

		var err error
		app, err = NewApp(cmd.Context(), cfg, cmd.OutOrStdout(), logger)
		if err != nil {
			return fmt.Errorf("start client: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if app != nil {
			app.Close(context.Background())
		}
		if closeLog != nil {
			if err := closeLog(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
			}
		}
	},
	RunE: runChat,
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat (default)",
	RunE:  runChat,
}

var (
	loginPassword string
	loginSignUp   bool
)

var loginCmd = &cobra.Command{
	Use:   "login <email>",
	Short: "Sign in, or create an account with --signup",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password := loginPassword
		if password == "" {
			fmt.Fprint(cmd.OutOrStdout(), "Senha: ")
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("read password: %w", err)
			}
			password = strings.TrimSpace(line)
		}
		if loginSignUp {
			return app.auth.SignUp(cmd.Context(), args[0], password)
		}
		return app.auth.SignIn(cmd.Context(), args[0], password)
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out",
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.auth.SignOut(cmd.Context())
	},
}

var conversationsCmd = &cobra.Command{
	Use:     "conversations",
	Aliases: []string{"conversas"},
	Short:   "List saved conversations",
	RunE: func(cmd *cobra.Command, args []string) error {
		app.listConversations(cmd.Context())
		return nil
	},
}

var checkoutCmd = &cobra.Command{
	Use:   "checkout <plan>",
	Short: "Open the payment page for a subscription plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if app.checkout == nil {
			return fmt.Errorf("checkout %w", errDemoUnavailable)
		}
		return app.checkout.StartCheckout(cmd.Context(), args[0])
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "revivar %s\n", Version)
	},
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "ReviverImagem. Digite /ajuda para ver os comandos.")
	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		if app.Execute(ctx, scanner.Text()) {
			break
		}
	}
	return scanner.Err()
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&sessionMode, "session-mode", "", "session store: remote or demo (overrides REVIVAR_SESSION_MODE)")

	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "password (prompted when empty)")
	loginCmd.Flags().BoolVar(&loginSignUp, "signup", false, "create a new account")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(conversationsCmd)
	rootCmd.AddCommand(checkoutCmd)
	rootCmd.AddCommand(versionCmd)
}
