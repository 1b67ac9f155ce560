package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/aussiebroadwan/headcount/internal/login/app"
	"github.com/aussiebroadwan/headcount/internal/login/service"
	"github.com/aussiebroadwan/headcount/internal/login/store/drivers/sqlstore"
	"github.com/aussiebroadwan/headcount/pkg/cryptox"
	"github.com/aussiebroadwan/headcount/pkg/slogx"
)

// env bundles what a maintenance command needs. Call close when done.
type env struct {
	cfg    app.Config
	logger *slog.Logger
	db     *sqlstore.Store
	ctx    context.Context
}

func (e *env) close() {
	if err := e.db.Close(); err != nil {
		e.logger.Error("error closing database", "error", err)
	}
}

// loadConfig reads configuration for cmd. Logs go to stderr so command output
// can be piped.
func loadConfig(cmd *cobra.Command, cfgFile string, bind ...func(*viper.Viper) error) (app.Config, *slog.Logger, error) {
	cfg, err := app.LoadConfig(cfgFile, bind...)
	if err != nil {
		return app.Config{}, nil, err
	}
	cryptox.SetPepperPath(cfg.Auth.PepperFile)
	return cfg, app.NewLogger(cfg, cmd.ErrOrStderr()), nil
}

// openEnv loads configuration and opens the migrated store.
func openEnv(cmd *cobra.Command, cfgFile string) (*env, error) {
	cfg, logger, err := loadConfig(cmd, cfgFile)
	if err != nil {
		return nil, err
	}

	db, err := app.OpenStore(cfg, logger)
	if err != nil {
		return nil, err
	}

	return &env{
		cfg:    cfg,
		logger: logger,
		db:     db,
		ctx:    slogx.WithContext(cmd.Context(), logger),
	}, nil
}

// resolveCredential accepts a numeric id or a username.
func resolveCredential(ctx context.Context, svc *service.CredentialService, arg string) (int64, error) {
	if id, err := strconv.ParseInt(arg, 10, 64); err == nil {
		if id <= 0 {
			return 0, fmt.Errorf("invalid credential id %q", arg)
		}
		return id, nil
	}

	c, err := svc.GetByUsername(ctx, arg)
	if err != nil {
		return 0, fmt.Errorf("credential %q: %w", arg, err)
	}
	return c.ID, nil
}

// readPassword prompts for a password. On a terminal input is hidden and
// must be confirmed; otherwise one line is read from stdin.
func readPassword(cmd *cobra.Command, prompt string) (string, error) {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return readTerminalPassword(cmd.ErrOrStderr(), int(f.Fd()), prompt)
	}

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func readTerminalPassword(out io.Writer, fd int, prompt string) (string, error) {
	fmt.Fprint(out, prompt)
	pw, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	fmt.Fprint(out, "Confirm password: ")
	confirm, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("failed to read confirmation: %w", err)
	}

	if string(pw) != string(confirm) {
		return "", errors.New("passwords do not match")
	}
	return string(pw), nil
}
