package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	apperrors "github.com/muslimbek77/tanlov-ai/internal/platform/errors"
	"github.com/muslimbek77/tanlov-ai/internal/services/auth"
	"github.com/muslimbek77/tanlov-ai/internal/services/dashboard/storage"
)

func newAuthCmd(app *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Sign in to the analysis service",
		Long: `Sign in to the analysis service.

The session is kept in the dashboard database and used by every command
that calls the service. TANLOV_ACCESS_TOKEN takes precedence over it.`,
	}

	var username string
	login := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		Long: `Sign in and store the session.

The password is prompted for on a terminal, or read from the first line of
stdin otherwise.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.runAuthLogin(cmd, username)
		},
	}
	login.Flags().StringVarP(&username, "username", "u", "", "account username")

	logout := &cobra.Command{
		Use:   "logout",
		Short: "Revoke the stored session and forget it",
		Args:  cobra.NoArgs,
		RunE:  app.runAuthLogout,
	}
	refresh := &cobra.Command{
		Use:   "refresh",
		Short: "Exchange the stored refresh token for a new access token",
		Args:  cobra.NoArgs,
		RunE:  app.runAuthRefresh,
	}
	status := &cobra.Command{
		Use:   "status",
		Short: "Show who is signed in and when the access token expires",
		Args:  cobra.NoArgs,
		RunE:  app.runAuthStatus,
	}

	cmd.AddCommand(login, logout, refresh, status)
	return cmd
}

func (c *cli) runAuthLogin(cmd *cobra.Command, username string) error {
	ctx := cmd.Context()
	in := bufio.NewReader(c.stdin)
	if strings.TrimSpace(username) == "" {
		fmt.Fprint(c.stderr, "Username: ")
		line, err := in.ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("read username: %w", err)
		}
		username = strings.TrimSpace(line)
	}
	password, err := c.readPassword(in)
	if err != nil {
		return err
	}

	session, err := c.authClient().Login(ctx, username, password)
	if err != nil {
		return err
	}
	user, err := json.Marshal(session.User)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	store, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	if err := store.PutSession(ctx, storage.Session{
		AccessToken:  session.Tokens.Access,
		RefreshToken: session.Tokens.Refresh,
		User:         user,
	}); err != nil {
		return err
	}
	c.logger.Info("signed in", zap.String("username", session.User.Username))

	if c.jsonOut {
		return outputJSON(c.stdout, session.User)
	}
	p := c.palette(ctx)
	printField(c.stdout, p, "Signed in", displayName(session.User))
	printField(c.stdout, p, "Role", firstNonEmpty(session.User.RoleDisplay, session.User.Role))
	return nil
}

func (c *cli) readPassword(in *bufio.Reader) (string, error) {
	if f, ok := c.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(c.stderr, "Password: ")
		password, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(c.stderr)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(password), nil
	}
	line, err := in.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (c *cli) runAuthLogout(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	store, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	session, err := store.GetSession(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return apperrors.New(apperrors.CodeUnauthenticated, "not signed in")
	}
	if err != nil {
		return err
	}

	// The local session is dropped even when the service cannot be reached.
	tokens := auth.TokenPair{Access: session.AccessToken, Refresh: session.RefreshToken}
	if err := c.authClient().Logout(ctx, tokens); err != nil {
		c.logger.Warn("remote logout failed", zap.Error(err))
	}
	if err := store.DeleteSession(ctx); err != nil {
		return err
	}
	if c.jsonOut {
		return outputJSON(c.stdout, map[string]bool{"success": true})
	}
	_, err = fmt.Fprintln(c.stdout, "Signed out")
	return err
}

func (c *cli) runAuthRefresh(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	store, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	session, err := store.GetSession(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return apperrors.New(apperrors.CodeNoRefreshToken, "no stored session")
	}
	if err != nil {
		return err
	}

	tokens, err := c.authClient().Refresh(ctx, session.RefreshToken)
	if err != nil {
		return err
	}
	session.AccessToken = tokens.Access
	session.RefreshToken = tokens.Refresh
	if err := store.PutSession(ctx, session); err != nil {
		return err
	}
	return c.printTokenStatus(cmd, tokens.Access, session.User)
}

func (c *cli) runAuthStatus(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if c.cfg.AccessToken != "" {
		return c.printTokenStatus(cmd, c.cfg.AccessToken, nil)
	}
	store, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	session, err := store.GetSession(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return apperrors.New(apperrors.CodeUnauthenticated, "not signed in")
	}
	if err != nil {
		return err
	}
	return c.printTokenStatus(cmd, session.AccessToken, session.User)
}

type tokenStatus struct {
	Username  string     `json:"username,omitempty"`
	UserID    int64      `json:"user_id,omitempty"`
	Role      string     `json:"role,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Expired   bool       `json:"expired"`
	Source    string     `json:"source"`
}

func (c *cli) printTokenStatus(cmd *cobra.Command, token string, storedUser json.RawMessage) error {
	claims, err := auth.InspectToken(token)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeUnauthenticated, "unreadable access token", err)
	}
	now := time.Now()
	status := tokenStatus{
		Username: claims.Username,
		UserID:   claims.UserID,
		Role:     claims.Role,
		Expired:  claims.Expired(now),
		Source:   "session",
	}
	if storedUser == nil {
		status.Source = "environment"
	}
	if len(storedUser) > 0 {
		var user auth.User
		if err := json.Unmarshal(storedUser, &user); err == nil {
			status.Username = firstNonEmpty(user.Username, status.Username)
			status.Role = firstNonEmpty(user.RoleDisplay, user.Role, status.Role)
			if status.UserID == 0 {
				status.UserID = user.ID
			}
		}
	}
	if claims.ExpiresAt != nil {
		expires := claims.ExpiresAt.Time
		status.ExpiresAt = &expires
	}

	if c.jsonOut {
		return outputJSON(c.stdout, status)
	}
	p := c.palette(cmd.Context())
	printField(c.stdout, p, "User", fmt.Sprintf("%s (id %d)", status.Username, status.UserID))
	if status.Role != "" {
		printField(c.stdout, p, "Role", status.Role)
	}
	printField(c.stdout, p, "Token", status.Source)
	switch {
	case status.ExpiresAt == nil:
		printField(c.stdout, p, "Expires", p.Muted.Render("never"))
	case status.Expired:
		printField(c.stdout, p, "Expires", p.Bad.Render("expired "+status.ExpiresAt.Local().Format(time.RFC3339)))
	default:
		left := claims.ExpiresIn(now).Round(time.Second)
		printField(c.stdout, p, "Expires", fmt.Sprintf("%s (in %s)", status.ExpiresAt.Local().Format(time.RFC3339), left))
	}
	return nil
}

func displayName(user auth.User) string {
	name := strings.TrimSpace(user.FirstName + " " + user.LastName)
	if name == "" {
		return user.Username
	}
	return fmt.Sprintf("%s (%s)", name, user.Username)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
