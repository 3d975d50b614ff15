// Command portalctl is a terminal client for the portal API. It signs in,
// resolves the session the same way the portal does, and follows a class chat.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/learnage/portal/internal/chat"
	"github.com/learnage/portal/internal/client"
	"github.com/learnage/portal/internal/config"
	"github.com/learnage/portal/internal/guard"
	"github.com/learnage/portal/internal/logger"
	"github.com/learnage/portal/internal/model"
	"github.com/learnage/portal/internal/router"
	"github.com/learnage/portal/internal/session"
	"github.com/rs/zerolog"
	"golang.org/x/term"
)

type app struct {
	cfg      *config.Config
	log      zerolog.Logger
	store    tokenStore
	api      *client.Client
	ids      *client.IdentityClient
	resolver *session.Resolver
}

func main() {
	cfg := config.Load()

	baseURL := flag.String("api", cfg.APIBaseURL, "Portal API base URL")
	tokenFile := flag.String("token-file", defaultTokenPath(), "Where the signed-in token is kept")
	flag.Usage = usage
	flag.Parse()

	// Logs go to stderr so command output stays clean.
	log := logger.New(os.Stderr, cfg.LogLevel, "pretty")

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	base := client.New(*baseURL, nil)
	ids := client.NewIdentityClient(base)
	api := base.WithTokens(ids)

	a := &app{
		cfg:      cfg,
		log:      log,
		store:    tokenStore{path: *tokenFile},
		api:      api,
		ids:      ids,
		resolver: session.NewResolver(api, log),
	}

	if err := a.run(ctx, args[0], args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: portalctl [flags] <command> [args]

Commands:
  login <email>        Sign in and remember the identity token
  logout               Revoke and forget the identity token
  whoami               Show the resolved session
  dashboard            Show the dashboard of the signed-in role
  open <path>          Show what the portal does for a page, e.g. /teacher/homework
  chat [-stream]       Follow the class chat; each input line is sent

Flags:`)
	flag.PrintDefaults()
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "login":
		return a.login(ctx, args)
	case "logout":
		return a.logout(ctx)
	case "whoami":
		s, err := a.session(ctx)
		if err != nil {
			return err
		}
		return printJSON(sessionView(s))
	case "dashboard":
		return a.dashboard(ctx)
	case "open":
		return a.open(ctx, args)
	case "chat":
		return a.chat(ctx, args)
	default:
		usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// ─── Identity ─────────────────────────────────────────────────────────

func (a *app) login(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("login needs an email")
	}

	fmt.Fprint(os.Stderr, "Password: ")
	pw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}

	resp, err := a.ids.SignIn(ctx, args[0], string(pw))
	if err != nil {
		return err
	}

	if err := a.store.Save(&storedToken{Token: resp.Token, ExpiresAt: resp.ExpiresAt, BaseURL: a.api.BaseURL()}); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	fmt.Printf("Signed in as %s (%s)\n", resp.Principal.Name, resp.Principal.Role)
	return nil
}

func (a *app) logout(ctx context.Context) error {
	if err := a.restore(); err != nil {
		return err
	}
	err := a.ids.SignOut(ctx)
	if cerr := a.store.Clear(); cerr != nil {
		return cerr
	}
	if err != nil {
		a.log.Warn().Err(err).Msg("Server-side revoke failed; local token removed")
	}
	fmt.Println("Signed out")
	return nil
}

func (a *app) restore() error {
	t, err := a.store.Load()
	if err != nil {
		return err
	}
	if t == nil {
		a.ids.Restore("", time.Time{})
		return nil
	}
	a.ids.Restore(t.Token, t.ExpiresAt)
	return nil
}

// session resolves the stored identity. It never fails on an invalid
// identity; that resolves to an unauthenticated session.
func (a *app) session(ctx context.Context) (session.Session, error) {
	if err := a.restore(); err != nil {
		return session.Session{}, err
	}
	return a.resolver.Resolve(ctx, a.ids.Current()), nil
}

func (a *app) principal(ctx context.Context) (*model.Principal, error) {
	s, err := a.session(ctx)
	if err != nil {
		return nil, err
	}
	if s.State != session.StateAuthenticated {
		return nil, errors.New("not signed in; run portalctl login <email>")
	}
	return s.Principal, nil
}

func sessionView(s session.Session) map[string]interface{} {
	out := map[string]interface{}{"state": s.State.String()}
	if s.Principal != nil {
		out["user"] = s.Principal
	}
	return out
}

// ─── Pages ────────────────────────────────────────────────────────────

func (a *app) dashboard(ctx context.Context) error {
	p, err := a.principal(ctx)
	if err != nil {
		return err
	}

	var v interface{}
	switch p.Role {
	case model.RoleStudent:
		v, err = a.api.StudentDashboard(ctx, p.UID)
	case model.RoleTeacher:
		v, err = a.api.TeacherDashboard(ctx, p.UID)
	case model.RoleParent:
		v, err = a.api.ParentDashboard(ctx, p.UID)
	}
	if err != nil {
		return err
	}
	return printJSON(v)
}

func (a *app) open(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("open needs a path")
	}

	var route *guard.Route
	for _, r := range router.PortalRoutes() {
		if r.Guard.Path == args[0] {
			rt := r.Guard
			route = &rt
			break
		}
	}
	if route == nil {
		return fmt.Errorf("%s is not a portal page", args[0])
	}

	s, err := a.session(ctx)
	if err != nil {
		return err
	}

	g := guard.New(*route)
	out := g.Complete(s.Principal)
	if out.Render() {
		fmt.Printf("%s renders\n", route.Path)
		return nil
	}
	fmt.Printf("%s redirects to %s\n", route.Path, out.Location)
	return nil
}

// ─── Chat ─────────────────────────────────────────────────────────────

func (a *app) chat(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("chat", flag.ContinueOnError)
	stream := fs.Bool("stream", false, "Use the push stream instead of polling")
	if err := fs.Parse(args); err != nil {
		return err
	}

	p, err := a.principal(ctx)
	if err != nil {
		return err
	}
	if p.Role == model.RoleParent {
		return errors.New("class chat is not available to parents")
	}

	room := chat.NewRoom(p, a.api)
	room.OnChange(func(msgs []model.ChatMessage) { render(p, msgs) })

	sub, err := a.subscribe(ctx, room, *stream)
	if err != nil {
		return err
	}
	defer sub.Close()
	room.Attach(sub)

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			lines <- sc.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if err := room.Send(ctx, line); err != nil && !errors.Is(err, chat.ErrEmptyMessage) {
				fmt.Fprintf(os.Stderr, "not sent (%v); draft kept: %s\n", err, room.Draft())
			}
		}
	}
}

func (a *app) subscribe(ctx context.Context, room *chat.Room, stream bool) (chat.Subscription, error) {
	if !stream {
		return chat.NewPoller(ctx, a.api, room.ClassID(), room.Apply,
			chat.WithInterval(a.cfg.ChatPollInterval),
			chat.WithLimit(a.cfg.ChatHistoryLimit),
			chat.WithLogger(a.log),
		), nil
	}

	token, err := a.ids.Token(ctx)
	if err != nil {
		return nil, err
	}
	st, err := chat.DialStream(ctx, nil, a.api.BaseURL(), room.ClassID(), token, room.Apply, a.log)
	if err != nil {
		return nil, err
	}
	return st, nil
}

func render(me *model.Principal, msgs []model.ChatMessage) {
	fmt.Print("\033[H\033[2J")
	if len(msgs) == 0 {
		fmt.Println("No messages yet. Type a line to start the conversation.")
		return
	}
	// Snapshots are newest first; print oldest at the top.
	for i := len(msgs) - 1; i >= 0; i-- {
		m := msgs[i]
		who := m.SenderName
		if m.SenderID == me.UID {
			who = "you"
		}
		fmt.Printf("[%s] %s (%s): %s\n", m.Timestamp.Local().Format("15:04"), who, m.SenderRole, strings.TrimSpace(m.Message))
	}
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
