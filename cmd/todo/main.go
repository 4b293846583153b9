// Command todo is a terminal client for the todo backend.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"syscall"

	"todo-go/configs"
	"todo-go/internal/client"
	"todo-go/internal/form"
	"todo-go/internal/models"
	"todo-go/internal/presenter"
	"todo-go/internal/session"
	"todo-go/internal/ui"
	"todo-go/pkg/database"
	"todo-go/pkg/logger"
)

const usage = `usage: todo [flags] <command> [args]

commands:
  register -email E -password P [-name N]
  login -email E -password P
  logout
  whoami
  list
  add -title T -description D -due YYYY-MM-DD [-status S]
  edit <id> [-title T] [-description D] [-due YYYY-MM-DD] [-status S]
  delete <id> [-yes]

flags:
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "todo:", err)
		}
		os.Exit(1)
	}
}

// cli holds everything one invocation needs. The session store is created
// once and passed to every view.
type cli struct {
	in      io.Reader
	out     io.Writer
	api     *client.Client
	session *session.Store
	router  *ui.Router
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	cfg := configs.LoadConfig()

	fs := flag.NewFlagSet("todo", flag.ContinueOnError)
	fs.SetOutput(stdout)
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), usage)
		fs.PrintDefaults()
	}
	fs.StringVar(&cfg.APIURL, "api", cfg.APIURL, "backend base URL")
	fs.StringVar(&cfg.SessionStore, "session-store", cfg.SessionStore, "where the session lives: file or redis")
	fs.StringVar(&cfg.SessionFile, "session-file", cfg.SessionFile, "session file for -session-store=file")
	fs.StringVar(&cfg.LogDir, "log-dir", cfg.LogDir, "directory for log files, empty disables logging")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return flag.ErrHelp
	}

	if cfg.LogDir != "" {
		if err := logger.InitLoggers(cfg.LogDir); err != nil {
			return err
		}
		defer logger.SyncLoggers()
	}

	persister, closePersister, err := openPersister(ctx, cfg)
	if err != nil {
		return err
	}
	defer closePersister()

	api := client.New(cfg.APIURL)
	c := &cli{
		in:      stdin,
		out:     stdout,
		api:     api,
		session: session.Open(ctx, api, persister),
		router:  &ui.Router{},
	}
	return c.dispatch(ctx, fs.Arg(0), fs.Args()[1:])
}

func openPersister(ctx context.Context, cfg configs.Config) (session.Persister, func(), error) {
	switch cfg.SessionStore {
	case "file":
		return session.NewFilePersister(cfg.SessionFile, cfg.SessionSecret), func() {}, nil
	case "redis":
		rdb, err := database.ConnectRedis(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return session.NewRedisPersister(rdb, cfg.SessionSecret), func() { rdb.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown session store %q", cfg.SessionStore)
	}
}

func (c *cli) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "register":
		return c.register(ctx, args)
	case "login":
		return c.login(ctx, args)
	case "logout":
		return c.logout(ctx)
	case "whoami":
		return c.whoami()
	case "list":
		return c.list(ctx)
	case "add":
		return c.save(ctx, 0, args)
	case "edit":
		id, rest, err := taskArg(cmd, args)
		if err != nil {
			return err
		}
		return c.save(ctx, id, rest)
	case "delete":
		id, rest, err := taskArg(cmd, args)
		if err != nil {
			return err
		}
		return c.delete(ctx, id, rest)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func taskArg(cmd string, args []string) (int, []string, error) {
	if len(args) == 0 {
		return 0, nil, fmt.Errorf("%s: missing todo id", cmd)
	}
	id, err := strconv.Atoi(args[0])
	if err != nil || id <= 0 {
		return 0, nil, fmt.Errorf("%s: invalid todo id %q", cmd, args[0])
	}
	return id, args[1:], nil
}

func (c *cli) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.out)
	return fs
}

func (c *cli) register(ctx context.Context, args []string) error {
	fs := c.flags("register")
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")
	name := fs.String("name", "", "display name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *password == "" {
		return errors.New("register: -email and -password are required")
	}

	user, err := c.session.Register(ctx, models.User{Email: *email, Password: *password, Name: *name})
	if err != nil {
		return fmt.Errorf("register: %w", err)
	}
	fmt.Fprintf(c.out, "Registered %s (id %d). Log in with: todo login -email %s\n", user.Email, user.ID, user.Email)
	return nil
}

func (c *cli) login(ctx context.Context, args []string) error {
	fs := c.flags("login")
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if !c.session.Login(ctx, *email, *password) {
		return errors.New("invalid credentials")
	}
	c.router.ToList()
	user, _ := c.session.CurrentUser()
	fmt.Fprintf(c.out, "Logged in as %s\n", user.Email)
	return nil
}

func (c *cli) logout(ctx context.Context) error {
	p := presenter.New(c.session, c.api, ui.NewTerminal(c.in, c.out), c.router)
	if err := p.Logout(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	fmt.Fprintln(c.out, "Logged out")
	return nil
}

func (c *cli) whoami() error {
	user, ok := c.session.CurrentUser()
	if !ok {
		fmt.Fprintln(c.out, "Not logged in")
		return nil
	}
	fmt.Fprintf(c.out, "%s <%s> (id %d)\n", user.Name, user.Email, user.ID)
	return nil
}

func (c *cli) list(ctx context.Context) error {
	if err := ui.RequireSession(c.session, c.router); err != nil {
		return err
	}
	c.router.ToList()
	return c.renderList(ctx)
}

func (c *cli) renderList(ctx context.Context) error {
	p := presenter.New(c.session, c.api, ui.NewTerminal(c.in, c.out), c.router)
	if err := p.Activate(ctx); err != nil {
		ui.NewTerminal(c.in, c.out).Alert(p.ErrorMessage())
		return err
	}
	renderTasks(c.out, p.UserName(), p.Tasks())
	return nil
}

type stringFlag struct {
	value *string
	set   bool
}

func (c *cli) save(ctx context.Context, taskID int, args []string) error {
	name := "add"
	if taskID > 0 {
		name = "edit"
	}
	fs := c.flags(name)
	fields := map[string]*stringFlag{
		"title":       {value: fs.String("title", "", "title, at least 3 characters")},
		"description": {value: fs.String("description", "", "description, at least 10 characters")},
		"due":         {value: fs.String("due", "", "due date as YYYY-MM-DD, today or later")},
		"status":      {value: fs.String("status", string(models.StatusPending), "pending, in-progress or completed")},
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	fs.Visit(func(f *flag.Flag) { fields[f.Name].set = true })

	if err := ui.RequireSession(c.session, c.router); err != nil {
		return err
	}

	ctrl := form.New(c.session, c.api, c.router)
	if err := ctrl.Activate(ctx, taskID); err != nil {
		return fmt.Errorf("%s: %s: %w", name, ctrl.ErrorMessage(), err)
	}

	// add takes every flag, edit only overrides what was given
	in := ctrl.Input()
	overlay := func(key string, dst *string) {
		if f := fields[key]; taskID == 0 || f.set {
			*dst = *f.value
		}
	}
	overlay("title", &in.Title)
	overlay("description", &in.Description)
	overlay("due", &in.DueDate)
	overlay("status", &in.Status)
	ctrl.SetInput(in)

	if err := ctrl.Submit(ctx); err != nil {
		var verr *form.ValidationError
		if errors.As(err, &verr) {
			printValidation(c.out, verr)
			return fmt.Errorf("%s: invalid input", name)
		}
		if msg := ctrl.ErrorMessage(); msg != "" {
			return fmt.Errorf("%s: %s: %w", name, msg, err)
		}
		return fmt.Errorf("%s: %w", name, err)
	}

	fmt.Fprintln(c.out, "Saved")
	if route, _ := c.router.Current(); route == ui.RouteList {
		return c.renderList(ctx)
	}
	return nil
}

func printValidation(w io.Writer, verr *form.ValidationError) {
	keys := make([]string, 0, len(verr.Fields))
	for k := range verr.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "  %s %s\n", k, verr.Fields[k])
	}
}

func (c *cli) delete(ctx context.Context, taskID int, args []string) error {
	fs := c.flags("delete")
	yes := fs.Bool("yes", false, "do not ask for confirmation")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := ui.RequireSession(c.session, c.router); err != nil {
		return err
	}

	term := ui.NewTerminal(c.in, c.out)
	term.AssumeYes = *yes
	p := presenter.New(c.session, c.api, term, c.router)
	if err := p.Activate(ctx); err != nil {
		return fmt.Errorf("delete: %s: %w", p.ErrorMessage(), err)
	}
	if err := p.Delete(ctx, taskID); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	renderTasks(c.out, p.UserName(), p.Tasks())
	return nil
}
