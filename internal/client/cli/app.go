package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mkuznecovs/billfold/internal/client/config"
	"github.com/mkuznecovs/billfold/internal/client/remote"
	"github.com/mkuznecovs/billfold/internal/client/repositories/clients"
	"github.com/mkuznecovs/billfold/internal/client/repositories/expenses"
	"github.com/mkuznecovs/billfold/internal/client/repositories/invoices"
	"github.com/mkuznecovs/billfold/internal/client/repositories/metadata"
	"github.com/mkuznecovs/billfold/internal/client/repositories/payments"
	"github.com/mkuznecovs/billfold/internal/client/repositories/profiles"
	"github.com/mkuznecovs/billfold/internal/client/services"
	"github.com/mkuznecovs/billfold/internal/client/store"
	syncpkg "github.com/mkuznecovs/billfold/internal/client/sync"
	"github.com/mkuznecovs/billfold/internal/logging"
)

// App wires the local store, the backend client and the sync engine behind
// an interactive command loop.
type App struct {
	config   *config.Config
	log      logging.Logger
	store    *store.Store
	remote   *remote.HTTPStore
	engine   *syncpkg.Engine
	monitor  *syncpkg.Monitor
	auth     *services.AuthService
	invoices *services.InvoiceService
	expenses *services.ExpenseService
	clients  clients.Repository
	profiles profiles.Repository

	reader *bufio.Reader
	out    io.Writer
}

func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	st, err := store.Open(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	api := remote.NewHTTPStore(cfg.ServerEndpointAddr, cfg.RequestTimeout)

	clientRepo := clients.NewSQLiteRepository(st.DB())
	invoiceRepo := invoices.NewSQLiteRepository(st.DB())
	paymentRepo := payments.NewSQLiteRepository(st.DB())
	expenseRepo := expenses.NewSQLiteRepository(st.DB())
	profileRepo := profiles.NewSQLiteRepository(st.DB())
	watermark := metadata.NewWatermark(metadata.NewSQLiteRepository(st.DB()))

	engine := syncpkg.NewEngine(st, api, watermark, log,
		syncpkg.WithTableTimeout(cfg.RequestTimeout))
	monitor := syncpkg.NewMonitor(api, engine, log, cfg.OnlineCheckInterval)

	return &App{
		config:   cfg,
		log:      log,
		store:    st,
		remote:   api,
		engine:   engine,
		monitor:  monitor,
		auth:     services.NewAuthService(api, engine, log),
		invoices: services.NewInvoiceService(clientRepo, invoiceRepo, paymentRepo, engine, log),
		expenses: services.NewExpenseService(expenseRepo, api, engine, log),
		clients:  clientRepo,
		profiles: profileRepo,
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
	}, nil
}

// SetIO redirects the command loop's input and output, used in tests.
func (a *App) SetIO(in io.Reader, out io.Writer) {
	a.reader = bufio.NewReader(in)
	a.out = out
}

func (a *App) Close() error {
	return a.store.Close()
}

func (a *App) status() string {
	parts := []string{}
	if a.auth.LoggedIn() {
		parts = append(parts, "logged in")
	}
	if a.monitor.Online() {
		parts = append(parts, "online")
	} else {
		parts = append(parts, "offline")
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Run starts the connectivity watcher and the command loop, returning when
// the user exits or input reaches EOF.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go a.monitor.Run(ctx)

	fmt.Fprintln(a.out, "billfold CLI (type 'help' for commands)")
	for {
		fmt.Fprintf(a.out, "billfold %s> ", a.status())
		line, err := a.reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			a.help()
		case "register":
			a.register(ctx)
		case "login":
			a.login(ctx)
		case "logout":
			a.auth.Logout()
			fmt.Fprintln(a.out, "Logged out")
		case "client":
			a.client(ctx, args)
		case "invoice":
			a.invoice(ctx, args)
		case "send":
			a.send(ctx, args)
		case "pay":
			a.pay(ctx, args)
		case "expense":
			a.expense(ctx, args)
		case "receipt":
			a.receipt(ctx, args)
		case "profile":
			a.profile(ctx, args)
		case "sync":
			a.sync(ctx)
		case "exit", "quit":
			fmt.Fprintln(a.out, "Bye!")
			return
		default:
			fmt.Fprintln(a.out, "Unknown command:", cmd)
		}
	}
}

func (a *App) help() {
	fmt.Fprintln(a.out, `Available commands:
  register | login | logout
  client add | client list
  invoice add | invoice list
  send <invoice-id>
  pay <invoice-id> <amount> <method>
  expense add | expense list
  receipt <expense-id> <file>
  profile show | profile set
  sync
  exit`)
}

// sync runs a pass immediately and reports the outcome.
func (a *App) sync(ctx context.Context) {
	if !a.auth.LoggedIn() {
		fmt.Fprintln(a.out, "Not logged in; local changes are kept and will sync after login")
		return
	}
	if err := a.engine.Sync(ctx); err != nil {
		fmt.Fprintln(a.out, "Sync failed:", err)
		return
	}
	fmt.Fprintln(a.out, "Sync complete")
}
