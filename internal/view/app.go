// Package view es la interfaz de terminal de la tienda: cabecera de
// navegacion, listado de productos, formularios, carrito y notificaciones.
package view

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"go.uber.org/zap"

	"storefront/internal/api"
	"storefront/internal/auth"
	"storefront/internal/domain"
	"storefront/internal/service"
)

type route int

const (
	routeHome route = iota
	routeLogin
	routeRegister
	routeLogout
	routeAddProduct
	routeUpdateProduct
	routeCheckout
	routeQuit
)

const backCommand = "/back"

var errQuit = errors.New("quit")

// AuthSource es la parte del auth.Context que necesita la vista.
type AuthSource interface {
	Current() (domain.Session, bool)
	Subscribe(fn auth.Listener) (unsubscribe func())
}

type Options struct {
	Logger   *zap.Logger
	Auth     AuthSource
	Account  *service.AccountService
	Catalog  *service.CatalogService
	Cart     *service.CartService
	AssetURL func(path string) string
}

// App atiende una accion de usuario por vez sobre un par lector/escritor.
type App struct {
	in       io.Reader
	out      io.Writer
	logger   *zap.Logger
	auth     AuthSource
	account  *service.AccountService
	catalog  *service.CatalogService
	cart     *service.CartService
	assetURL func(string) string

	lines chan string
	done  chan struct{}

	products   []domain.Product
	selectedID string
}

func New(in io.Reader, out io.Writer, opts Options) *App {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.AssetURL == nil {
		opts.AssetURL = func(p string) string { return p }
	}
	return &App{
		in:       in,
		out:      out,
		logger:   opts.Logger,
		auth:     opts.Auth,
		account:  opts.Account,
		catalog:  opts.Catalog,
		cart:     opts.Cart,
		assetURL: opts.AssetURL,
	}
}

// Run muestra la cabecera y recorre las pantallas hasta que el usuario sale,
// la entrada se agota o ctx se cancela.
func (a *App) Run(ctx context.Context) error {
	a.lines = make(chan string)
	a.done = make(chan struct{})
	defer close(a.done)
	go a.scan()

	unsubscribe := a.auth.Subscribe(func(s domain.Session, authenticated bool) {
		a.renderHeader(s, authenticated)
	})
	defer unsubscribe()

	sess, ok := a.auth.Current()
	a.renderHeader(sess, ok)

	current := routeHome
	for current != routeQuit {
		next, err := a.screen(current)(ctx)
		if errors.Is(err, errQuit) {
			break
		}
		if err != nil {
			return err
		}
		current = next
	}
	fmt.Fprintln(a.out, "Bye.")
	return nil
}

func (a *App) screen(r route) func(context.Context) (route, error) {
	switch r {
	case routeLogin:
		return a.login
	case routeRegister:
		return a.register
	case routeLogout:
		return a.logout
	case routeAddProduct:
		return a.addProduct
	case routeUpdateProduct:
		return a.updateProduct
	case routeCheckout:
		return a.checkout
	default:
		return a.home
	}
}

func (a *App) scan() {
	defer close(a.lines)
	sc := bufio.NewScanner(a.in)
	for sc.Scan() {
		select {
		case a.lines <- sc.Text():
		case <-a.done:
			return
		}
	}
}

// readLine escribe el prompt y espera una linea. Fin de entrada o
// cancelacion devuelven errQuit.
func (a *App) readLine(ctx context.Context, prompt string) (string, error) {
	fmt.Fprint(a.out, prompt)
	select {
	case <-ctx.Done():
		return "", errQuit
	case line, ok := <-a.lines:
		if !ok {
			return "", errQuit
		}
		return strings.TrimSpace(line), nil
	}
}

func (a *App) renderHeader(s domain.Session, authenticated bool) {
	if authenticated {
		name := s.User.Name
		if name == "" {
			name = s.User.Email
		}
		fmt.Fprintf(a.out, "\n[HOME] [Checkout] [Logout]  signed in as %s\n", name)
		return
	}
	fmt.Fprintln(a.out, "\n[HOME] [Login] [Register]")
}

// navigate resuelve los comandos de la cabecera segun el estado de sesion.
func (a *App) navigate(cmd string) (route, bool) {
	_, authenticated := a.auth.Current()
	switch cmd {
	case "home":
		return routeHome, true
	case "quit", "exit":
		return routeQuit, true
	case "login":
		return routeLogin, !authenticated
	case "register":
		return routeRegister, !authenticated
	case "logout":
		return routeLogout, authenticated
	case "checkout":
		return routeCheckout, authenticated
	}
	return 0, false
}

func (a *App) title(name, hint string) {
	fmt.Fprintf(a.out, "\n-- %s --\n", name)
	if hint != "" {
		fmt.Fprintln(a.out, hint)
	}
}

func (a *App) success(msg string) {
	fmt.Fprintf(a.out, "[success] %s\n", msg)
}

func (a *App) failure(msg string) {
	fmt.Fprintf(a.out, "[error] %s\n", msg)
}

// fail notifica el error; nunca se propaga fuera de la pantalla.
func (a *App) fail(err error) {
	a.logger.Debug("view action failed", zap.Error(err))
	a.failure(describe(err))
}

// showInvalid imprime los errores de validacion junto al formulario.
func (a *App) showInvalid(err error) bool {
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		return false
	}
	var fields validation.Errors
	if !errors.As(verr.Err, &fields) {
		fmt.Fprintf(a.out, "  %v\n", verr.Err)
		return true
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(a.out, "  %s: %v\n", k, fields[k])
	}
	return true
}

// needsLogin indica si la falla amerita mandar al usuario al login.
func needsLogin(err error) bool {
	return errors.Is(err, domain.ErrSessionMissing) || api.IsAuthFailure(err)
}

func describe(err error) string {
	var ne *api.NetworkError
	switch {
	case errors.Is(err, domain.ErrSessionMissing):
		return "Please log in to continue"
	case errors.As(err, &ne):
		return "Could not reach the server, check your connection"
	}
	if msg, ok := api.ServerMessage(err); ok {
		return msg
	}
	return "Something went wrong"
}

func splitCommand(line string) (string, string) {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	return strings.ToLower(cmd), strings.TrimSpace(arg)
}
