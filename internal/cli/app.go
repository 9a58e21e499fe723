// Package cli is the terminal client of the back office. It reuses the
// BFF's services, so every rule the screens enforce applies here too. The
// session lives only as long as the process.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/verona-marmoleria/backoffice-bff-go/internal/domain"
	"github.com/verona-marmoleria/backoffice-bff-go/internal/service"

	"go.uber.org/zap"
)

// App is one interactive session.
type App struct {
	auth       *service.AuthService
	sales      *service.SalesService
	blueprints *service.BlueprintService

	sess   *domain.Session
	reader *bufio.Reader
	out    io.Writer
	fd     int
	logger *zap.Logger
}

// Deps are the services the client drives.
type Deps struct {
	Auth       *service.AuthService
	Sales      *service.SalesService
	Blueprints *service.BlueprintService
	Logger     *zap.Logger
}

// NewApp reads commands from in and writes to out. fd is the terminal the
// password prompt reads from.
func NewApp(d Deps, in io.Reader, out io.Writer, fd int) *App {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &App{
		auth:       d.Auth,
		sales:      d.Sales,
		blueprints: d.Blueprints,
		sess:       domain.NewSession(),
		reader:     bufio.NewReader(in),
		out:        out,
		fd:         fd,
		logger:     logger,
	}
}

const help = `Comandos:
  login                 iniciar sesión
  sales [texto]         listar ventas, o buscar por texto
  sale <venta>          ver el detalle de una venta
  status <venta> <est>  cambiar el estado de una venta
  blueprints <venta>    listar planos de una venta
  blueprint <plano>     ver el detalle de un plano
  branches              listar sucursales
  logout                cerrar sesión
  exit                  salir
`

// Run reads commands until exit, EOF or ctx is done.
func (a *App) Run(ctx context.Context) error {
	fmt.Fprint(a.out, help)
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		line, err := prompt(a.reader, a.out, "> ")
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if line == "" {
			continue
		}
		if quit := a.Exec(ctx, line); quit {
			return nil
		}
	}
}

// Exec runs one command line and reports whether the client should exit.
func (a *App) Exec(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	cmd, args := fields[0], fields[1:]

	var err error
	switch cmd {
	case "exit", "quit":
		return true
	case "help":
		fmt.Fprint(a.out, help)
	case "login":
		err = a.login(ctx)
	case "logout":
		a.auth.Logout(a.sess)
		fmt.Fprintln(a.out, "Sesión cerrada.")
	case "sales":
		err = a.listSales(ctx, strings.Join(args, " "))
	case "sale":
		err = a.showSale(ctx, args)
	case "status":
		err = a.setStatus(ctx, args)
	case "blueprints":
		err = a.listBlueprints(ctx, args)
	case "blueprint":
		err = a.showBlueprint(ctx, args)
	case "branches":
		err = a.listBranches(ctx)
	default:
		fmt.Fprintf(a.out, "Comando desconocido: %s\n", cmd)
	}

	if err != nil {
		a.logger.Debug("command failed", zap.String("cmd", cmd), zap.Error(err))
		fmt.Fprintln(a.out, "Error:", domain.UserMessage(err, "No se pudo completar la operación."))
	}
	return false
}

func (a *App) login(ctx context.Context) error {
	name, err := prompt(a.reader, a.out, "Usuario: ")
	if err != nil {
		return err
	}
	password, err := promptPassword(a.out, a.fd)
	if err != nil {
		return err
	}

	// A failed attempt keeps whatever session was already open.
	next := domain.NewSession()
	if err := a.auth.Login(ctx, next, name, password); err != nil {
		fmt.Fprintln(a.out, "Error:", service.LoginMessage(err))
		return nil
	}
	a.sess = next
	fmt.Fprintf(a.out, "Bienvenido, %s!\n", next.User().UserName)
	return nil
}

func (a *App) listSales(ctx context.Context, term string) error {
	var (
		sales []domain.Sale
		err   error
	)
	if term == "" {
		sales, err = a.sales.List(ctx, a.sess)
	} else {
		sales, err = a.sales.Search(ctx, a.sess, term)
	}
	if err != nil {
		return err
	}
	if len(sales) == 0 {
		fmt.Fprintln(a.out, service.MsgNoSales)
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCLIENTE\tESTADO\tTOTAL\tSALDO\tFECHA")
	for _, s := range sales {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			s.SaleID, s.CustomerName, s.Status.Label(), s.TotalAmount, s.Balance(), s.CreatedAt.Display())
	}
	return tw.Flush()
}

// parseID reads a positive id; it prints what went wrong and reports false
// on bad input.
func (a *App) parseID(args []string, n int, usage, invalid string) (int64, bool) {
	if len(args) != n {
		fmt.Fprintln(a.out, usage)
		return 0, false
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		fmt.Fprintln(a.out, invalid)
		return 0, false
	}
	return id, true
}

func (a *App) showSale(ctx context.Context, args []string) error {
	saleID, ok := a.parseID(args, 1, "Uso: sale <venta>", "Número de venta inválido.")
	if !ok {
		return nil
	}
	sale, err := a.sales.Get(ctx, a.sess, saleID)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Venta\t%d\n", sale.SaleID)
	fmt.Fprintf(tw, "Cliente\t%s\n", sale.CustomerName)
	fmt.Fprintf(tw, "Teléfono\t%s\n", sale.PhoneNumber)
	fmt.Fprintf(tw, "Detalles\t%s\n", sale.Details)
	fmt.Fprintf(tw, "Sucursal\t%d\n", sale.BranchID)
	fmt.Fprintf(tw, "Método de pago\t%s\n", sale.PaymentMethod)
	fmt.Fprintf(tw, "Total\t%s\n", sale.TotalAmount)
	fmt.Fprintf(tw, "Entregas\t%s\n", sale.TotalMoneyEntries)
	fmt.Fprintf(tw, "Saldo\t%s\n", sale.Balance())
	fmt.Fprintf(tw, "Estado\t%s\n", sale.Status.Label())
	fmt.Fprintf(tw, "Creada\t%s\n", sale.CreatedAt.Display())
	return tw.Flush()
}

// setStatus moves a sale to another status, keeping every other field.
func (a *App) setStatus(ctx context.Context, args []string) error {
	saleID, ok := a.parseID(args, 2, "Uso: status <venta> <estado>", "Número de venta inválido.")
	if !ok {
		return nil
	}
	status := domain.SaleStatus(args[1])
	if !status.Valid() {
		fmt.Fprintf(a.out, "Estado inválido. Use uno de: %s\n", statusList())
		return nil
	}

	sale, err := a.sales.Get(ctx, a.sess, saleID)
	if err != nil {
		return err
	}
	draft := domain.DraftFromSale(*sale)
	draft.Status = status

	out := a.sales.Update(ctx, a.sess, saleID, draft)
	fmt.Fprintln(a.out, out.Notification.Message)
	return nil
}

func statusList() string {
	names := make([]string, len(domain.SaleStatuses))
	for i, st := range domain.SaleStatuses {
		names[i] = string(st)
	}
	return strings.Join(names, ", ")
}

func (a *App) showBlueprint(ctx context.Context, args []string) error {
	id, ok := a.parseID(args, 1, "Uso: blueprint <plano>", "Número de plano inválido.")
	if !ok {
		return nil
	}
	bp, err := a.blueprints.Get(ctx, a.sess, id)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Plano\t%d\n", bp.BlueprintID)
	fmt.Fprintf(tw, "Venta\t%d\n", bp.SaleID)
	fmt.Fprintf(tw, "Código\t%s\n", bp.BlueprintCode)
	fmt.Fprintf(tw, "Descripción\t%s\n", bp.Description)
	fmt.Fprintf(tw, "Material\t%s\n", bp.Material)
	fmt.Fprintf(tw, "Color\t%s\n", bp.Colour)
	fmt.Fprintf(tw, "Estado\t%s\n", bp.Status)
	if bp.PhotoURL != "" {
		fmt.Fprintf(tw, "Foto\t%s\n", bp.PhotoURL)
	}
	return tw.Flush()
}

func (a *App) listBlueprints(ctx context.Context, args []string) error {
	saleID, ok := a.parseID(args, 1, "Uso: blueprints <venta>", "Número de venta inválido.")
	if !ok {
		return nil
	}

	bps, err := a.blueprints.List(ctx, a.sess, saleID)
	if err != nil {
		return err
	}
	if len(bps) == 0 {
		fmt.Fprintln(a.out, "No se encontraron planos")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCÓDIGO\tMATERIAL\tCOLOR\tESTADO")
	for _, b := range bps {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", b.BlueprintID, b.BlueprintCode, b.Material, b.Colour, b.Status)
	}
	return tw.Flush()
}

func (a *App) listBranches(ctx context.Context) error {
	branches, err := a.sales.Branches(ctx, a.sess)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSUCURSAL")
	for _, b := range branches {
		fmt.Fprintf(tw, "%d\t%s\n", b.BranchID, b.Label())
	}
	return tw.Flush()
}
