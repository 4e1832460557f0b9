package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/mkuznecovs/billfold/internal/client/models"
)

func (a *App) client(ctx context.Context, args []string) {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: client add | client list")
		return
	}
	switch args[0] {
	case "add":
		a.clientAdd(ctx)
	case "list":
		a.clientList(ctx)
	default:
		fmt.Fprintln(a.out, "Usage: client add | client list")
	}
}

func (a *App) clientAdd(ctx context.Context) {
	c := &models.Client{}
	var err error
	if c.Name, err = getText(a.reader, "Name", a.out); err != nil || c.Name == "" {
		fmt.Fprintln(a.out, "Name is required")
		return
	}
	c.Email, _ = getText(a.reader, "Email", a.out)
	c.Phone, _ = getText(a.reader, "Phone", a.out)
	c.Address, _ = getText(a.reader, "Address", a.out)

	if err := a.clients.Create(ctx, c); err != nil {
		fmt.Fprintln(a.out, "Failed to add client:", err)
		return
	}
	fmt.Fprintf(a.out, "Added client %s (%s)\n", c.Name, c.ID)
}

func (a *App) clientList(ctx context.Context) {
	list, err := a.clients.GetAll(ctx)
	if err != nil {
		fmt.Fprintln(a.out, "Failed to list clients:", err)
		return
	}
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No clients yet")
		return
	}
	for _, c := range list {
		fmt.Fprintf(a.out, "%s  %-20s %-25s [%s]\n", c.ID, c.Name, c.Email, c.SyncStatus)
	}
}

func (a *App) invoice(ctx context.Context, args []string) {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: invoice add | invoice list")
		return
	}
	switch args[0] {
	case "add":
		a.invoiceAdd(ctx)
	case "list":
		a.invoiceList(ctx)
	default:
		fmt.Fprintln(a.out, "Usage: invoice add | invoice list")
	}
}

func (a *App) invoiceAdd(ctx context.Context) {
	clientName, err := getText(a.reader, "Client name", a.out)
	if err != nil || clientName == "" {
		fmt.Fprintln(a.out, "Client name is required")
		return
	}
	number, _ := getText(a.reader, "Invoice number", a.out)
	dueDate, err := getDate(a.reader, "Due date", a.out)
	if err != nil {
		fmt.Fprintln(a.out, "Invalid date:", err)
		return
	}
	notes, _ := getText(a.reader, "Notes", a.out)

	var items []models.LineItem
	for {
		desc, err := getText(a.reader, "Line item description (empty to finish)", a.out)
		if err != nil || desc == "" {
			break
		}
		qty, err := getFloat(a.reader, "Quantity", a.out)
		if err != nil {
			fmt.Fprintln(a.out, "Invalid quantity:", err)
			return
		}
		price, err := getFloat(a.reader, "Unit price", a.out)
		if err != nil {
			fmt.Fprintln(a.out, "Invalid price:", err)
			return
		}
		items = append(items, models.LineItem{Description: desc, Quantity: qty, UnitPrice: price})
	}

	inv, err := a.invoices.CreateInvoice(ctx, clientName, number, dueDate, notes, items)
	if err != nil {
		fmt.Fprintln(a.out, "Failed to create invoice:", err)
		return
	}
	fmt.Fprintf(a.out, "Created invoice %s (%s) for %.2f\n", inv.Number, inv.ID, inv.TotalAmount)
}

func (a *App) invoiceList(ctx context.Context) {
	list, err := a.invoices.List(ctx)
	if err != nil {
		fmt.Fprintln(a.out, "Failed to list invoices:", err)
		return
	}
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No invoices yet")
		return
	}
	for _, inv := range list {
		fmt.Fprintf(a.out, "%s  %-10s %-8s %8.2f  items:%d [%s]\n",
			inv.ID, inv.Number, inv.Status, inv.TotalAmount, len(inv.Items), inv.SyncStatus)
	}
}

func (a *App) send(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(a.out, "Usage: send <invoice-id>")
		return
	}
	if err := a.invoices.MarkSent(ctx, args[0]); err != nil {
		fmt.Fprintln(a.out, "Failed to mark sent:", err)
		return
	}
	fmt.Fprintln(a.out, "Invoice marked as sent")
}

func (a *App) pay(ctx context.Context, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(a.out, "Usage: pay <invoice-id> <amount> [method]")
		return
	}
	amount, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		fmt.Fprintln(a.out, "Invalid amount:", args[1])
		return
	}
	method := "other"
	if len(args) > 2 {
		method = args[2]
	}
	if _, err := a.invoices.RecordPayment(ctx, args[0], amount, method); err != nil {
		fmt.Fprintln(a.out, "Failed to record payment:", err)
		return
	}
	fmt.Fprintf(a.out, "Recorded payment of %.2f\n", amount)
}
