package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/mkuznecovs/billfold/internal/client/models"
)

func (a *App) expense(ctx context.Context, args []string) {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: expense add | expense list")
		return
	}
	switch args[0] {
	case "add":
		a.expenseAdd(ctx)
	case "list":
		a.expenseList(ctx)
	default:
		fmt.Fprintln(a.out, "Usage: expense add | expense list")
	}
}

func (a *App) expenseAdd(ctx context.Context) {
	e := &models.Expense{}
	var err error
	if e.Description, err = getText(a.reader, "Description", a.out); err != nil || e.Description == "" {
		fmt.Fprintln(a.out, "Description is required")
		return
	}
	e.Category, _ = getText(a.reader, "Category", a.out)
	if e.Amount, err = getFloat(a.reader, "Amount", a.out); err != nil {
		fmt.Fprintln(a.out, "Invalid amount:", err)
		return
	}
	if e.IncurredAt, err = getDate(a.reader, "Incurred on", a.out); err != nil {
		fmt.Fprintln(a.out, "Invalid date:", err)
		return
	}

	if err := a.expenses.Add(ctx, e); err != nil {
		fmt.Fprintln(a.out, "Failed to add expense:", err)
		return
	}
	fmt.Fprintf(a.out, "Added expense %s (%s)\n", e.Description, e.ID)
}

func (a *App) expenseList(ctx context.Context) {
	list, err := a.expenses.List(ctx)
	if err != nil {
		fmt.Fprintln(a.out, "Failed to list expenses:", err)
		return
	}
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No expenses yet")
		return
	}
	for _, e := range list {
		receipt := "-"
		if e.ReceiptKey != "" {
			receipt = e.ReceiptKey
		}
		fmt.Fprintf(a.out, "%s  %-20s %-10s %8.2f  receipt:%s [%s]\n",
			e.ID, e.Description, e.Category, e.Amount, receipt, e.SyncStatus)
	}
}

// receipt uploads a local file as the receipt for an expense. This requires
// connectivity; the row itself still syncs separately.
func (a *App) receipt(ctx context.Context, args []string) {
	if len(args) != 2 {
		fmt.Fprintln(a.out, "Usage: receipt <expense-id> <file>")
		return
	}
	data, err := os.ReadFile(args[1])
	if err != nil {
		fmt.Fprintln(a.out, "Failed to read file:", err)
		return
	}
	key, err := a.expenses.AttachReceipt(ctx, args[0], data)
	if err != nil {
		fmt.Fprintln(a.out, "Failed to attach receipt:", err)
		return
	}
	fmt.Fprintln(a.out, "Receipt uploaded as", key)
}
