package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"invoizo/internal/adapters/repl"
	"invoizo/internal/app"
)

// Run executes a one-shot CLI command and exits.
// args is os.Args[1:]; the first element is the subcommand name.
func Run(ctx context.Context, svc app.ApplicationService, args []string) {
	switch args[0] {
	case "bal", "statement":
		if len(args) < 2 {
			log.Fatal("Usage: invoizo bal <account-code> [from] [to]")
		}
		period := app.PeriodRequest{}
		if len(args) >= 3 {
			period.From = args[2]
		}
		if len(args) >= 4 {
			period.To = args[3]
		}
		st, err := svc.AccountStatement(ctx, args[1], period)
		if err != nil {
			log.Fatalf("Failed to load statement: %v", err)
		}
		repl.PrintStatement(st)

	case "ledger":
		req := app.LedgerBalanceRequest{}
		if len(args) >= 2 {
			req.Preset = args[1]
		}
		report, err := svc.LedgerBalances(ctx, req)
		if err != nil {
			log.Fatalf("Failed to load ledger balance: %v", err)
		}
		repl.PrintLedgerBalance(report)

	case "day":
		if len(args) < 2 {
			log.Fatal("Usage: invoizo day <YYYY-MM-DD>")
		}
		day, err := svc.LoadDay(ctx, args[1])
		if err != nil {
			log.Fatalf("Failed to load day: %v", err)
		}
		repl.PrintDay(day)

	case "stock", "inventory":
		search := ""
		if len(args) >= 2 {
			search = strings.Join(args[1:], " ")
		}
		items, err := svc.ListInventory(ctx, search)
		if err != nil {
			log.Fatalf("Failed to load inventory: %v", err)
		}
		repl.PrintInventory(items)

	case "notify":
		created, err := svc.CheckNotifications(ctx)
		if err != nil {
			log.Fatalf("Notification check failed: %v", err)
		}
		fmt.Printf("%d new notification(s).\n", len(created))
		repl.PrintNotifications(created)

	case "backup":
		if len(args) < 2 {
			key, err := svc.Backup(ctx)
			if err != nil {
				log.Fatalf("Backup failed: %v", err)
			}
			fmt.Printf("Backup uploaded: %s\n", key)
			return
		}
		f, err := os.Create(args[1])
		if err != nil {
			log.Fatalf("Cannot create %s: %v", args[1], err)
		}
		defer f.Close()
		if err := svc.WriteBackup(ctx, f); err != nil {
			log.Fatalf("Backup failed: %v", err)
		}
		fmt.Printf("Backup written to %s\n", args[1])

	case "restore":
		if len(args) < 2 {
			log.Fatal("Usage: invoizo restore <backup-file>")
		}
		f, err := os.Open(args[1])
		if err != nil {
			log.Fatalf("Cannot open %s: %v", args[1], err)
		}
		defer f.Close()
		n, err := svc.RestoreBackup(ctx, f)
		if err != nil {
			log.Fatalf("Restore failed: %v", err)
		}
		fmt.Printf("Restored %d key(s).\n", n)

	case "cfo":
		if len(args) < 2 {
			log.Fatal("Usage: invoizo cfo \"<question>\"")
		}
		a, err := svc.AskCFO(ctx, app.CFOQueryRequest{Query: strings.Join(args[1:], " ")})
		if err != nil {
			log.Fatalf("CFO error: %v", err)
		}
		fmt.Println(a.Text)

	default:
		log.Fatalf("Unknown command: %s\nAvailable: bal, ledger, day, stock, notify, backup, restore, cfo", args[0])
	}
}
