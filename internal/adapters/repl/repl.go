package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"invoizo/internal/ai"
	"invoizo/internal/app"
	"invoizo/internal/core"
	"invoizo/internal/timeutil"
)

// Run starts the interactive console.
// Slash commands are dispatched deterministically; any other input is sent to
// the CFO assistant as a question.
func Run(ctx context.Context, svc app.ApplicationService, reader *bufio.Reader) {
	name := "Invoizo"
	if b, err := svc.GetBusiness(ctx); err == nil && b.Name != "" {
		name = b.Name
	}

	fmt.Println("Invoizo")
	fmt.Printf("Business: %s\n", name)
	fmt.Println("Ask the CFO a question, or use /help for commands.")
	fmt.Println(strings.Repeat("-", 72))

	errExit := fmt.Errorf("exit")

	dispatchSlash := func(input string) error {
		tokens := strings.Fields(strings.TrimPrefix(input, "/"))
		if len(tokens) == 0 {
			return nil
		}
		cmd := strings.ToLower(tokens[0])
		args := tokens[1:]

		switch cmd {
		case "bal", "statement":
			if len(args) < 1 {
				fmt.Println("Usage: /bal <account-code> [from] [to]")
				return nil
			}
			period := app.PeriodRequest{}
			if len(args) >= 2 {
				period.From = args[1]
			}
			if len(args) >= 3 {
				period.To = args[2]
			}
			st, err := svc.AccountStatement(ctx, args[0], period)
			if err != nil {
				return err
			}
			PrintStatement(st)

		case "ledger":
			req := app.LedgerBalanceRequest{}
			if len(args) > 0 {
				req.Preset = args[0]
			}
			report, err := svc.LedgerBalances(ctx, req)
			if err != nil {
				return err
			}
			PrintLedgerBalance(report)

		case "day":
			date := timeutil.Today()
			if len(args) > 0 {
				date = args[0]
			}
			day, err := svc.LoadDay(ctx, date)
			if err != nil {
				return err
			}
			PrintDay(day)

		case "customers":
			list, err := svc.ListCustomers(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			printCustomers(list)

		case "stock", "inventory":
			items, err := svc.ListInventory(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			PrintInventory(items)

		case "bills":
			req := app.BillListRequest{}
			if len(args) >= 1 {
				req.From = args[0]
			}
			if len(args) >= 2 {
				req.To = args[1]
			}
			bills, err := svc.ListSalesBills(ctx, req)
			if err != nil {
				return err
			}
			printBills(bills)

		case "new-bill":
			custCode := ""
			if len(args) > 0 {
				custCode = args[0]
			}
			handleNewBill(ctx, reader, svc, custCode)

		case "cancel":
			if len(args) < 1 {
				fmt.Println("Usage: /cancel <bill-id>")
				return nil
			}
			bill, err := svc.CancelSalesBill(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Bill %s CANCELLED. Stock restored.\n", bill.InvoiceNo)

		case "dashboard":
			year := 0
			if len(args) > 0 {
				y, err := strconv.Atoi(args[0])
				if err != nil {
					fmt.Printf("Invalid year: %s\n", args[0])
					return nil
				}
				year = y
			}
			m, err := svc.Dashboard(ctx, year)
			if err != nil {
				return err
			}
			printDashboard(m)

		case "notify":
			if _, err := svc.CheckNotifications(ctx); err != nil {
				return err
			}
			res, err := svc.ListNotifications(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("%d unread.\n", res.Unread)
			PrintNotifications(res.Notifications)

		case "help", "h":
			printHelp()

		case "exit", "quit", "e", "q":
			return errExit

		default:
			fmt.Printf("Unknown command: /%s  (type /help for all commands)\n", cmd)
		}
		return nil
	}

	for {
		fmt.Print("\n> ")
		input, err := reader.ReadString('\n')
		input = strings.TrimSpace(input)
		if input == "" {
			if err != nil {
				return
			}
			continue
		}

		if strings.HasPrefix(input, "/") {
			if err := dispatchSlash(input); err != nil {
				if err == errExit {
					fmt.Println("Goodbye!")
					break
				}
				fmt.Printf("Error: %s\n", core.UserMessage(err))
			}
			continue
		}

		fmt.Println("[CFO] Thinking...")
		a, err := svc.AskCFO(ctx, app.CFOQueryRequest{Query: input})
		if errors.Is(err, ai.ErrNotConfigured) {
			fmt.Println("The CFO assistant needs an OpenAI API key (OPENAI_API_KEY).")
			continue
		}
		if err != nil {
			fmt.Printf("Error: %s\n", core.UserMessage(err))
			continue
		}
		fmt.Println()
		fmt.Println(a.Text)
	}
}

func printHelp() {
	fmt.Println(`Commands:
  /bal <code> [from] [to]   account statement (customer id, S-<id>, CASH-..., BANK-...)
  /ledger [preset]          ledger balance (thisMonth, lastMonth, thisFinancialYear, lastFinancialYear)
  /day [YYYY-MM-DD]         day book with opening and closing balance
  /customers [search]       customer list
  /stock [search]           inventory with stock value
  /bills [from] [to]        sales bills
  /new-bill [customer-id]   enter a sales bill (credit when a customer is given)
  /cancel <bill-id>         cancel a sales bill and restore stock
  /dashboard [year]         headline sales figures
  /notify                   run the overdue check and list notifications
  /exit                     quit

Anything else is sent to the CFO assistant.`)
}
