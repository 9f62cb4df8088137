package repl

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"invoizo/internal/app"
	"invoizo/internal/core"
)

// handleNewBill runs an interactive sales bill entry session. A customer code
// makes it a credit bill; without one it is a cash sale.
func handleNewBill(ctx context.Context, reader *bufio.Reader, svc app.ApplicationService, custCode string) {
	input := core.SalesBillInput{PaymentType: core.PaymentCash}
	if custCode != "" {
		cust, err := svc.GetCustomer(ctx, custCode)
		if err != nil {
			fmt.Printf("Error: %s\n", core.UserMessage(err))
			return
		}
		input.PaymentType = core.PaymentCredit
		input.CustCode = cust.ID
		input.CustName = cust.Name
		input.Address = cust.Address
		fmt.Printf("Credit bill for %s (%s)\n", cust.Name, cust.ID)
	} else {
		fmt.Println("Cash bill")
	}
	fmt.Println("Enter bill lines. Type 'done' when finished, 'cancel' to abort.")
	fmt.Println("Format per line: <product-code> <pieces> [rate]")
	fmt.Println("  Example: 12 24")
	fmt.Println("  Example: 12 24 41.50   (overrides the product selling rate)")

	lineNum := 1
	for {
		fmt.Printf("  Line %d: ", lineNum)
		raw, err := reader.ReadString('\n')
		raw = strings.TrimSpace(raw)
		if strings.ToLower(raw) == "cancel" || (raw == "" && err != nil) {
			fmt.Println("Bill entry cancelled.")
			return
		}
		if strings.ToLower(raw) == "done" {
			break
		}
		if raw == "" {
			continue
		}

		parts := strings.Fields(raw)
		if len(parts) < 2 {
			fmt.Println("  Invalid format. Use: <product-code> <pieces> [rate]")
			continue
		}
		product, err := svc.GetProduct(ctx, parts[0])
		if err != nil {
			fmt.Printf("  %s\n", core.UserMessage(err))
			continue
		}
		qty := core.ParseAmount(parts[1])
		if !qty.IsPositive() {
			fmt.Println("  Invalid quantity.")
			continue
		}
		rate := product.SellingRate
		if rate.IsZero() {
			rate = product.Rate
		}
		if len(parts) >= 3 {
			rate = core.ParseAmount(parts[2])
			if rate.IsNegative() {
				fmt.Println("  Invalid rate.")
				continue
			}
		}

		input.Items = append(input.Items, core.SalesItem{
			Code: product.ID,
			Name: product.Name,
			Qty:  qty,
			Rate: rate,
		})
		lineNum++
	}

	if len(input.Items) == 0 {
		fmt.Println("No lines entered. Bill not saved.")
		return
	}

	fmt.Print("\nSave this bill? (y/n): ")
	choice, _ := reader.ReadString('\n')
	choice = strings.TrimSpace(strings.ToLower(choice))
	if choice != "y" && choice != "yes" {
		fmt.Println("Bill discarded.")
		return
	}

	bill, err := svc.CreateSalesBill(ctx, input)
	if err != nil {
		fmt.Printf("Bill FAILED: %s\n", core.UserMessage(err))
		return
	}
	printBill(bill)
	fmt.Println("Bill SAVED.")
}
