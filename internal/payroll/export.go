package payroll

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var slipPrinter = message.NewPrinter(language.English)

// RenderPayslip formats a plain-text payslip: the on-file salary, approved
// advances deducted, and the net payable. Amounts use grouped digits.
func RenderPayslip(salary Salary, advances []Advance) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "PAYSLIP\n")
	if salary.EmployeeName != "" {
		fmt.Fprintf(&sb, "Employee: %s (#%d)\n", salary.EmployeeName, salary.EmployeeID)
	} else {
		fmt.Fprintf(&sb, "Employee: #%d\n", salary.EmployeeID)
	}
	fmt.Fprintf(&sb, "Effective from: %s\n", salary.EffectiveFrom.Format("2006-01-02"))
	fmt.Fprintf(&sb, "Base salary: %s\n", slipPrinter.Sprintf("%.2f", salary.Amount))

	var deducted float64
	for _, adv := range advances {
		if adv.Status != AdvanceApproved {
			continue
		}
		deducted += adv.Amount
		fmt.Fprintf(&sb, "Advance %s: -%s\n",
			adv.RequestedAt.Format("2006-01-02"), slipPrinter.Sprintf("%.2f", adv.Amount))
	}
	fmt.Fprintf(&sb, "Net payable: %s\n", slipPrinter.Sprintf("%.2f", salary.Amount-deducted))
	return sb.String()
}
