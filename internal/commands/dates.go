package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/financas-app/statement-parser/internal/invoicedates"
	"github.com/financas-app/statement-parser/internal/models"
)

func newDatesCommand() *cobra.Command {
	var (
		closingDay int
		dueDay     int
		month      int
		year       int
	)

	cmd := &cobra.Command{
		Use:   "dates",
		Short: "Calculate closing and due dates for a card and competency",
		RunE: func(cmd *cobra.Command, args []string) error {
			dates, err := invoicedates.CalculateInvoiceDates(
				models.CardDates{ClosingDay: closingDay, DueDay: dueDay},
				models.InvoiceCompetency{Month: month, Year: year},
			)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Closing date: %s (%s)\n",
				invoicedates.FormatForDisplay(dates.ClosingDate), dates.ClosingDateISO)
			fmt.Fprintf(out, "Due date:     %s (%s)\n",
				invoicedates.FormatForDisplay(dates.DueDate), dates.DueDateISO)
			return nil
		},
	}

	cmd.Flags().IntVar(&closingDay, "closing-day", 0, "Card closing day (1-31)")
	cmd.Flags().IntVar(&dueDay, "due-day", 0, "Card due day (1-31)")
	cmd.Flags().IntVar(&month, "month", 0, "Competency month (1-12)")
	cmd.Flags().IntVar(&year, "year", 0, "Competency year (2020-2100)")
	_ = cmd.MarkFlagRequired("closing-day")
	_ = cmd.MarkFlagRequired("due-day")
	_ = cmd.MarkFlagRequired("month")
	_ = cmd.MarkFlagRequired("year")

	return cmd
}
