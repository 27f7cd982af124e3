package cmd

import (
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// Shell scripts come from cobra's default completion command. The functions
// here complete flag values.

var outputFormats = []string{
	"table\tAligned columns",
	"json\tOne JSON document",
}

// destinationCountries are offered first for --country; any ISO code is accepted
var destinationCountries = []string{
	"AT\tAustria",
	"DE\tGermany",
	"CH\tSwitzerland",
	"IT\tItaly",
	"SI\tSlovenia",
	"HU\tHungary",
	"CZ\tCzechia",
	"SK\tSlovakia",
}

func completeOutputFormat(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return filterCompletions(outputFormats, toComplete), cobra.ShellCompDirectiveNoFileComp
}

func completeCountry(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return filterCompletions(destinationCountries, toComplete), cobra.ShellCompDirectiveNoFileComp
}

// completeShipDate offers today and the following working days
func completeShipDate(now func() time.Time) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return filterCompletions(shipDates(now(), 5), toComplete), cobra.ShellCompDirectiveNoFileComp
	}
}

func shipDates(from time.Time, n int) []string {
	dates := []string{from.Format(time.DateOnly) + "\ttoday"}
	for day := from.AddDate(0, 0, 1); len(dates) < n; day = day.AddDate(0, 0, 1) {
		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			continue
		}
		dates = append(dates, day.Format(time.DateOnly)+"\t"+day.Weekday().String())
	}
	return dates
}

// filterCompletions keeps the candidates whose value starts with prefix,
// ignoring case
func filterCompletions(candidates []string, prefix string) []string {
	var out []string
	for _, c := range candidates {
		value, _, _ := strings.Cut(c, "\t")
		if strings.HasPrefix(strings.ToLower(value), strings.ToLower(prefix)) {
			out = append(out, c)
		}
	}
	return out
}
