package main

import (
	"context"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

// listInstitutions prints a table of registered institutions and the state of
// their microsites.
func (cli *commandLine) listInstitutions() error {
	ctx := context.Background()
	insts, err := cli.instRepo.QueryInstitutions(ctx)
	if err != nil {
		return err
	}

	on := color.New(color.FgGreen).SprintFunc()
	off := color.New(color.FgRed).SprintFunc()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Name", "Name (EN)", "Microsite", "Created"})
	table.SetBorder(false)
	for _, inst := range insts {
		microsite := off("off")
		if inst.MicrositeEnabled {
			microsite = on("on")
		}
		table.Append([]string{
			inst.ID,
			inst.Name,
			inst.NameEn,
			microsite,
			inst.CreatedAt.Format("2006-01-02"),
		})
	}
	table.SetFooter([]string{"", "", "", "Total", strconv.Itoa(len(insts))})
	table.Render()
	return nil
}
