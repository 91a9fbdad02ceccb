package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jhedenpat/kapekiosk-v1-0/internal/config"
	"github.com/jhedenpat/kapekiosk-v1-0/internal/models"
)

var menuJSON bool

// menuCmd prints the catalog the kiosk would serve.
var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Print the menu",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(envFile)
		if err != nil {
			return err
		}
		cat, err := loadCatalog(cfg)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		if menuJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(struct {
				Items  []models.MenuItem `json:"items"`
				AddOns []models.AddOn    `json:"add_ons"`
			}{cat.Items(), cat.AddOns()})
		}

		w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
		for _, category := range cat.Categories() {
			fmt.Fprintln(w, strings.ToUpper(category))
			for _, it := range cat.ItemsIn(category) {
				fmt.Fprintf(w, "  %s\t%s\t%s\n", it.ID, it.Name, it.Price.Display())
			}
		}
		fmt.Fprintln(w, "ADD-ONS")
		for _, a := range cat.AddOns() {
			fmt.Fprintf(w, "  \t%s\t+%s\n", a.Name, a.Price.Display())
		}
		return w.Flush()
	},
}

func init() {
	menuCmd.Flags().BoolVar(&menuJSON, "json", false, "print as JSON")
}
