package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/adam/internal/core/domain"
)

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "List supported file types",
	Long: `Lists each file family Adam can read, the extensions that map to it,
and any external program it needs. Image text extraction requires an OCR
engine such as tesseract.`,
	Args: cobra.NoArgs,
	RunE: runTypes,
}

func init() {
	rootCmd.AddCommand(typesCmd)
}

func runTypes(cmd *cobra.Command, _ []string) error {
	svc, err := loadServices()
	if err != nil {
		return err
	}
	if svc.Tools == nil {
		return errors.New("tool dispatcher not configured")
	}

	result := svc.Tools.Dispatch(cmd.Context(), domain.ToolCall{Name: string(domain.ToolTypes)})
	if result.IsError() {
		return fmt.Errorf("types failed: %s", result.Error.Message)
	}
	caps, ok := result.Payload.([]domain.Capability)
	if !ok {
		return fmt.Errorf("types returned %T", result.Payload)
	}

	rows := make([][]string, 0, len(caps))
	for _, c := range caps {
		available := "yes"
		if !c.Available {
			available = "no"
		}
		requires := c.Requires
		if requires == "" {
			requires = "-"
		}
		rows = append(rows, []string{
			string(c.MimeClass),
			c.Description,
			strings.Join(c.Extensions, " "),
			requires,
			available,
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("TYPE", "DESCRIPTION", "EXTENSIONS", "REQUIRES", "AVAILABLE").
		Rows(rows...)
	cmd.Println(t.Render())
	return nil
}
