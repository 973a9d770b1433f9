package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/crimeviz/pkg/crime"
	"github.com/matzehuels/crimeviz/pkg/errors"
	"github.com/matzehuels/crimeviz/pkg/pipeline"
)

var listDimStyle = lipgloss.NewStyle().Foreground(colorDim)

// datasetListModel is the bubbletea model for choosing a built-in dataset.
type datasetListModel struct {
	Datasets []crime.Dataset
	Cursor   int
	Selected *crime.Dataset
}

func newDatasetListModel(datasets []crime.Dataset) datasetListModel {
	return datasetListModel{Datasets: datasets}
}

func (m datasetListModel) Init() tea.Cmd {
	return nil
}

func (m datasetListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(m.Datasets)-1 {
			m.Cursor++
		}
	case "enter":
		if len(m.Datasets) == 0 {
			return m, tea.Quit
		}
		d := m.Datasets[m.Cursor]
		m.Selected = &d
		return m, tea.Quit
	}
	return m, nil
}

func (m datasetListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Dataset"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ render  q quit"))
	b.WriteString("\n\n")

	rows := make([][]string, 0, len(m.Datasets))
	for i, d := range m.Datasets {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, d.Name, strconv.Itoa(d.Counts.Total()), largest(d.Counts)})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(listDimStyle).
		Headers("", "Dataset", "Total", "Largest").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if row == m.Cursor {
				return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Datasets))))
	return b.String()
}

// largest returns the category with the highest count, ties going to the
// first in category order.
func largest(c crime.Counts) string {
	best, n := "—", 0
	for _, cc := range c.Sorted() {
		if cc.Count > n {
			best, n = string(cc.Category), cc.Count
		}
	}
	return best
}

// pickCommand creates the pick command.
func (c *CLI) pickCommand() *cobra.Command {
	var flags pieFlags

	cmd := &cobra.Command{
		Use:   "pick",
		Short: "Choose a built-in dataset interactively and render its pie",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			final, err := tea.NewProgram(newDatasetListModel(crime.Datasets()), tea.WithContext(cmd.Context())).Run()
			if err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "dataset picker")
			}
			m, ok := final.(datasetListModel)
			if !ok || m.Selected == nil {
				printInfo("No dataset selected")
				return nil
			}

			opts := c.baseOptions()
			opts.Kind = pipeline.KindPie
			opts.Dataset = m.Selected.Name
			if err := flags.apply(&opts); err != nil {
				return err
			}
			return c.runPie(cmd, opts, flags)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&flags.summary, "summary", true, "print a table of the slices")

	return cmd
}
