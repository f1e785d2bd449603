package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/topdag/pkg/archive"
	"github.com/matzehuels/topdag/pkg/labels"
	"github.com/matzehuels/topdag/pkg/topdag"
)

func newExploreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "explore <archive>",
		Short: "Interactively navigate an archive without decompressing it",
		Long: `Walk the element tree of an archive interactively.

Navigation runs directly on the compressed DAG through the two-stack
navigator; the tree is never unpacked, so arbitrarily large documents
can be explored.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dag, lab, err := archive.ReadFile(args[0])
			if err != nil {
				return err
			}
			model := newExploreModel(args[0], dag, lab)
			_, err = tea.NewProgram(model, tea.WithContext(cmd.Context())).Run()
			return err
		},
	}
}

// exploreModel is the bubbletea model for archive navigation.
type exploreModel struct {
	file string
	dag  *topdag.Dag
	lab  *labels.Labels
	nav  *topdag.Navigator

	path   []string // breadcrumb of ancestor labels, root first
	status string
}

func newExploreModel(file string, dag *topdag.Dag, lab *labels.Labels) exploreModel {
	return exploreModel{
		file: file,
		dag:  dag,
		lab:  lab,
		nav:  topdag.NewNavigator(dag),
	}
}

func (m exploreModel) Init() tea.Cmd {
	return nil
}

func (m exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	m.status = ""
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "l", "right", "enter":
		cur := m.label()
		if m.nav.FirstChild() {
			m.path = append(m.path, cur)
		} else {
			m.status = "leaf element"
		}
	case "j", "down":
		if !m.nav.NextSibling() {
			m.status = "no next sibling"
		}
	case "h", "left":
		if m.nav.Parent() {
			m.path = m.path[:len(m.path)-1]
		} else {
			m.status = "at the root"
		}
	}
	return m, nil
}

func (m exploreModel) View() string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render("Exploring " + m.file))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("→/l/⏎ first child  ↓/j next sibling  ←/h parent  q quit"))
	b.WriteString("\n\n")

	crumb := strings.Join(m.path, " › ")
	if crumb != "" {
		b.WriteString(StyleDim.Render(crumb + " › "))
	}
	b.WriteString(StyleNumber.Render("<" + m.label() + ">"))
	if m.nav.IsLeaf() {
		b.WriteString(StyleDim.Render("  (leaf)"))
	}
	b.WriteString("\n")

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(StyleDim.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(StyleDim.Render(fmt.Sprintf("DAG: %d nodes, %d edges", m.dag.NumNodes(), m.dag.CountEdges())))
	b.WriteString("\n")
	return b.String()
}

// label resolves the current navigator position to its label string.
// path[:len] holds labels ABOVE the current node, so this always reads
// the cursor itself.
func (m exploreModel) label() string {
	return m.lab.Name(m.nav.Label())
}
