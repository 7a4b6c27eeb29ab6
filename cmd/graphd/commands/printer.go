package commands

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	"graphd/core"
	"graphd/core/plan"
)

// printDataSet renders a result set as a markdown table, grounded on the
// teacher's table_formatter.go FormatRelation/formatTable, generalized
// from Datalog tuples of interface{} to core.Row's typed Value.
func printDataSet(ds *core.DataSet) {
	if ds == nil || ds.IsEmpty() {
		fmt.Println(color.YellowString("(no rows)"))
		return
	}

	var sb strings.Builder
	alignment := make([]tw.Align, len(ds.ColNames))
	for i := range alignment {
		alignment[i] = tw.AlignNone
	}
	table := tablewriter.NewTable(&sb,
		tablewriter.WithRenderer(renderer.NewMarkdown()),
		tablewriter.WithAlignment(alignment),
		tablewriter.WithHeaderAutoFormat(tw.Off),
	)
	table.Header(ds.ColNames)
	for _, row := range ds.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = formatValue(v)
		}
		table.Append(cells)
	}
	table.Render()

	fmt.Println(sb.String())
	fmt.Println(color.CyanString("%d rows", ds.Size()))
}

// formatValue renders one column value for the table, switching on
// Value.Kind the way the teacher's formatValue switches on interface{}'s
// dynamic type.
func formatValue(v core.Value) string {
	if v.IsNull() {
		return color.RedString(v.NullKind().String())
	}
	switch v.Kind() {
	case core.KindBool:
		return fmt.Sprintf("%t", v.AsBool())
	case core.KindInt:
		return fmt.Sprintf("%d", v.AsInt())
	case core.KindFloat:
		return fmt.Sprintf("%.4f", v.AsFloat())
	case core.KindString:
		return v.AsString()
	case core.KindVertex:
		return formatVertex(v.AsVertex())
	case core.KindEdge:
		return formatEdge(v.AsEdge())
	case core.KindMap:
		return formatMap(v.AsMap())
	case core.KindList, core.KindSet:
		items := v.AsList()
		if v.Kind() == core.KindSet {
			items = v.AsSet()
		}
		parts := make([]string, len(items))
		for i, it := range items {
			parts[i] = formatValue(it)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return v.AsString()
	}
}

func formatVertex(vx *core.Vertex) string {
	if vx == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(vx.ID.String())
	for _, tag := range vx.Tags {
		sb.WriteString(" :")
		sb.WriteString(tag.TagName)
		sb.WriteString(formatMap(tag.Props))
	}
	return sb.String()
}

func formatEdge(e *core.Edge) string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s-[%s]->%s%s", e.Src.String(), e.Name, e.Dst.String(), formatMap(e.Props))
}

func formatMap(m map[string]core.Value) string {
	if len(m) == 0 {
		return ""
	}
	parts := make([]string, 0, len(m))
	for k, v := range m {
		parts = append(parts, fmt.Sprintf("%s=%s", k, formatValue(v)))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// printExplain renders an EXPLAIN tree, colorized the way the teacher's
// annotations/output.go colorizes plan descriptions (blue node ids,
// cyan node kinds, yellow description text).
func printExplain(n *plan.ExplainNode) {
	printExplainIndent(n, "")
}

func printExplainIndent(n *plan.ExplainNode, indent string) {
	if n == nil {
		return
	}
	desc := make([]string, len(n.Description))
	for i, d := range n.Description {
		desc[i] = fmt.Sprintf("%s=%s", d.Key, d.Value)
	}
	fmt.Printf("%s%s %s%s\n",
		indent,
		color.BlueString("#%d", n.ID),
		color.CyanString(n.Kind),
		yellowSuffix(desc))

	childIndent := indent + "  "
	if n.Body != nil {
		fmt.Printf("%sbody:\n", childIndent)
		printExplainIndent(n.Body, childIndent+"  ")
	}
	if n.Then != nil {
		fmt.Printf("%sthen:\n", childIndent)
		printExplainIndent(n.Then, childIndent+"  ")
	}
	if n.Else != nil {
		fmt.Printf("%selse:\n", childIndent)
		printExplainIndent(n.Else, childIndent+"  ")
	}
	for _, child := range n.Children {
		printExplainIndent(child, childIndent)
	}
}

func yellowSuffix(desc []string) string {
	if len(desc) == 0 {
		return ""
	}
	return " " + color.YellowString("(%s)", strings.Join(desc, ", "))
}
